package recognizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveModel(t *testing.T) {
	t.Run("explicit selector splits on the first colon", func(t *testing.T) {
		res := ResolveModel("siliconflow:Qwen/Qwen2-VL-7B-Instruct", "formula", true)
		assert.Equal(t, ExplicitSelector, res.Kind)
		assert.Equal(t, ProviderSiliconFlow, res.Provider)
		assert.Equal(t, "Qwen/Qwen2-VL-7B-Instruct", res.ModelID)

		res = ResolveModel("simpletex:latex_ocr_turbo", "ocr", false)
		assert.Equal(t, ExplicitSelector, res.Kind)
		assert.Equal(t, ProviderSimpleTex, res.Provider)
		assert.Equal(t, "latex_ocr_turbo", res.ModelID)

		res = ResolveModel("custom:a:b", "formula", false)
		assert.Equal(t, "custom", res.Provider)
		assert.Equal(t, "a:b", res.ModelID)
	})

	t.Run("formula requests fall back to simpletex when a token exists", func(t *testing.T) {
		res := ResolveModel("", "formula", true)
		assert.Equal(t, FallbackSimpleTex, res.Kind)
		assert.Equal(t, ProviderSimpleTex, res.Provider)
		assert.Equal(t, "latex_ocr", res.ModelID)
	})

	t.Run("everything else falls back to siliconflow with no model", func(t *testing.T) {
		res := ResolveModel("", "ocr", true)
		assert.Equal(t, FallbackSiliconFlow, res.Kind)
		assert.Equal(t, ProviderSiliconFlow, res.Provider)
		assert.Empty(t, res.ModelID)

		res = ResolveModel("", "formula", false)
		assert.Equal(t, FallbackSiliconFlow, res.Kind)
	})
}
