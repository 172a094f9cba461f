package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildVisionModels(t *testing.T) {
	ids := []string{
		"deepseek-ai/DeepSeek-V3",       // not vision, dropped
		"Qwen/Qwen2-VL-72B-Instruct",    // paid
		"Qwen/Qwen2-VL-7B-Instruct",     // free
		"Pro/THUDM/GLM-4V",              // unknown pricing
		"PaddlePaddle/PaddleOCR-VL",     // free, ocr-only
		"moonshotai/Kimi-K2.5",          // paid, cheaper input
	}
	pricing := map[string]PriceEntry{
		"Qwen/Qwen2-VL-72B-Instruct": {Input: 4.13, Output: 4.13},
		"Qwen/Qwen2-VL-7B-Instruct":  {Input: 0, Output: 0},
		"PaddlePaddle/PaddleOCR-VL":  {Input: 0, Output: 0},
		"moonshotai/Kimi-K2.5":       {Input: 1, Output: 3},
	}

	models := BuildVisionModels(ids, pricing)
	require.Len(t, models, 5)

	t.Run("free models sort first, then ascending input price", func(t *testing.T) {
		for i := 0; i < len(models)-1; i++ {
			a, b := models[i], models[i+1]
			if a.Free != b.Free {
				assert.True(t, a.Free, "free model must precede paid model")
				continue
			}
			assert.LessOrEqual(t, a.InputPrice, b.InputPrice)
		}
		// Ties between the two free models keep the listing order.
		assert.Equal(t, "Qwen/Qwen2-VL-7B-Instruct", models[0].ID)
		assert.Equal(t, "PaddlePaddle/PaddleOCR-VL", models[1].ID)
	})

	t.Run("modes follow ocr-only classification", func(t *testing.T) {
		byID := map[string]ProviderModel{}
		for _, m := range models {
			byID[m.ID] = m
		}
		assert.Equal(t, []string{"ocr"}, byID["PaddlePaddle/PaddleOCR-VL"].Modes)
		assert.Equal(t, []string{"formula", "ocr"}, byID["Qwen/Qwen2-VL-7B-Instruct"].Modes)
	})

	t.Run("unknown pricing is not free but sorts as zero", func(t *testing.T) {
		var glm ProviderModel
		for _, m := range models {
			if m.ID == "Pro/THUDM/GLM-4V" {
				glm = m
			}
		}
		assert.Equal(t, "价格未知", glm.Pricing)
		assert.False(t, glm.Free)
		assert.Equal(t, 0.0, glm.InputPrice)
		// Clamped to 0 it leads the paid bucket, after the truly free models.
		assert.Equal(t, "Pro/THUDM/GLM-4V", models[2].ID)
	})

	t.Run("pricing display text", func(t *testing.T) {
		byID := map[string]ProviderModel{}
		for _, m := range models {
			byID[m.ID] = m
		}
		assert.Equal(t, "免费", byID["Qwen/Qwen2-VL-7B-Instruct"].Pricing)
		assert.Equal(t, "入¥1/出¥3", byID["moonshotai/Kimi-K2.5"].Pricing)
	})

	t.Run("idempotent for unchanged inputs", func(t *testing.T) {
		again := BuildVisionModels(ids, pricing)
		assert.Equal(t, models, again)
	})
}

func TestSimpleTexModelTable(t *testing.T) {
	m, ok := SimpleTexModelByID("latex_ocr")
	require.True(t, ok)
	assert.Equal(t, 500, m.FreePerDay)
	assert.Equal(t, []string{"formula"}, m.CatalogModes())

	general, ok := SimpleTexModelByID(SimpleTexGeneralModel)
	require.True(t, ok)
	assert.Equal(t, []string{"formula", "ocr", "document"}, general.CatalogModes())

	_, ok = SimpleTexModelByID("nope")
	assert.False(t, ok)
}
