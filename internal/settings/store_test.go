package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreDefaultsOnFirstRun(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "", store.GetString(KeySimpleTexToken))
	assert.Equal(t, "", store.GetString(KeySiliconFlowKey))
	assert.Equal(t, "", store.GetString(KeySimpleTexModel))
	assert.Empty(t, store.GetStringList(KeyVoucherModels))

	// The file exists after first run so the UI can inspect it.
	_, err = os.Stat(filepath.Join(dir, "config.json"))
	assert.NoError(t, err)
}

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.SetString(KeySimpleTexToken, "tok-123"))
	require.NoError(t, store.SetStringList(KeyVoucherModels, []string{"Qwen/Qwen2-VL-7B-Instruct"}))

	// Values survive a reopen.
	reopened, err := NewStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", reopened.GetString(KeySimpleTexToken))
	assert.Equal(t, []string{"Qwen/Qwen2-VL-7B-Instruct"}, reopened.GetStringList(KeyVoucherModels))
}

func TestStoreIgnoresCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{broken"), 0644))

	store, err := NewStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "", store.GetString(KeySimpleTexToken))
}

func TestParseVoucherModels(t *testing.T) {
	text := "Qwen/Qwen2-VL-7B-Instruct\n\n  Pro/THUDM/GLM-4V  \nnot-a-model-id\n"
	assert.Equal(t,
		[]string{"Qwen/Qwen2-VL-7B-Instruct", "Pro/THUDM/GLM-4V"},
		ParseVoucherModels(text))

	assert.Empty(t, ParseVoucherModels(""))
	assert.Empty(t, ParseVoucherModels("plain text without slash"))
}
