package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sniptex/sniptex_server/configs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePricingHTML(t *testing.T) {
	html := `<div><a href="/models?target=Qwen%2FQwen2-VL-72B-Instruct" class="x">Qwen/Qwen2-VL-72B-Instruct</a></div><div class="p">4.13</div><div class="p">4.13</div>` +
		`<div><a href="/models?target=Qwen%2FQwen2-VL-7B-Instruct" class="x">Qwen/Qwen2-VL-7B-Instruct</a></div><div class="p">免费</div><div class="p">免费</div>` +
		`<div><a href="/models?target=broken" class="x">broken/row</a></div><div class="p">n/a</div><div class="p">1.0</div>`

	prices := parsePricingHTML(html)
	require.Len(t, prices, 2)

	assert.Equal(t, PriceEntry{Input: 4.13, Output: 4.13}, prices["Qwen/Qwen2-VL-72B-Instruct"])
	assert.Equal(t, PriceEntry{Input: 0, Output: 0}, prices["Qwen/Qwen2-VL-7B-Instruct"])

	_, ok := prices["broken/row"]
	assert.False(t, ok)
}

func TestParsePricingHTMLEmpty(t *testing.T) {
	assert.Empty(t, parsePricingHTML(""))
	assert.Empty(t, parsePricingHTML("<html><body>no pricing table</body></html>"))
}

func TestCachedPricingMapFetchesOnce(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`<div><a href="/models?target=m" class="x">vendor/model</a></div><div>免费</div><div>免费</div>`))
	}))
	t.Cleanup(srv.Close)
	configs.SILICONFLOW_PRICING_URL = srv.URL
	t.Cleanup(InvalidatePricingCache)
	InvalidatePricingCache()

	first := CachedPricingMap(context.Background())
	second := CachedPricingMap(context.Background())

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	require.Len(t, first, 1)
	assert.Equal(t, first, second)
}
