// pricing.go - Best-effort scrape of the SiliconFlow public pricing page

package catalog

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sniptex/sniptex_server/configs"
)

// The pricing page is a minified React page; each model row renders as an
// anchor (link target + model id) followed by two price cells. "免费" marks
// a zero price.
var pricingRowRe = regexp.MustCompile(
	`href="[^"]*?target=([^"]+)"[^>]*>([^<]+)</a></div><div[^>]*>(免费|[\d.]+)</div><div[^>]*>(免费|[\d.]+)</div>`)

// FetchPricingMap scrapes per-model prices (元 per million tokens) from the
// public pricing page. Fails soft: any fetch or parse problem yields an
// empty map and the catalog renders those models with unknown pricing.
func FetchPricingMap(ctx context.Context) map[string]PriceEntry {
	client := &http.Client{Timeout: time.Duration(configs.PROBE_TIMEOUT) * time.Second}

	req, err := http.NewRequestWithContext(ctx, "GET", configs.SILICONFLOW_PRICING_URL, nil)
	if err != nil {
		return map[string]PriceEntry{}
	}
	resp, err := client.Do(req)
	if err != nil {
		return map[string]PriceEntry{}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return map[string]PriceEntry{}
	}
	html, err := io.ReadAll(resp.Body)
	if err != nil {
		return map[string]PriceEntry{}
	}
	return parsePricingHTML(string(html))
}

// parsePricingHTML extracts the id -> price mapping; malformed rows are
// dropped rather than reported.
func parsePricingHTML(html string) map[string]PriceEntry {
	prices := make(map[string]PriceEntry)
	for _, match := range pricingRowRe.FindAllStringSubmatch(html, -1) {
		id := strings.TrimSpace(match[2])
		input := parsePrice(match[3])
		output := parsePrice(match[4])
		if id != "" && input >= 0 && output >= 0 {
			prices[id] = PriceEntry{Input: input, Output: output}
		}
	}
	return prices
}

func parsePrice(cell string) float64 {
	if cell == "免费" {
		return 0
	}
	price, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return -1
	}
	return price
}
