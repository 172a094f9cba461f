// catalog.go - SiliconFlow vision model catalog with pricing merge and ranking

package catalog

import (
	"fmt"
	"sort"
)

// ProviderModel is one vision model ready for display: classification,
// display name and merged pricing. Built fresh per query, never mutated.
type ProviderModel struct {
	ID          string
	Name        string
	Pricing     string // display text: 免费 / 入¥x/出¥y / 价格未知
	Modes       []string
	InputPrice  float64 // clamped to >=0, used as the sort key
	OutputPrice float64
	Free        bool
}

// PriceEntry is one scraped price pair in 元 per million tokens.
type PriceEntry struct {
	Input  float64
	Output float64
}

// BuildVisionModels filters the full chat model list down to vision-capable
// models, merges scraped pricing and ranks the result: free models first,
// then ascending input price; ties keep the provider's listing order.
//
// Models missing from the pricing map render as "价格未知" and are excluded
// from the free bucket; their price is clamped to 0 for sorting only.
func BuildVisionModels(ids []string, pricing map[string]PriceEntry) []ProviderModel {
	models := make([]ProviderModel, 0, len(ids))
	for _, id := range ids {
		if !IsVisionModel(id) {
			continue
		}

		inputPrice, outputPrice := -1.0, -1.0
		if entry, ok := pricing[id]; ok {
			inputPrice, outputPrice = entry.Input, entry.Output
		}
		isFree := inputPrice == 0 && outputPrice == 0

		var pricingText string
		switch {
		case inputPrice < 0:
			pricingText = "价格未知"
		case isFree:
			pricingText = "免费"
		default:
			pricingText = fmt.Sprintf("入¥%v/出¥%v", inputPrice, outputPrice)
		}

		modes := []string{"formula", "ocr"}
		if IsOCROnlyModel(id) {
			modes = []string{"ocr"}
		}

		models = append(models, ProviderModel{
			ID:          id,
			Name:        DisplayName(id),
			Pricing:     pricingText,
			Modes:       modes,
			InputPrice:  max0(inputPrice),
			OutputPrice: max0(outputPrice),
			Free:        isFree,
		})
	}

	sort.SliceStable(models, func(i, j int) bool {
		if models[i].Free != models[j].Free {
			return models[i].Free
		}
		return models[i].InputPrice < models[j].InputPrice
	})
	return models
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
