// resolve.go - Provider/model resolution for a recognition request

package recognizer

import (
	"strings"

	"github.com/sniptex/sniptex_server/internal/catalog"
)

// Provider names used in model selectors.
const (
	ProviderSimpleTex   = "simpletex"
	ProviderSiliconFlow = "siliconflow"
)

// ResolutionKind tags how the provider and model were chosen.
type ResolutionKind int

const (
	// ExplicitSelector means the request named "provider:model" itself.
	ExplicitSelector ResolutionKind = iota
	// FallbackSimpleTex means no selector was given and the request fell
	// back to the SimpleTex standard formula model.
	FallbackSimpleTex
	// FallbackSiliconFlow means no selector was given and no SimpleTex
	// fallback applied; the model is empty and rejected downstream.
	FallbackSiliconFlow
)

// Resolution names the provider and model a request will run on.
type Resolution struct {
	Kind     ResolutionKind
	Provider string
	ModelID  string
}

// ResolveModel maps a model selector to a concrete provider and model.
// A selector containing ":" is split on the first colon and taken as-is.
// Without a colon, formula requests fall back to the SimpleTex standard
// model when a token is configured; everything else falls back to
// SiliconFlow with no model selected.
func ResolveModel(selector, mode string, hasSimpleTexToken bool) Resolution {
	if i := strings.Index(selector, ":"); i >= 0 {
		return Resolution{
			Kind:     ExplicitSelector,
			Provider: selector[:i],
			ModelID:  selector[i+1:],
		}
	}
	if hasSimpleTexToken && mode == "formula" {
		return Resolution{
			Kind:     FallbackSimpleTex,
			Provider: ProviderSimpleTex,
			ModelID:  catalog.SimpleTexDefaultModel,
		}
	}
	return Resolution{Kind: FallbackSiliconFlow, Provider: ProviderSiliconFlow}
}
