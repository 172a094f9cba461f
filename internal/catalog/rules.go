// rules.go - Ordered rule tables for classifying model ids

package catalog

import "strings"

// Rule is one (name, predicate) entry in an ordered classification table.
// New model naming conventions are added as rows here, never as new control
// flow in the classifiers.
type Rule struct {
	Name  string
	Match func(id string) bool
}

// visionRules decide whether a chat model accepts image input.
var visionRules = []Rule{
	{"vl-family", upperContains("VL")},
	{"ocr-family", upperContains("OCR")},
	{"paddleocr", upperContains("PADDLEOCR")},
	{"omni", upperContains("OMNI")},
	{"captioner", upperContains("CAPTIONER")},
	{"deepseek-vl2", rawContains("vl2")},
	{"kimi-k2.5", rawContains("Kimi-K2.5")},
	{"glm-vision", glmVisionPattern},
}

// ocrOnlyRules decide which vision models are plain-text OCR engines that
// cannot transcribe formulas.
var ocrOnlyRules = []Rule{
	{"paddleocr", upperContains("PADDLEOCR")},
	{"deepseek-ocr", upperContains("DEEPSEEK-OCR")},
	{"captioner", upperContains("CAPTIONER")},
}

// IsVisionModel reports whether the model id names a vision-capable model.
func IsVisionModel(id string) bool {
	return matchAny(visionRules, id)
}

// IsOCROnlyModel reports whether the model only supports plain OCR.
func IsOCROnlyModel(id string) bool {
	return matchAny(ocrOnlyRules, id)
}

func matchAny(rules []Rule, id string) bool {
	for _, rule := range rules {
		if rule.Match(id) {
			return true
		}
	}
	return false
}

func upperContains(token string) func(string) bool {
	return func(id string) bool {
		return strings.Contains(strings.ToUpper(id), token)
	}
}

func rawContains(token string) func(string) bool {
	return func(id string) bool {
		return strings.Contains(id, token)
	}
}

// glmVisionPattern matches GLM vision models: the last path segment carries
// a "GLM-" prefix and a "V" suffix (GLM-4V, Pro/THUDM/GLM-4.1V, ...).
func glmVisionPattern(id string) bool {
	last := lastSegment(id)
	return strings.Contains(last, "GLM-") && strings.HasSuffix(last, "V")
}

func lastSegment(id string) string {
	parts := strings.Split(id, "/")
	return parts[len(parts)-1]
}
