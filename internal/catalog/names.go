// names.go - Display name derivation for model ids

package catalog

import "strings"

// DisplayName derives a short human-readable name from a model id:
// a leading "Pro/" prefix becomes a " (Pro)" suffix, only the last path
// segment is kept, and a trailing "-Instruct" is dropped.
//
// "Qwen/Qwen2-VL-7B-Instruct" -> "Qwen2-VL-7B"
// "Pro/THUDM/GLM-4V"          -> "GLM-4V (Pro)"
func DisplayName(id string) string {
	isPro := strings.HasPrefix(id, "Pro/")
	stripped := id
	if isPro {
		stripped = id[len("Pro/"):]
	}
	name := strings.TrimSuffix(lastSegment(stripped), "-Instruct")
	if isPro {
		return name + " (Pro)"
	}
	return name
}
