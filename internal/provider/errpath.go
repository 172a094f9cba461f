// errpath.go - Ordered JSON accessor-path lookup for provider error fields

package provider

// SimpleTex reports its error type at different JSON locations depending on
// which backend rejected the request. The paths are tried in order and the
// first one holding a string wins.
var simpletexErrTypePaths = [][]string{
	{"res", "errType"},
	{"err_info", "err_type"},
	{"errType"},
}

// firstStringAt walks each accessor path in order over a decoded JSON
// document and returns the first string value found.
func firstStringAt(doc map[string]interface{}, paths [][]string) (string, bool) {
	for _, path := range paths {
		if value, ok := stringAt(doc, path); ok {
			return value, true
		}
	}
	return "", false
}

// stringAt resolves a single accessor path; every intermediate step must be
// a JSON object and the final step a string.
func stringAt(doc map[string]interface{}, path []string) (string, bool) {
	current := doc
	for i, key := range path {
		value, ok := current[key]
		if !ok {
			return "", false
		}
		if i == len(path)-1 {
			s, ok := value.(string)
			return s, ok
		}
		current, ok = value.(map[string]interface{})
		if !ok {
			return "", false
		}
	}
	return "", false
}
