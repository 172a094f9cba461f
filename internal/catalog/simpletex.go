// simpletex.go - Static SimpleTex model table with daily free quotas

package catalog

// Well-known SimpleTex model ids.
const (
	SimpleTexDefaultModel = "latex_ocr"
	SimpleTexGeneralModel = "simpletex_ocr"
)

// SimpleTexModel is one fixed SimpleTex model: the provider has no model
// listing API, so the set and the free-tier quotas are maintained here.
type SimpleTexModel struct {
	ID         string
	Name       string
	FreePerDay int
	Mode       string // native recognition mode
}

var SimpleTexModels = []SimpleTexModel{
	{ID: "latex_ocr", Name: "SimpleTex 标准模型", FreePerDay: 500, Mode: "formula"},
	{ID: "latex_ocr_turbo", Name: "SimpleTex 轻量模型", FreePerDay: 2000, Mode: "formula"},
	{ID: "simpletex_ocr", Name: "SimpleTex 通用识别", FreePerDay: 50, Mode: "document"},
}

// SimpleTexModelByID looks up a model in the static table.
func SimpleTexModelByID(id string) (SimpleTexModel, bool) {
	for _, m := range SimpleTexModels {
		if m.ID == id {
			return m, true
		}
	}
	return SimpleTexModel{}, false
}

// CatalogModes lists the modes the model is offered under in the catalog:
// the general-recognition model also covers formula and ocr via its
// recognition submode, the dedicated formula models only their own mode.
func (m SimpleTexModel) CatalogModes() []string {
	if m.Mode == "document" {
		return []string{"formula", "ocr", "document"}
	}
	return []string{m.Mode}
}
