package assessment

// RegionRef identifies a selectable anatomical area. The catalog is static;
// session selections reference entries by id and never mutate them.
type RegionRef struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	HoverColor string `json:"hoverColor"`
	Category   string `json:"category"`
}

// Region categories group the catalog for the body-map UI.
const (
	CategoryUpper     = "upper"
	CategoryCore      = "core"
	CategoryLower     = "lower"
	CategoryExtremity = "extremity"
)

// GenericRegionLabel is used for diagnosis requests that arrive without a
// body-part selection (the quick-chat flow).
const GenericRegionLabel = "General symptoms"

var regionCatalog = []RegionRef{
	{ID: "head", Name: "Head", Color: "#3b82f6", HoverColor: "#60a5fa", Category: CategoryUpper},
	{ID: "neck", Name: "Neck", Color: "#3b82f6", HoverColor: "#60a5fa", Category: CategoryUpper},
	{ID: "chest", Name: "Chest", Color: "#06b6d4", HoverColor: "#22d3ee", Category: CategoryUpper},
	{ID: "abdomen", Name: "Abdomen", Color: "#06b6d4", HoverColor: "#22d3ee", Category: CategoryCore},
	{ID: "back", Name: "Back", Color: "#8b5cf6", HoverColor: "#a78bfa", Category: CategoryCore},
	{ID: "left-shoulder", Name: "Left Shoulder", Color: "#10b981", HoverColor: "#34d399", Category: CategoryUpper},
	{ID: "right-shoulder", Name: "Right Shoulder", Color: "#10b981", HoverColor: "#34d399", Category: CategoryUpper},
	{ID: "left-arm", Name: "Left Arm", Color: "#10b981", HoverColor: "#34d399", Category: CategoryUpper},
	{ID: "right-arm", Name: "Right Arm", Color: "#10b981", HoverColor: "#34d399", Category: CategoryUpper},
	{ID: "left-hand", Name: "Left Hand", Color: "#f59e0b", HoverColor: "#fbbf24", Category: CategoryExtremity},
	{ID: "right-hand", Name: "Right Hand", Color: "#f59e0b", HoverColor: "#fbbf24", Category: CategoryExtremity},
	{ID: "left-leg", Name: "Left Leg", Color: "#ef4444", HoverColor: "#f87171", Category: CategoryLower},
	{ID: "right-leg", Name: "Right Leg", Color: "#ef4444", HoverColor: "#f87171", Category: CategoryLower},
	{ID: "left-foot", Name: "Left Foot", Color: "#ec4899", HoverColor: "#f472b6", Category: CategoryExtremity},
	{ID: "right-foot", Name: "Right Foot", Color: "#ec4899", HoverColor: "#f472b6", Category: CategoryExtremity},
}

// Regions returns the full static catalog.
func Regions() []RegionRef {
	out := make([]RegionRef, len(regionCatalog))
	copy(out, regionCatalog)
	return out
}

// RegionByID looks up a catalog entry; ok is false for unknown ids.
func RegionByID(id string) (RegionRef, bool) {
	for _, r := range regionCatalog {
		if r.ID == id {
			return r, true
		}
	}
	return RegionRef{}, false
}

// RegionsByCategory filters the catalog by category.
func RegionsByCategory(category string) []RegionRef {
	var out []RegionRef
	for _, r := range regionCatalog {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}
