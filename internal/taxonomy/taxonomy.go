// Package taxonomy is the closed catalog of furniture and fixture types
// the classifier is allowed to answer with, plus the per-type 3D model
// variants offered by the editor's model picker.
package taxonomy

import (
	"fmt"
	"strings"
)

// FurnitureType describes one catalog entry. Types are distinguished by
// top-down shape and aspect ratio, never by absolute size: a bedside
// table is still a table.
type FurnitureType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AspectRatio string `json:"aspect_ratio"`
	Description string `json:"description"`
}

// ModelVariant is one selectable 3D model for a furniture type.
type ModelVariant struct {
	ModelID  string `json:"model_id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

const (
	// UnknownID is the sentinel type assigned when classification
	// cannot be obtained.
	UnknownID   = "other"
	UnknownName = "Other/Unknown"
)

// Types is ordered the way it is rendered into the classification
// prompt: architectural elements first, then furniture by room.
var Types = []FurnitureType{
	{ID: "door", Name: "Door", AspectRatio: "wide (2.5:1)", Description: "Thin rectangular, usually along walls"},
	{ID: "window", Name: "Window", AspectRatio: "wide (4:1)", Description: "Very thin rectangular along walls"},
	{ID: "wall", Name: "Wall", AspectRatio: "very wide (15:1)", Description: "Long thin lines"},
	{ID: "bed", Name: "Bed", AspectRatio: "rectangular (3:4)", Description: "Medium rectangle, usually against wall"},
	{ID: "dresser", Name: "Dresser", AspectRatio: "wide (2.5:1)", Description: "Wide shallow rectangle against wall"},
	{ID: "chair", Name: "Chair", AspectRatio: "square (1:1)", Description: "Small square or circular, any size"},
	{ID: "couch", Name: "Couch/Sofa", AspectRatio: "wide (2:1)", Description: "Long rectangle, usually against wall"},
	{ID: "table", Name: "Table", AspectRatio: "square to rectangular (1:1 to 3:2)", Description: "Square or slightly rectangular, can be any size (dining table, coffee table, side table, bedside table, etc.)"},
	{ID: "desk", Name: "Desk", AspectRatio: "rectangular (2:1)", Description: "Rectangular, often against wall"},
	{ID: "toilet", Name: "Toilet", AspectRatio: "tall (1:1.5)", Description: "Small, slightly taller than wide"},
	{ID: "sink", Name: "Sink", AspectRatio: "square (1:1)", Description: "Small square, usually wall-mounted"},
	{ID: "bathtub", Name: "Bathtub", AspectRatio: "rectangular (2:1)", Description: "Long rectangle"},
	{ID: "shower", Name: "Shower", AspectRatio: "square (1:1)", Description: "Square enclosure"},
	{ID: "kitchen_counter", Name: "Kitchen Counter", AspectRatio: "very wide (4:1)", Description: "Long thin rectangle along wall"},
	{ID: "refrigerator", Name: "Refrigerator", AspectRatio: "square to tall (1:1.3)", Description: "Slightly taller than wide"},
	{ID: "oven", Name: "Oven/Stove", AspectRatio: "square (1:1)", Description: "Square appliance"},
	{ID: "dishwasher", Name: "Dishwasher", AspectRatio: "square (1:1)", Description: "Square, built into counter"},
	{ID: "cabinet", Name: "Cabinet", AspectRatio: "rectangular (2:1)", Description: "Rectangular storage"},
	{ID: "closet", Name: "Closet", AspectRatio: "rectangular (1.5:1)", Description: "Rectangular enclosed space"},
	{ID: "stairs", Name: "Stairs", AspectRatio: "tall (1:2.5)", Description: "Vertical rectangle with steps"},
	{ID: UnknownID, Name: UnknownName, AspectRatio: "any", Description: "Unknown object"},
}

// Models maps furniture type ids to their model variants. Types absent
// here (architectural elements, stairs) have no placeable model.
var Models = map[string][]ModelVariant{
	"table": {
		{ModelID: "001", Name: "Round Table"},
		{ModelID: "002", Name: "Square Table"},
	},
	"chair": {
		{ModelID: "001", Name: "Office Chair"},
		{ModelID: "002", Name: "Dining Chair"},
	},
	"bed": {
		{ModelID: "001", Name: "Queen Bed"},
		{ModelID: "002", Name: "King Bed"},
	},
	"couch": {
		{ModelID: "001", Name: "L-Shaped Sofa"},
		{ModelID: "002", Name: "3-Seater Sofa"},
	},
	"desk": {
		{ModelID: "001", Name: "Office Desk"},
		{ModelID: "002", Name: "Standing Desk"},
	},
	"cabinet": {
		{ModelID: "001", Name: "Storage Cabinet"},
		{ModelID: "002", Name: "Display Cabinet"},
	},
	"closet": {
		{ModelID: "001", Name: "Walk-In Closet"},
		{ModelID: "002", Name: "Sliding-Door Closet"},
	},
}

// boundaryClasses are detected structurally by the segmenter and never
// sent to the classifier.
var boundaryClasses = map[string]bool{
	"wall":   true,
	"door":   true,
	"window": true,
}

// IsBoundaryClass reports whether a segmentation class hint names an
// architectural boundary element.
func IsBoundaryClass(class string) bool {
	return boundaryClasses[strings.ToLower(strings.TrimSpace(class))]
}

// Lookup returns the catalog entry for id, or the Other/Unknown entry
// when id is not part of the taxonomy.
func Lookup(id string) FurnitureType {
	for _, t := range Types {
		if t.ID == id {
			return t
		}
	}
	return Types[len(Types)-1]
}

// Contains reports whether id is a valid taxonomy entry.
func Contains(id string) bool {
	for _, t := range Types {
		if t.ID == id {
			return true
		}
	}
	return false
}

// TypeIDs returns every catalog id in prompt order.
func TypeIDs() []string {
	ids := make([]string, 0, len(Types))
	for _, t := range Types {
		ids = append(ids, t.ID)
	}
	return ids
}

// VariantsFor returns the model variants for a furniture type, or nil
// when none exist.
func VariantsFor(typeID string) []ModelVariant {
	return Models[typeID]
}

// DefaultModelFor returns the first variant id for a furniture type,
// or empty when the type has no placeable model.
func DefaultModelFor(typeID string) string {
	variants := Models[typeID]
	if len(variants) == 0 {
		return ""
	}
	return variants[0].ModelID
}

// PromptList renders the catalog as the bulleted list embedded in the
// classification prompt.
func PromptList() string {
	var sb strings.Builder
	for _, t := range Types {
		fmt.Fprintf(&sb, "- %s: %s - Aspect ratio: %s - %s\n", t.ID, t.Name, t.AspectRatio, t.Description)
	}
	return strings.TrimRight(sb.String(), "\n")
}
