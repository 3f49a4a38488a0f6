// Package selection resolves shared property values across a multi-selection
// and writes edits back to every selected entity.
//
// Entities are a tagged union: each Kind declares the property Keys it
// carries, and resolution works over those declarations only.
package selection

import (
	"slices"

	"github.com/inamate/pinboard/internal/document"
)

type Kind string

const (
	KindImage  Kind = "image"
	KindPath   Kind = Kind(document.AnnotationPath)
	KindLine   Kind = Kind(document.AnnotationLine)
	KindArrow  Kind = Kind(document.AnnotationArrow)
	KindRect   Kind = Kind(document.AnnotationRect)
	KindCircle Kind = Kind(document.AnnotationCircle)
	KindText   Kind = Kind(document.AnnotationText)
)

type Key string

const (
	KeyName              Key = "name"
	KeyStrokeColor       Key = "strokeColor"
	KeyStrokeWidth       Key = "strokeWidth"
	KeyStrokeOpacity     Key = "strokeOpacity"
	KeyFillColor         Key = "fillColor"
	KeyFillOpacity       Key = "fillOpacity"
	KeyBackgroundColor   Key = "backgroundColor"
	KeyBackgroundOpacity Key = "backgroundOpacity"
	KeyOutlineColor      Key = "outlineColor"
	KeyOutlineWidth      Key = "outlineWidth"
	KeyOutlineOpacity    Key = "outlineOpacity"
	KeyFontFamily        Key = "fontFamily"
	KeyFontSize          Key = "fontSize"
)

// Category is a style group an editing panel shows controls for.
type Category string

const (
	CategoryStroke     Category = "stroke"
	CategoryFill       Category = "fill"
	CategoryBackground Category = "background"
	CategoryOutline    Category = "outline"
)

var (
	strokeKeys     = []Key{KeyStrokeColor, KeyStrokeWidth, KeyStrokeOpacity}
	fillKeys       = []Key{KeyFillColor, KeyFillOpacity}
	backgroundKeys = []Key{KeyBackgroundColor, KeyBackgroundOpacity}
	outlineKeys    = []Key{KeyOutlineColor, KeyOutlineWidth, KeyOutlineOpacity}
	fontKeys       = []Key{KeyFontFamily, KeyFontSize}
)

var kindCategories = map[Kind][]Category{
	KindImage:  {CategoryOutline},
	KindPath:   {CategoryStroke},
	KindLine:   {CategoryStroke},
	KindArrow:  {CategoryStroke},
	KindRect:   {CategoryStroke, CategoryFill},
	KindCircle: {CategoryStroke, CategoryFill},
	KindText:   {CategoryStroke, CategoryBackground},
}

var kindKeys = map[Kind][]Key{
	KindImage:  append([]Key{KeyName}, outlineKeys...),
	KindPath:   strokeKeys,
	KindLine:   strokeKeys,
	KindArrow:  strokeKeys,
	KindRect:   slices.Concat(strokeKeys, fillKeys),
	KindCircle: slices.Concat(strokeKeys, fillKeys),
	KindText:   slices.Concat(strokeKeys, backgroundKeys, fontKeys),
}

// Keys returns the property keys declared by kind.
func (k Kind) Keys() []Key {
	return kindKeys[k]
}

// Declares reports whether kind carries key.
func (k Kind) Declares(key Key) bool {
	return slices.Contains(kindKeys[k], key)
}

// Categories returns the union of style categories applicable to the given
// kinds, in a fixed display order.
func Categories(kinds []Kind) []Category {
	present := make(map[Category]bool)
	for _, k := range kinds {
		for _, c := range kindCategories[k] {
			present[c] = true
		}
	}
	var out []Category
	for _, c := range []Category{CategoryStroke, CategoryFill, CategoryBackground, CategoryOutline} {
		if present[c] {
			out = append(out, c)
		}
	}
	return out
}

// ToolKind maps a drawing tool name to the kind of entity it creates. Tools
// that create nothing (select, pan) report false.
func ToolKind(tool string) (Kind, bool) {
	switch tool {
	case "pen", "freehand", "path":
		return KindPath, true
	case "line":
		return KindLine, true
	case "arrow":
		return KindArrow, true
	case "rect", "rectangle":
		return KindRect, true
	case "circle", "ellipse":
		return KindCircle, true
	case "text":
		return KindText, true
	}
	return "", false
}
