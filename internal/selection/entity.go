package selection

import "github.com/inamate/pinboard/internal/document"

// Value is a property value: a string for names, colors and font families, a
// float64 for everything numeric, or Mixed.
type Value = any

// Entity is one selected item as seen by the resolver.
type Entity interface {
	Kind() Kind
	// Get returns the effective value of key; ok is false when the kind does not declare it.
	Get(key Key) (v Value, ok bool)
	// Set stores an already validated value. Keys the kind does not declare are ignored.
	Set(key Key, v Value)
}

// Image adapts a canvas image. Unset outline fields read as their documented defaults.
type Image struct{ *document.CanvasImage }

func (Image) Kind() Kind { return KindImage }

func (e Image) Get(key Key) (Value, bool) {
	switch key {
	case KeyName:
		return e.Name, true
	case KeyOutlineColor:
		return e.EffectiveOutlineColor(), true
	case KeyOutlineWidth:
		return e.EffectiveOutlineWidth(), true
	case KeyOutlineOpacity:
		return e.EffectiveOutlineOpacity(), true
	}
	return nil, false
}

func (e Image) Set(key Key, v Value) {
	switch key {
	case KeyName:
		e.Name = v.(string)
	case KeyOutlineColor:
		c := v.(string)
		e.OutlineColor = &c
	case KeyOutlineWidth:
		w := v.(float64)
		e.OutlineWidth = &w
	case KeyOutlineOpacity:
		o := v.(float64)
		e.OutlineOpacity = &o
	}
}

// Annotation adapts a vector annotation; its kind follows the annotation type.
type Annotation struct{ *document.Annotation }

func (e Annotation) Kind() Kind { return Kind(e.Type) }

// defaultPaint is what an absent fill or background reads as: transparent.
var defaultPaint = document.Paint{Color: "", Opacity: 1}

func (e Annotation) Get(key Key) (Value, bool) {
	if !e.Kind().Declares(key) {
		return nil, false
	}
	switch key {
	case KeyStrokeColor:
		return e.Stroke.Color, true
	case KeyStrokeWidth:
		return e.Stroke.Width, true
	case KeyStrokeOpacity:
		return e.Stroke.Opacity, true
	case KeyFillColor:
		return paintOr(e.Fill).Color, true
	case KeyFillOpacity:
		return paintOr(e.Fill).Opacity, true
	case KeyBackgroundColor:
		return paintOr(e.Background).Color, true
	case KeyBackgroundOpacity:
		return paintOr(e.Background).Opacity, true
	case KeyFontFamily:
		return e.FontFamily, true
	case KeyFontSize:
		return e.FontSize, true
	}
	return nil, false
}

func (e Annotation) Set(key Key, v Value) {
	if !e.Kind().Declares(key) {
		return
	}
	switch key {
	case KeyStrokeColor:
		e.Stroke.Color = v.(string)
	case KeyStrokeWidth:
		e.Stroke.Width = v.(float64)
	case KeyStrokeOpacity:
		e.Stroke.Opacity = v.(float64)
	case KeyFillColor:
		e.Fill = withColor(e.Fill, v.(string))
	case KeyFillOpacity:
		e.Fill = withOpacity(e.Fill, v.(float64))
	case KeyBackgroundColor:
		e.Background = withColor(e.Background, v.(string))
	case KeyBackgroundOpacity:
		e.Background = withOpacity(e.Background, v.(float64))
	case KeyFontFamily:
		e.FontFamily = v.(string)
	case KeyFontSize:
		e.FontSize = v.(float64)
	}
}

func paintOr(p *document.Paint) document.Paint {
	if p == nil {
		return defaultPaint
	}
	return *p
}

func withColor(p *document.Paint, c string) *document.Paint {
	out := paintOr(p)
	out.Color = c
	return &out
}

func withOpacity(p *document.Paint, o float64) *document.Paint {
	out := paintOr(p)
	out.Opacity = o
	return &out
}
