package selection

import (
	"fmt"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/inamate/pinboard/internal/apperr"
)

const mixedMarker = "MIXED"

type mixed struct{}

func (mixed) String() string { return mixedMarker }

func (mixed) MarshalJSON() ([]byte, error) { return []byte(`"` + mixedMarker + `"`), nil }

// Mixed is returned for a key on which the selected entities disagree. It is a
// read-side marker only and is never stored on an entity.
var Mixed Value = mixed{}

// IsMixed reports whether v is Mixed or its decoded JSON form.
func IsMixed(v Value) bool {
	switch v := v.(type) {
	case mixed:
		return true
	case string:
		return v == mixedMarker
	}
	return false
}

// ResolveCommon returns, for every requested key, the value all entities hold
// or Mixed. A key declared by only some of the entities resolves to Mixed; a
// key declared by none is omitted. An empty selection yields an empty map.
func ResolveCommon(entities []Entity, keys []Key) map[Key]Value {
	out := make(map[Key]Value, len(keys))
	if len(entities) == 0 {
		return out
	}
	for _, key := range keys {
		var (
			common   Value
			declared int
			agree    = true
		)
		for _, e := range entities {
			v, ok := e.Get(key)
			if !ok {
				continue
			}
			if declared == 0 {
				common = v
			} else if v != common {
				agree = false
			}
			declared++
		}
		switch {
		case declared == 0:
		case declared < len(entities) || !agree:
			out[key] = Mixed
		default:
			out[key] = common
		}
	}
	return out
}

// WriteBack applies the same changes to every entity that declares each key.
// Mixed values in changes are skipped. All values are validated before any
// entity is touched.
func WriteBack(entities []Entity, changes map[Key]Value) error {
	keys := make([]Key, 0, len(changes))
	normalized := make(map[Key]Value, len(changes))
	for key, v := range changes {
		if IsMixed(v) {
			continue
		}
		nv, err := normalize(key, v)
		if err != nil {
			return fmt.Errorf("write back %s: %w", key, err)
		}
		keys = append(keys, key)
		normalized[key] = nv
	}
	slices.Sort(keys)

	for _, e := range entities {
		for _, key := range keys {
			if e.Kind().Declares(key) {
				e.Set(key, normalized[key])
			}
		}
	}
	return nil
}

// normalize coerces v to the key's value type and validates its range.
func normalize(key Key, v Value) (Value, error) {
	switch key {
	case KeyName, KeyFontFamily:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: want string, got %T", apperr.ErrInvalidValue, v)
		}
		return s, nil
	case KeyStrokeColor, KeyFillColor, KeyBackgroundColor, KeyOutlineColor:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: want color string, got %T", apperr.ErrInvalidValue, v)
		}
		if err := validation.Validate(s, is.HexColor); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", apperr.ErrInvalidValue, s, err)
		}
		return s, nil
	case KeyStrokeWidth, KeyOutlineWidth:
		return number(v, validation.Min(0.0))
	case KeyStrokeOpacity, KeyFillOpacity, KeyBackgroundOpacity, KeyOutlineOpacity:
		return number(v, validation.Min(0.0), validation.Max(1.0))
	case KeyFontSize:
		return number(v, validation.Required, validation.Min(0.0).Exclusive())
	}
	return nil, fmt.Errorf("%w: unknown property %q", apperr.ErrInvalidValue, key)
}

func number(v Value, rules ...validation.Rule) (Value, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return nil, fmt.Errorf("%w: want number, got %T", apperr.ErrInvalidValue, v)
	}
	if err := validation.Validate(f, rules...); err != nil {
		return nil, fmt.Errorf("%w: %v: %w", apperr.ErrInvalidValue, f, err)
	}
	return f, nil
}
