// Package typeid mints the prefixed, time-sortable ids carried by every
// persisted entity, e.g. img_01h455vb4pex5vsknk084sn02q.
package typeid

import (
	"errors"
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Entity prefixes. Scene ids (img, ann, grp) travel inside documents; bitmap
// ids double as asset file names.
const (
	PrefixUser       = "user"
	PrefixProject    = "proj"
	PrefixSnapshot   = "snap"
	PrefixImage      = "img"
	PrefixAnnotation = "ann"
	PrefixGroup      = "grp"
	PrefixBitmap     = "bmp"
)

var ErrWrongPrefix = errors.New("wrong typeid prefix")

// New returns a fresh id. It matches the scene package's id generator
// signature.
func New(prefix string) string {
	return typeid.MustGenerate(prefix).String()
}

func NewUserID() string       { return New(PrefixUser) }
func NewProjectID() string    { return New(PrefixProject) }
func NewSnapshotID() string   { return New(PrefixSnapshot) }
func NewImageID() string      { return New(PrefixImage) }
func NewAnnotationID() string { return New(PrefixAnnotation) }
func NewGroupID() string      { return New(PrefixGroup) }
func NewBitmapID() string     { return New(PrefixBitmap) }

// Validate checks that id parses and carries prefix. Ids taken from URLs must
// pass before they are used as file names.
func Validate(id, prefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("parse %q: %w", id, err)
	}
	if got := parsed.Prefix(); got != prefix {
		return fmt.Errorf("%q has prefix %q, want %q: %w", id, got, prefix, ErrWrongPrefix)
	}
	return nil
}
