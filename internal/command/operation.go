// Package command decodes editor operations from their JSON wire form and
// applies them to a scene.Store. Websocket sessions and the wasm binding share
// this codec.
package command

import (
	"encoding/json"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/inamate/pinboard/internal/apperr"
	"github.com/inamate/pinboard/internal/document"
	"github.com/inamate/pinboard/internal/engine"
	"github.com/inamate/pinboard/internal/scene"
	"github.com/inamate/pinboard/internal/selection"
)

const (
	TypeLayerReorder     = "layer.reorder"
	TypeImageZ           = "image.z"
	TypeGroupCreate      = "group.create"
	TypeGroupDelete      = "group.delete"
	TypeGroupAdd         = "group.add"
	TypeGroupToggle      = "group.toggle"
	TypeGroupRename      = "group.rename"
	TypeImageCrop        = "image.crop"
	TypeImageUncrop      = "image.uncrop"
	TypeImageAdd         = "image.add"
	TypeImageDelete      = "image.delete"
	TypeImageRename      = "image.rename"
	TypeImageTransform   = "image.transform"
	TypeImageTransforms  = "image.transforms"
	TypeImageOutline     = "image.outline"
	TypeAnnotationAttach = "annotation.attach"
	TypeAnnotationDetach = "annotation.detach"
	TypeAnnotationAdd    = "annotation.add"
	TypeAnnotationDelete = "annotation.delete"
	TypeSelect           = "selection.images"
	TypeSelectAnnotation = "selection.annotations"
	TypeSelectClear      = "selection.clear"
	TypePropertiesGet    = "properties.get"
	TypePropertiesSet    = "properties.set"
	TypeCategoriesGet    = "categories.get"
	TypeAlign            = "layout.align"
	TypeArrange          = "layout.arrange"
	TypeStack            = "layout.stack"
	TypeDistribute       = "layout.distribute"
	TypeMatchSize        = "layout.match"
	TypeUndo             = "history.undo"
	TypeRedo             = "history.redo"
)

var types = []any{
	TypeLayerReorder, TypeImageZ,
	TypeGroupCreate, TypeGroupDelete, TypeGroupAdd, TypeGroupToggle, TypeGroupRename,
	TypeImageCrop, TypeImageUncrop,
	TypeImageAdd, TypeImageDelete, TypeImageRename, TypeImageTransform, TypeImageTransforms, TypeImageOutline,
	TypeAnnotationAttach, TypeAnnotationDetach, TypeAnnotationAdd, TypeAnnotationDelete,
	TypeSelect, TypeSelectAnnotation, TypeSelectClear,
	TypePropertiesGet, TypePropertiesSet, TypeCategoriesGet,
	TypeAlign, TypeArrange, TypeStack, TypeDistribute, TypeMatchSize,
	TypeUndo, TypeRedo,
}

var ErrInvalidOperation = errors.New("invalid operation")

// Operation is one request against a Store. Only the fields the type needs
// are read.
type Operation struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type"`

	ImageID       string   `json:"imageId,omitempty"`
	ImageIDs      []string `json:"imageIds,omitempty"`
	TargetID      string   `json:"targetId,omitempty"`
	GroupID       string   `json:"groupId,omitempty"`
	HostID        string   `json:"hostId,omitempty"`
	AnnotationID  string   `json:"annotationId,omitempty"`
	AnnotationIDs []string `json:"annotationIds,omitempty"`
	Name          string   `json:"name,omitempty"`

	Direction string `json:"direction,omitempty"`
	Order     string `json:"order,omitempty"`
	Mode      string `json:"mode,omitempty"`
	Dimension string `json:"dimension,omitempty"`
	Tool      string `json:"tool,omitempty"`

	Rect       *engine.Rect               `json:"rect,omitempty"`
	Transform  *scene.Transform           `json:"transform,omitempty"`
	Transforms map[string]scene.Transform `json:"transforms,omitempty"`
	Outline    *scene.Outline             `json:"outline,omitempty"`
	Image      *document.CanvasImage      `json:"image,omitempty"`
	Annotation *document.Annotation       `json:"annotation,omitempty"`

	Keys    []selection.Key                   `json:"keys,omitempty"`
	Changes map[selection.Key]selection.Value `json:"changes,omitempty"`
}

func (op Operation) Validate() error {
	return validation.ValidateStruct(&op,
		validation.Field(&op.Type, validation.Required, validation.In(types...)),
		validation.Field(&op.Rect, validation.When(op.Type == TypeImageCrop, validation.NotNil)),
		validation.Field(&op.Transform, validation.When(op.Type == TypeImageTransform, validation.NotNil)),
		validation.Field(&op.Transforms, validation.When(op.Type == TypeImageTransforms, validation.Required)),
		validation.Field(&op.Outline, validation.When(op.Type == TypeImageOutline, validation.NotNil)),
		// Entities are checked by the store once defaults are filled in.
		validation.Field(&op.Image, present(op.Type == TypeImageAdd, op.Image != nil), validation.Skip),
		validation.Field(&op.Annotation, present(op.Type == TypeAnnotationAdd, op.Annotation != nil), validation.Skip),
		validation.Field(&op.Changes, validation.When(op.Type == TypePropertiesSet, validation.Required)),
	)
}

// present requires a field without validating its contents. NotNil would
// descend into the entity's own Validate.
func present(required, set bool) validation.Rule {
	return validation.By(func(any) error {
		if required && !set {
			return validation.ErrNotNilRequired
		}
		return nil
	})
}

// Decode parses and checks an operation.
func Decode(data []byte) (Operation, error) {
	var op Operation
	if err := json.Unmarshal(data, &op); err != nil {
		return Operation{}, fmt.Errorf("decode operation: %w", err)
	}
	if err := op.Validate(); err != nil {
		return Operation{}, fmt.Errorf("%w: %w", ErrInvalidOperation, err)
	}
	return op, nil
}

// Result reports what an operation did. IDs lists entities it created.
type Result struct {
	OperationID string                            `json:"operationId,omitempty"`
	Outcome     apperr.Outcome                    `json:"outcome"`
	IDs         []string                          `json:"ids,omitempty"`
	Properties  map[selection.Key]selection.Value `json:"properties,omitempty"`
	Categories  []selection.Category              `json:"categories,omitempty"`
}
