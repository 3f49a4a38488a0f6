package command

import (
	"fmt"

	"github.com/inamate/pinboard/internal/apperr"
	"github.com/inamate/pinboard/internal/engine"
	"github.com/inamate/pinboard/internal/scene"
)

// Apply runs op against s. Read-only operations (properties.get,
// categories.get) report NoOp with their data in the result.
func Apply(s *scene.Store, op Operation) (Result, error) {
	res := Result{OperationID: op.ID}
	var err error

	switch op.Type {
	case TypeLayerReorder:
		res.Outcome, err = s.ReorderTopLevel(op.ImageID, op.TargetID)
	case TypeImageZ:
		res.Outcome, err = s.ReorderImageZ(op.ImageID, scene.ZDirection(op.Direction))
	case TypeGroupCreate:
		res.IDs, err = created(s.CreateGroup(op.ImageIDs))
	case TypeGroupDelete:
		res.Outcome, err = s.DeleteGroup(op.GroupID)
	case TypeGroupAdd:
		res.Outcome, err = s.AddImageToGroup(op.GroupID, op.ImageID)
	case TypeGroupToggle:
		res.Outcome, err = s.ToggleExpanded(op.GroupID)
	case TypeGroupRename:
		res.Outcome, err = s.RenameGroup(op.GroupID, op.Name)

	case TypeImageCrop:
		res.IDs, err = s.Crop(*op.Rect)
	case TypeImageUncrop:
		res.Outcome, err = s.Uncrop(op.ImageIDs)
	case TypeImageAdd:
		res.IDs, err = created(s.AddImage(*op.Image))
	case TypeImageDelete:
		res.Outcome, err = s.RemoveImages(op.ImageIDs)
	case TypeImageRename:
		res.Outcome, err = s.RenameImage(op.ImageID, op.Name)
	case TypeImageTransform:
		res.Outcome, err = s.SetImageTransform(op.ImageID, *op.Transform)
	case TypeImageTransforms:
		res.Outcome, err = s.SetImageTransforms(op.Transforms)
	case TypeImageOutline:
		res.Outcome, err = s.SetImageOutline(op.ImageIDs, *op.Outline)

	case TypeAnnotationAttach:
		res.Outcome, err = s.ReparentToImage(op.AnnotationID, op.HostID, op.ImageID)
	case TypeAnnotationDetach:
		res.Outcome, err = s.ReparentToCanvas(op.AnnotationIDs, op.ImageID)
	case TypeAnnotationAdd:
		res.IDs, err = created(s.AddAnnotation(op.HostID, *op.Annotation))
	case TypeAnnotationDelete:
		res.Outcome, err = s.RemoveAnnotations(op.AnnotationIDs)

	case TypeSelect:
		err = s.Select(op.ImageIDs...)
	case TypeSelectAnnotation:
		err = s.SelectAnnotations(op.AnnotationIDs...)
	case TypeSelectClear:
		s.ClearSelection()
	case TypePropertiesGet:
		res.Properties = s.CommonProperties(op.Keys...)
	case TypePropertiesSet:
		res.Outcome, err = s.WriteBack(op.Changes)
	case TypeCategoriesGet:
		res.Categories = s.AvailableCategories(op.Tool)

	case TypeAlign:
		res.Outcome, err = s.Align(engine.AlignMode(op.Mode))
	case TypeArrange:
		res.Outcome, err = s.Arrange(engine.Direction(op.Direction), orderOrDefault(op.Order))
	case TypeStack:
		res.Outcome, err = s.Stack(engine.Direction(op.Direction), orderOrDefault(op.Order))
	case TypeDistribute:
		res.Outcome, err = s.Distribute(engine.Direction(op.Direction))
	case TypeMatchSize:
		res.Outcome, err = s.MatchSize(engine.Dimension(op.Dimension))

	case TypeUndo:
		res.Outcome = s.Undo()
	case TypeRedo:
		res.Outcome = s.Redo()

	default:
		return res, fmt.Errorf("%w: %q", ErrInvalidOperation, op.Type)
	}

	if err != nil {
		return res, err
	}
	if len(res.IDs) > 0 {
		res.Outcome = apperr.Applied
	}
	return res, nil
}

func created(id string, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	return []string{id}, nil
}

func orderOrDefault(o string) engine.Order {
	if o == "" {
		return engine.OrderNormal
	}
	return engine.Order(o)
}
