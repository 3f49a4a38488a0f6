package scene

import (
	"fmt"
	"slices"
	"strings"

	"github.com/inamate/pinboard/internal/apperr"
	"github.com/inamate/pinboard/internal/document"
	"github.com/inamate/pinboard/internal/typeid"
)

// ZDirection moves an image within its stacking context.
type ZDirection string

const (
	ZBack     ZDirection = "back"
	ZBackward ZDirection = "backward"
	ZForward  ZDirection = "forward"
	ZFront    ZDirection = "front"
)

func (d ZDirection) Valid() bool {
	switch d {
	case ZBack, ZBackward, ZForward, ZFront:
		return true
	}
	return false
}

// target returns the index i should move to in a list of n entries, counted
// after i has been removed.
func (d ZDirection) target(i, n int) int {
	switch d {
	case ZBack:
		return 0
	case ZBackward:
		return max(i-1, 0)
	case ZForward:
		return min(i+1, n-1)
	default:
		return n - 1
	}
}

// ReorderTopLevel moves the dragged top-level layer into the target's slot.
// Equal ids, or ids that exist but are not top-level, are a NoOp.
func (s *Store) ReorderTopLevel(draggedID, targetID string) (apperr.Outcome, error) {
	return s.mutate("reorder layers", func(sc *document.Scene) error {
		for _, id := range []string{draggedID, targetID} {
			if !sc.Exists(id) {
				return notFound("layer", id)
			}
		}
		from, to := sc.LayerIndex(draggedID), sc.LayerIndex(targetID)
		if draggedID == targetID || from < 0 || to < 0 {
			return nil
		}
		sc.Layers = document.MoveLayer(sc.Layers, from, to)
		return nil
	})
}

// ReorderImageZ moves an image within the top-level list or, when grouped,
// within its group. Moves past either end are clamped.
func (s *Store) ReorderImageZ(imageID string, dir ZDirection) (apperr.Outcome, error) {
	if !dir.Valid() {
		return apperr.NoOp, fmt.Errorf("reorder image: unknown direction %q: %w", dir, apperr.ErrInvalidValue)
	}
	return s.mutate("move "+string(dir), func(sc *document.Scene) error {
		if _, ok := sc.Images[imageID]; !ok {
			return notFound("image", imageID)
		}
		if gid := sc.GroupOf(imageID); gid != "" {
			g := sc.Groups[gid]
			i := slices.Index(g.ImageIDs, imageID)
			g.ImageIDs = document.MoveID(g.ImageIDs, imageID, dir.target(i, len(g.ImageIDs)))
			sc.Groups[gid] = g
			return nil
		}
		i := sc.LayerIndex(imageID)
		sc.Layers = document.MoveLayer(sc.Layers, i, dir.target(i, len(sc.Layers)))
		return nil
	})
}

// CreateGroup groups at least two top-level images. Members keep their
// relative order and the group takes the place of the frontmost member.
// Unknown, grouped and repeated ids are ignored when counting.
func (s *Store) CreateGroup(imageIDs []string) (string, error) {
	var groupID string
	_, err := s.mutate("group images", func(sc *document.Scene) error {
		var idx []int
		for _, id := range imageIDs {
			i := sc.LayerIndex(id)
			if i < 0 || sc.Layers[i].Kind != document.LayerImage || slices.Contains(idx, i) {
				continue
			}
			idx = append(idx, i)
		}
		if len(idx) < 2 {
			return fmt.Errorf("need at least 2 top-level images, got %d: %w", len(idx), apperr.ErrInvalidSelection)
		}
		slices.Sort(idx)

		members := make([]string, len(idx))
		for k, i := range idx {
			members[k] = sc.Layers[i].ID
		}
		layers := make([]document.Layer, 0, len(sc.Layers)-len(idx)+1)
		for i, l := range sc.Layers {
			if !slices.Contains(idx, i) {
				layers = append(layers, l)
			}
		}
		at := idx[len(idx)-1] - (len(idx) - 1)

		groupID = s.newID(typeid.PrefixGroup)
		sc.Groups[groupID] = document.Group{
			ID:       groupID,
			Name:     fmt.Sprintf("Group %d", len(sc.Groups)+1),
			ImageIDs: members,
			Expanded: true,
		}
		sc.Layers = slices.Insert(layers, at, document.Layer{Kind: document.LayerGroup, ID: groupID})
		return nil
	})
	if err != nil {
		return "", err
	}
	return groupID, nil
}

// DeleteGroup dissolves a group, putting its members back at the group's index.
func (s *Store) DeleteGroup(groupID string) (apperr.Outcome, error) {
	return s.mutate("ungroup", func(sc *document.Scene) error {
		g, ok := sc.Groups[groupID]
		if !ok {
			return notFound("group", groupID)
		}
		i := sc.LayerIndex(groupID)
		members := make([]document.Layer, 0, len(g.ImageIDs))
		for _, id := range g.ImageIDs {
			if _, ok := sc.Images[id]; ok {
				members = append(members, document.Layer{Kind: document.LayerImage, ID: id})
			}
		}
		sc.Layers = slices.Replace(sc.Layers, i, i+1, members...)
		delete(sc.Groups, groupID)
		return nil
	})
}

// AddImageToGroup moves an image into a group as its frontmost member. The
// image may come from the top level or from another group; a group left
// empty is removed.
func (s *Store) AddImageToGroup(groupID, imageID string) (apperr.Outcome, error) {
	return s.mutate("add to group", func(sc *document.Scene) error {
		g, ok := sc.Groups[groupID]
		if !ok {
			return notFound("group", groupID)
		}
		if _, ok := sc.Images[imageID]; !ok {
			return notFound("image", imageID)
		}
		from := sc.GroupOf(imageID)
		if from == groupID {
			return nil
		}
		detach(sc, imageID)
		g.ImageIDs = append(g.ImageIDs, imageID)
		sc.Groups[groupID] = g
		return nil
	})
}

// detach removes an image from the top level or from its group. A group left
// without members is removed as well.
func detach(sc *document.Scene, imageID string) {
	if i := sc.LayerIndex(imageID); i >= 0 {
		sc.Layers = slices.Delete(sc.Layers, i, i+1)
		return
	}
	gid := sc.GroupOf(imageID)
	if gid == "" {
		return
	}
	g := sc.Groups[gid]
	g.ImageIDs = slices.DeleteFunc(g.ImageIDs, func(id string) bool { return id == imageID })
	if len(g.ImageIDs) > 0 {
		sc.Groups[gid] = g
		return
	}
	delete(sc.Groups, gid)
	if i := sc.LayerIndex(gid); i >= 0 {
		sc.Layers = slices.Delete(sc.Layers, i, i+1)
	}
}

func (s *Store) ToggleExpanded(groupID string) (apperr.Outcome, error) {
	return s.mutate("toggle group", func(sc *document.Scene) error {
		g, ok := sc.Groups[groupID]
		if !ok {
			return notFound("group", groupID)
		}
		g.Expanded = !g.Expanded
		sc.Groups[groupID] = g
		return nil
	})
}

func (s *Store) RenameGroup(groupID, name string) (apperr.Outcome, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperr.NoOp, fmt.Errorf("rename group: empty name: %w", apperr.ErrInvalidValue)
	}
	return s.mutate("rename group", func(sc *document.Scene) error {
		g, ok := sc.Groups[groupID]
		if !ok {
			return notFound("group", groupID)
		}
		g.Name = name
		sc.Groups[groupID] = g
		return nil
	})
}
