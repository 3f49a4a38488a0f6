package scene

import (
	"errors"
	"fmt"
	"image"

	"github.com/inamate/pinboard/internal/apperr"
	"github.com/inamate/pinboard/internal/document"
	"github.com/inamate/pinboard/internal/engine"
	"github.com/inamate/pinboard/internal/typeid"
)

// Cropper extracts a pixel region of a bitmap into a new bitmap. The region
// is in the bitmap's own pixel space with the origin at its top-left. Remove
// discards a bitmap made by Crop that no scene ended up using.
type Cropper interface {
	Crop(bitmapID string, region image.Rectangle) (newBitmapID string, err error)
	Remove(bitmapID string) error
}

var errNoCropper = errors.New("no cropper configured")

// Crop cuts every selected image down to the canvas-space rect. Each cropped
// image is replaced in its slot by a new image whose UncroppedFromID names
// the original, and a lineage record keeps what Uncrop needs. Images the rect
// misses are left alone. The selection follows the new ids. If the command
// fails, bitmaps already cut for it are removed again.
func (s *Store) Crop(rect engine.Rect) ([]string, error) {
	if len(s.selection.Images) == 0 {
		return nil, fmt.Errorf("crop: %w", apperr.ErrInvalidSelection)
	}
	if s.cropper == nil {
		return nil, fmt.Errorf("crop: %w", errNoCropper)
	}

	var created, bitmaps []string
	_, err := s.apply("crop", func(sc *document.Scene, sel *Selection) error {
		renamed := make(map[string]string)
		for _, id := range sel.Images {
			img := sc.Images[id]
			region, ok := engine.CropRegion(engine.FrameOf(img), rect)
			if !ok {
				continue
			}
			bitmapID, err := s.cropper.Crop(img.BitmapID, region)
			if err != nil {
				return fmt.Errorf("image %s: %w", id, err)
			}
			bitmaps = append(bitmaps, bitmapID)
			newID := s.newID(typeid.PrefixImage)
			sc.Lineage[id], sc.Images[newID] = cropImage(img, newID, bitmapID, region)
			delete(sc.Images, id)
			replaceImageRef(sc, id, newID)
			renamed[id] = newID
			created = append(created, newID)
		}
		if len(renamed) == 0 {
			return apperr.ErrEmptyCropArea
		}
		sel.remap(renamed)
		return nil
	})
	if err != nil {
		for _, id := range bitmaps {
			if rerr := s.cropper.Remove(id); rerr != nil {
				s.logger.Warn("remove unused crop bitmap", "bitmap", id, "error", rerr)
			}
		}
		return nil, err
	}
	return created, nil
}

func cropImage(img document.CanvasImage, newID, bitmapID string, region image.Rectangle) (document.CropRecord, document.CanvasImage) {
	ox, oy := float64(region.Min.X), float64(region.Min.Y)
	rec := document.CropRecord{
		BitmapID:        img.BitmapID,
		Width:           img.Width,
		Height:          img.Height,
		X:               img.X,
		Y:               img.Y,
		OffsetX:         ox,
		OffsetY:         oy,
		UncroppedFromID: img.UncroppedFromID,
	}

	out := img.Clone()
	oldID := img.ID
	out.ID = newID
	out.BitmapID = bitmapID
	out.X, out.Y = engine.FrameOf(img).Matrix().TransformPoint(ox, oy)
	out.Width = float64(region.Dx())
	out.Height = float64(region.Dy())
	out.UncroppedFromID = &oldID
	for i, a := range out.Annotations {
		out.Annotations[i] = engine.OffsetAnnotation(a, -ox, -oy)
	}
	return rec, out
}

// Uncrop restores each image that has a lineage record to its pre-crop
// bitmap, size, position and id. Ids without a record are skipped.
func (s *Store) Uncrop(imageIDs []string) (apperr.Outcome, error) {
	return s.apply("uncrop", func(sc *document.Scene, sel *Selection) error {
		renamed := make(map[string]string)
		for _, id := range imageIDs {
			img, ok := sc.Images[id]
			if !ok || img.UncroppedFromID == nil {
				continue
			}
			oldID := *img.UncroppedFromID
			rec, ok := sc.Lineage[oldID]
			if !ok || sc.Exists(oldID) {
				continue
			}

			out := img.Clone()
			out.ID = oldID
			out.BitmapID = rec.BitmapID
			out.Width, out.Height = rec.Width, rec.Height
			out.X, out.Y = rec.X, rec.Y
			out.UncroppedFromID = rec.UncroppedFromID
			for i, a := range out.Annotations {
				out.Annotations[i] = engine.OffsetAnnotation(a, rec.OffsetX, rec.OffsetY)
			}

			delete(sc.Lineage, oldID)
			delete(sc.Images, id)
			sc.Images[oldID] = out
			replaceImageRef(sc, id, oldID)
			renamed[id] = oldID
		}
		sel.remap(renamed)
		return nil
	})
}

// replaceImageRef swaps an image id in the top-level list or its group.
func replaceImageRef(sc *document.Scene, from, to string) {
	if i := sc.LayerIndex(from); i >= 0 {
		sc.Layers[i].ID = to
		return
	}
	for gid, g := range sc.Groups {
		for i, member := range g.ImageIDs {
			if member == from {
				g.ImageIDs[i] = to
				sc.Groups[gid] = g
				return
			}
		}
	}
}
