// Package bitmap stores decoded bitmaps by id and cuts crops out of them.
// Bitmaps are immutable once stored; a crop always produces a new id.
package bitmap

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"github.com/inamate/pinboard/internal/typeid"
)

var ErrNotFound = errors.New("bitmap not found")

// Library holds bitmaps in memory, optionally backed by a directory of PNG
// files named <id>.png.
type Library struct {
	mu     sync.RWMutex
	dir    string
	images map[string]image.Image
}

// NewLibrary creates a library persisting to dir. An empty dir keeps
// everything in memory.
func NewLibrary(dir string) (*Library, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create bitmap dir: %w", err)
		}
	}
	return &Library{dir: dir, images: make(map[string]image.Image)}, nil
}

// Decode reads a PNG, JPEG or TIFF stream and stores it under a new id.
func (l *Library) Decode(r io.Reader) (string, image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", nil, fmt.Errorf("decode image: %w", err)
	}
	id, err := l.Add(img)
	if err != nil {
		return "", nil, err
	}
	return id, img, nil
}

// Add stores img under a new id.
func (l *Library) Add(img image.Image) (string, error) {
	id := typeid.NewBitmapID()
	if err := l.put(id, img); err != nil {
		return "", err
	}
	return id, nil
}

func (l *Library) put(id string, img image.Image) error {
	if l.dir != "" {
		if err := writePNG(l.path(id), img); err != nil {
			return err
		}
	}
	l.mu.Lock()
	l.images[id] = img
	l.mu.Unlock()
	return nil
}

// Get returns the bitmap for id, loading it from disk on first use.
func (l *Library) Get(id string) (image.Image, error) {
	l.mu.RLock()
	img, ok := l.images[id]
	l.mu.RUnlock()
	if ok {
		return img, nil
	}
	if l.dir == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	f, err := os.Open(l.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("open bitmap: %w", err)
	}
	defer f.Close()

	img, err = png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode bitmap %s: %w", id, err)
	}
	l.mu.Lock()
	l.images[id] = img
	l.mu.Unlock()
	return img, nil
}

// Crop copies region (in the bitmap's own pixel coordinates, origin at its
// top-left) into a new bitmap and returns the new id. The source is untouched.
func (l *Library) Crop(id string, region image.Rectangle) (string, error) {
	src, err := l.Get(id)
	if err != nil {
		return "", err
	}
	b := src.Bounds()
	abs := region.Add(b.Min).Intersect(b)
	if abs.Empty() {
		return "", fmt.Errorf("crop %s: region %v outside bitmap %v", id, region, b)
	}

	dst := image.NewRGBA(image.Rect(0, 0, abs.Dx(), abs.Dy()))
	draw.Copy(dst, image.Point{}, src, abs, draw.Src, nil)

	newID, err := l.Add(dst)
	if err != nil {
		return "", err
	}
	slog.Debug("bitmap cropped", "source", id, "bitmap", newID, "region", abs)
	return newID, nil
}

// Remove drops a bitmap from memory and disk. Removing an unknown id is not
// an error.
func (l *Library) Remove(id string) error {
	l.mu.Lock()
	delete(l.images, id)
	l.mu.Unlock()
	if l.dir == "" {
		return nil
	}
	if err := os.Remove(l.path(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove bitmap %s: %w", id, err)
	}
	return nil
}

func (l *Library) path(id string) string {
	return filepath.Join(l.dir, id+".png")
}

func writePNG(path string, img image.Image) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create bitmap file: %w", err)
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		os.Remove(path)
		return fmt.Errorf("encode png: %w", err)
	}
	return out.Close()
}
