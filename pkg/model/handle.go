package model

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

var (
	// ErrLoadFailed is returned for a model that could not be loaded,
	// detection stays off until a valid one is selected.
	ErrLoadFailed = errors.New("model load failed")
	ErrNotFound   = fmt.Errorf("%w: model not found", ErrLoadFailed)
)

// Detection parameters for every loaded cascade.
const (
	ScaleFactor  = 1.1
	MinNeighbors = 5
	MinSize      = 30
)

// Cascade is the part of a cascade classifier detection needs.
type Cascade interface {
	DetectMultiScaleWithParams(img gocv.Mat, scale float64, minNeighbors, flags int, minSize, maxSize image.Point) []image.Rectangle
	Close() error
}

var loadCascade = func(path string) (Cascade, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, xerror.Errorf("%w: unable to read cascade file [%s]", ErrLoadFailed, path)
	}
	return &classifier, nil
}

// Handle is a loaded, immutable cascade. Detect may run concurrently with
// Close, Close waits for running detections and later ones find nothing.
type Handle struct {
	name   string
	mu     sync.RWMutex
	closed bool
	c      Cascade
}

func (h *Handle) Name() string {
	return h.name
}

func (h *Handle) Detect(gray gocv.Mat) []image.Rectangle {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return nil
	}
	return h.c.DetectMultiScaleWithParams(
		gray, ScaleFactor, MinNeighbors, 0, image.Pt(MinSize, MinSize), image.Pt(0, 0),
	)
}

func (h *Handle) IsClosed() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.closed
}

func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	return h.c.Close()
}
