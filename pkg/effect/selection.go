package effect

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

type Kind int

const (
	None Kind = iota
	FaceDetect
	EdgeDetect
)

func (k Kind) String() string {
	switch k {
	case FaceDetect:
		return "face-detect"
	case EdgeDetect:
		return "edge-detect"
	default:
		return "none"
	}
}

// Kernel size bounds for edge detection, values must also be odd.
const (
	MinKernelSize = 1
	MaxKernelSize = 15
)

// Detector finds patterns in a single channel intensity image.
type Detector interface {
	Detect(gray gocv.Mat) []image.Rectangle
}

// Selection is the one effect applied to every frame.
type Selection struct {
	Kind       Kind
	Model      Detector
	KernelSize int
}

func NoEffect() Selection {
	return Selection{Kind: None}
}

func Faces(model Detector) Selection {
	return Selection{Kind: FaceDetect, Model: model}
}

func Edges(kernelSize int) Selection {
	return Selection{Kind: EdgeDetect, KernelSize: kernelSize}
}

// ValidKernelSize reports whether n is odd and within bounds.
func ValidKernelSize(n int) bool {
	return n%2 == 1 && n >= MinKernelSize && n <= MaxKernelSize
}

// Active reports whether applying s changes anything beyond colour
// conversion. A kernel of exactly the minimum size disables edges.
func (s Selection) Active() bool {
	switch s.Kind {
	case FaceDetect:
		return s.Model != nil
	case EdgeDetect:
		return s.KernelSize > MinKernelSize && ValidKernelSize(s.KernelSize)
	default:
		return false
	}
}

func (s Selection) String() string {
	if s.Kind == EdgeDetect {
		return fmt.Sprintf("%s(%d)", s.Kind, s.KernelSize)
	}
	return s.Kind.String()
}
