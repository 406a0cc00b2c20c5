package effect

import (
	"image"
	"image/color"

	"github.com/tauraamui/patterncam/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

// Applier turns a raw device frame into a displayable one.
type Applier interface {
	Apply(videoframe.Frame, Selection) (videoframe.Display, error)
}

const boxThickness = 2

// BoxColor is the stroke colour of detection boxes.
var BoxColor = color.RGBA{0, 255, 0, 0}

// Pipeline is stateless, the only state it reads is the selection's model.
type Pipeline struct{}

func NewPipeline() Pipeline {
	return Pipeline{}
}

func (p Pipeline) Apply(frame videoframe.Frame, sel Selection) (videoframe.Display, error) {
	mat, ok := frame.DataRef().(*gocv.Mat)
	if !ok {
		return videoframe.Display{}, xerror.New("must pass OpenCV frame to effect pipeline")
	}
	if mat.Empty() {
		return videoframe.Display{}, xerror.New("cannot apply effect to empty frame")
	}
	return p.ApplyMat(*mat, sel)
}

// ApplyMat runs the selection over a BGR matrix without taking ownership.
func (p Pipeline) ApplyMat(src gocv.Mat, sel Selection) (videoframe.Display, error) {
	if !sel.Active() {
		return toDisplay(src, gocv.ColorBGRToRGB)
	}

	switch sel.Kind {
	case FaceDetect:
		return detectFaces(src, sel.Model)
	case EdgeDetect:
		return detectEdges(src, sel.KernelSize)
	}
	return toDisplay(src, gocv.ColorBGRToRGB)
}

func detectFaces(src gocv.Mat, model Detector) (videoframe.Display, error) {
	gray := gocv.NewMat()
	defer gray.Close()
	if err := gocv.CvtColor(src, &gray, gocv.ColorBGRToGray); err != nil {
		return videoframe.Display{}, xerror.Errorf("unable to convert frame to grayscale: %w", err)
	}

	rects := model.Detect(gray)
	if len(rects) == 0 {
		return toDisplay(src, gocv.ColorBGRToRGB)
	}

	annotated := src.Clone()
	defer annotated.Close()
	for _, r := range rects {
		if err := gocv.Rectangle(&annotated, r, BoxColor, boxThickness); err != nil {
			return videoframe.Display{}, xerror.Errorf("unable to draw detection box %v: %w", r, err)
		}
	}
	return toDisplay(annotated, gocv.ColorBGRToRGB)
}

func detectEdges(src gocv.Mat, kernelSize int) (videoframe.Display, error) {
	gray := gocv.NewMat()
	defer gray.Close()
	if err := gocv.CvtColor(src, &gray, gocv.ColorBGRToGray); err != nil {
		return videoframe.Display{}, xerror.Errorf("unable to convert frame to grayscale: %w", err)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	if err := gocv.GaussianBlur(gray, &blurred, image.Pt(3, 3), 0, 0, gocv.BorderDefault); err != nil {
		return videoframe.Display{}, xerror.Errorf("unable to blur frame: %w", err)
	}

	sobel := gocv.NewMat()
	defer sobel.Close()
	if err := gocv.Sobel(blurred, &sobel, gocv.MatTypeCV64F, 1, 1, kernelSize, 1, 0, gocv.BorderDefault); err != nil {
		return videoframe.Display{}, xerror.Errorf("unable to compute gradient with kernel %d: %w", kernelSize, err)
	}

	normalized := gocv.NewMat()
	defer normalized.Close()
	if err := gocv.Normalize(sobel, &normalized, 0, 255, gocv.NormMinMax); err != nil {
		return videoframe.Display{}, xerror.Errorf("unable to normalize gradient: %w", err)
	}

	edges := gocv.NewMat()
	defer edges.Close()
	if err := normalized.ConvertTo(&edges, gocv.MatTypeCV8U); err != nil {
		return videoframe.Display{}, xerror.Errorf("unable to convert gradient to 8 bit: %w", err)
	}

	// single channel so BGR and RGB replication are the same
	return toDisplay(edges, gocv.ColorGrayToBGR)
}

func toDisplay(src gocv.Mat, code gocv.ColorConversionCode) (videoframe.Display, error) {
	rgb := gocv.NewMat()
	defer rgb.Close()
	if err := gocv.CvtColor(src, &rgb, code); err != nil {
		return videoframe.Display{}, xerror.Errorf("unable to convert frame for display: %w", err)
	}
	if rgb.Empty() {
		return videoframe.Display{}, xerror.New("colour conversion produced empty frame")
	}
	return videoframe.NewDisplay(rgb.Cols(), rgb.Rows(), rgb.ToBytes()), nil
}
