package videobackend

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"
	"time"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"github.com/tauraamui/patterncam/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

const (
	mockFrameWidth  = 640
	mockFrameHeight = 480
)

type mockVideoBackend struct{}

func (b *mockVideoBackend) Connect(cancel context.Context, device string) (Connection, error) {
	select {
	case <-cancel.Done():
		return nil, xerror.New("connection cancelled")
	default:
	}
	return &mockVideoConnection{device: device, isOpen: true}, nil
}

func (b *mockVideoBackend) NewFrame() videoframe.Frame {
	return &openCVFrame{mat: gocv.NewMat()}
}

type mockVideoConnection struct {
	uuid   string
	device string
	mu     sync.Mutex
	isOpen bool
	tick   int
	base   image.Image
}

func (mvc *mockVideoConnection) UUID() string {
	if len(mvc.uuid) == 0 {
		mvc.uuid = uuid.NewString()
	}
	return mvc.uuid
}

// Read renders the test card, rotated a little further on each call so
// consecutive frames differ.
func (mvc *mockVideoConnection) Read(frame videoframe.Frame) error {
	frameMatRef, ok := frame.DataRef().(*gocv.Mat)
	if !ok {
		return xerror.New("must pass OpenCV frame to MockVideo connection read")
	}

	mvc.mu.Lock()
	defer mvc.mu.Unlock()
	if !mvc.isOpen {
		return xerror.New("video connection is closed")
	}

	if mvc.base == nil {
		mvc.base = renderBaseFrameCanvas(mockFrameWidth, mockFrameHeight)
	}
	mvc.tick++

	img, err := drawTextLayerOntoBaseFrameClone(mvc.base, mvc.device, mvc.tick)
	if err != nil {
		return err
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return xerror.Errorf("unable to convert Go image into OpenCV mat: %w", err)
	}
	defer mat.Close()

	mat.CopyTo(frameMatRef)

	// pace roughly like a 30fps device would
	time.Sleep(33 * time.Millisecond)
	return nil
}

func (mvc *mockVideoConnection) IsOpen() bool {
	mvc.mu.Lock()
	defer mvc.mu.Unlock()
	return mvc.isOpen
}

func (mvc *mockVideoConnection) Close() error {
	mvc.mu.Lock()
	defer mvc.mu.Unlock()
	mvc.isOpen = false
	mvc.base = nil
	return nil
}

func drawTextLayerOntoBaseFrameClone(base image.Image, device string, tick int) (image.Image, error) {
	baseClone := cloneImage(base)
	marker := image.Rect(0, 0, 40, 40).Add(image.Pt((tick*8)%(baseClone.Bounds().Dx()-40), baseClone.Bounds().Dy()-60))
	draw.Draw(baseClone, marker, image.White, image.Point{}, draw.Src)

	if err := drawText(baseClone, 5, 50, "PATTERNCAM_MOCK"); err != nil {
		return nil, xerror.Errorf("unable to draw text onto in-mem image for mock stream: %w", err)
	}
	if err := drawText(baseClone, 5, 180, device); err != nil {
		return nil, xerror.Errorf("unable to draw text onto in-mem image for mock stream: %w", err) //nolint
	}
	if err := drawText(baseClone, 5, 310, time.Now().Format("15:04:05.000")); err != nil {
		return nil, xerror.Errorf("unable to draw text onto in-mem image for mock stream: %w", err) //nolint
	}
	return baseClone, nil
}

func renderBaseFrameCanvas(w, h int) image.Image {
	var hw, hh float64 = float64(w / 2), float64(h / 2)
	r := 150.0
	θ := 2 * math.Pi / 3
	cr := &circle{hw - r*math.Sin(0), hh - r*math.Cos(0), 220}
	cg := &circle{hw - r*math.Sin(θ), hh - r*math.Cos(θ), 220}
	cb := &circle{hw - r*math.Sin(-θ), hh - r*math.Cos(-θ), 220}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			c := color.RGBA{
				cr.Brightness(float64(x), float64(y)),
				cg.Brightness(float64(x), float64(y)),
				cb.Brightness(float64(x), float64(y)),
				255,
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func cloneImage(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	return dst
}

var mockFont, mockFontErr = freetype.ParseFont(goregular.TTF)

func drawText(canvas *image.RGBA, x, y int, text string) error {
	if mockFontErr != nil {
		return mockFontErr
	}
	fontDrawer := &font.Drawer{
		Dst: canvas,
		Src: image.White,
		Face: truetype.NewFace(mockFont, &truetype.Options{
			Size:    48,
			Hinting: font.HintingFull,
		}),
	}
	textBounds, _ := fontDrawer.BoundString(text)
	textHeight := textBounds.Max.Y - textBounds.Min.Y
	yPosition := fixed.I((y)-textHeight.Ceil())/2 + fixed.I(textHeight.Ceil())
	fontDrawer.Dot = fixed.Point26_6{
		X: fixed.I(x),
		Y: yPosition,
	}
	fontDrawer.DrawString(text)
	return nil
}

type circle struct {
	X, Y, R float64
}

func (c *circle) Brightness(x, y float64) uint8 {
	var dx, dy float64 = c.X - x, c.Y - y
	d := math.Sqrt(dx*dx+dy*dy) / c.R
	if d > 1 {
		return 0
	}
	return 255
}
