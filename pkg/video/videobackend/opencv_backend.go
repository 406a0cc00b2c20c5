package videobackend

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/tauraamui/patterncam/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

type openCVFrame struct {
	isClosed bool
	mat      gocv.Mat
}

func (frame *openCVFrame) DataRef() interface{} {
	return &frame.mat
}

func (frame *openCVFrame) Dimensions() videoframe.Dimensions {
	return videoframe.Dimensions{W: frame.mat.Cols(), H: frame.mat.Rows()}
}

func (frame *openCVFrame) Close() {
	if !frame.isClosed {
		frame.mat.Close()
		frame.isClosed = true
	}
}

// NewFrameFromMat takes ownership of mat and exposes it as a frame.
func NewFrameFromMat(mat gocv.Mat) videoframe.Frame {
	return &openCVFrame{mat: mat}
}

type openCVBackend struct{}

func (b *openCVBackend) Connect(cancel context.Context, device string) (Connection, error) {
	conn := openCVConnection{}
	err := conn.connect(cancel, device)
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (b *openCVBackend) NewFrame() videoframe.Frame {
	return &openCVFrame{mat: gocv.NewMat()}
}

type openCVConnection struct {
	uuid    string
	mu      sync.Mutex
	isOpen  bool
	reading int
	vc      *gocv.VideoCapture
}

func (c *openCVConnection) connect(cancel context.Context, device string) error {
	connAndError := make(chan openVideoStreamResult, 1)
	go openVideoStream(device, connAndError)
	select {
	case r := <-connAndError:
		if r.err != nil {
			return r.err
		}
		if !r.vc.IsOpened() {
			r.vc.Close()
			return xerror.Errorf("device [%s] did not open", device)
		}
		c.vc = r.vc
		c.isOpen = true
		return nil
	case <-cancel.Done():
		go closeLateVideoStream(connAndError)
		return xerror.New("connection cancelled")
	}
}

type openVideoStreamResult struct {
	vc  *gocv.VideoCapture
	err error
}

func openVideoStream(device string, d chan openVideoStreamResult) {
	vc, err := openVideoCapture(device)
	d <- openVideoStreamResult{vc: vc, err: err}
}

// closeLateVideoStream releases a capture which finished opening after
// the caller gave up waiting for it.
func closeLateVideoStream(d chan openVideoStreamResult) {
	r := <-d
	if r.err == nil && r.vc != nil {
		r.vc.Close()
	}
}

// device is either a numeric index or a path/URL, gocv decides which.
var openVideoCapture = func(device string) (*gocv.VideoCapture, error) {
	return gocv.OpenVideoCapture(device)
}

var readFromVideoConnection = func(vc *gocv.VideoCapture, mat *gocv.Mat) bool {
	if vc.IsOpened() {
		return vc.Read(mat)
	}
	return false
}

var closeVideoCapture = func(vc *gocv.VideoCapture) error {
	return vc.Close()
}

func (c *openCVConnection) UUID() string {
	if len(c.uuid) == 0 {
		c.uuid = uuid.NewString()
	}
	return c.uuid
}

func (c *openCVConnection) Read(frame videoframe.Frame) error {
	mat, ok := frame.DataRef().(*gocv.Mat)
	if !ok {
		return xerror.New("must pass OpenCV frame to OpenCV connection read")
	}
	c.mu.Lock()
	if !c.isOpen {
		c.mu.Unlock()
		return xerror.New("video connection is closed")
	}
	c.reading++
	vc := c.vc
	c.mu.Unlock()

	// the device read can block for as long as the driver likes, Close
	// must not wait on it
	ok = readFromVideoConnection(vc, mat)

	c.mu.Lock()
	c.reading--
	closedMidRead := !c.isOpen
	release := closedMidRead && c.reading == 0
	c.mu.Unlock()

	if release {
		if err := closeVideoCapture(vc); err != nil {
			return xerror.Errorf("unable to release video connection: %w", err)
		}
	}
	if closedMidRead {
		return xerror.New("video connection is closed")
	}
	if !ok || mat.Empty() {
		return xerror.New("unable to read from video connection")
	}
	return nil
}

func (c *openCVConnection) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isOpen {
		return c.vc.IsOpened()
	}
	return false
}

func (c *openCVConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isOpen {
		return nil
	}
	c.isOpen = false
	if c.reading > 0 {
		// released by the last in flight Read on its way out
		return nil
	}
	return closeVideoCapture(c.vc)
}
