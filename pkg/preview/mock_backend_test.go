package preview_test

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/tauraamui/patterncam/pkg/effect"
	"github.com/tauraamui/patterncam/pkg/video/videobackend"
	"github.com/tauraamui/patterncam/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

type testBackend struct {
	mu         sync.Mutex
	opens      int
	closes     int
	reads      int
	failReads  int
	connectErr error
	block      chan struct{}

	// closeWaitsForRead makes Close wait for any read in progress, the
	// way a device driver holding its handle would
	closeWaitsForRead bool
	device            sync.Mutex
}

func (b *testBackend) Connect(ctx context.Context, device string) (videobackend.Connection, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.connectErr != nil {
		return nil, b.connectErr
	}
	b.opens++
	return &testConn{b: b}, nil
}

func (b *testBackend) NewFrame() videoframe.Frame {
	return &testFrame{}
}

func (b *testBackend) counts() (opens, closes, reads int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opens, b.closes, b.reads
}

func (b *testBackend) readCount() int {
	_, _, reads := b.counts()
	return reads
}

// parkReads makes every following read block until unparkReads, it
// returns once the device has stopped delivering.
func (b *testBackend) parkReads(t *testing.T) {
	t.Helper()
	b.mu.Lock()
	b.block = make(chan struct{})
	b.mu.Unlock()

	timeout := time.After(3 * time.Second)
	for {
		before := b.readCount()
		time.Sleep(20 * time.Millisecond)
		if b.readCount() == before {
			return
		}
		select {
		case <-timeout:
			t.Fatal("test timeout 3s limit exceeded")
		default:
		}
	}
}

func (b *testBackend) unparkReads() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.block != nil {
		close(b.block)
		b.block = nil
	}
}

type testConn struct {
	b *testBackend
}

func (c *testConn) UUID() string { return "test-conn" }

func (c *testConn) Read(frame videoframe.Frame) error {
	if c.b.closeWaitsForRead {
		c.b.device.Lock()
		defer c.b.device.Unlock()
	}

	c.b.mu.Lock()
	block := c.b.block
	c.b.mu.Unlock()
	if block != nil {
		<-block
	}

	time.Sleep(time.Millisecond)

	c.b.mu.Lock()
	c.b.reads++
	n := c.b.reads
	fail := n <= c.b.failReads
	c.b.mu.Unlock()

	if fail {
		return errors.New("device hiccup")
	}
	f, ok := frame.(*testFrame)
	if !ok {
		return xerror.New("must pass test frame to test connection read")
	}
	f.data = []byte{byte(n), byte(n >> 8), byte(n >> 16)}
	return nil
}

func (c *testConn) IsOpen() bool { return true }

func (c *testConn) Close() error {
	if c.b.closeWaitsForRead {
		c.b.device.Lock()
		defer c.b.device.Unlock()
	}

	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	c.b.closes++
	return nil
}

type testFrame struct {
	data   []byte
	closed bool
}

func (f *testFrame) DataRef() interface{} { return f.data }

func (f *testFrame) Dimensions() videoframe.Dimensions {
	return videoframe.Dimensions{W: 1, H: 1}
}

func (f *testFrame) Close() { f.closed = true }

// testApplier passes the raw bytes through as a one pixel display and
// remembers the selection it was last asked to apply.
type testApplier struct {
	mu   sync.Mutex
	last effect.Selection
	seen int
}

func (a *testApplier) Apply(frame videoframe.Frame, sel effect.Selection) (videoframe.Display, error) {
	a.mu.Lock()
	a.last = sel
	a.seen++
	a.mu.Unlock()

	data, ok := frame.DataRef().([]byte)
	if !ok {
		return videoframe.Display{}, xerror.New("must pass test frame to test applier")
	}
	return videoframe.NewDisplay(1, 1, append([]byte(nil), data...)), nil
}

func (a *testApplier) lastSelection() effect.Selection {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

type testCascade struct {
	mu     sync.Mutex
	rects  []image.Rectangle
	closed int
	calls  int
}

func (c *testCascade) DetectMultiScaleWithParams(img gocv.Mat, scale float64, minNeighbors, flags int, minSize, maxSize image.Point) []image.Rectangle {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.rects
}

func (c *testCascade) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return nil
}

func (c *testCascade) closedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
