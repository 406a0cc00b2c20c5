package camera

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/tauraamui/patterncam/pkg/video/videobackend"
	"github.com/tauraamui/patterncam/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

var (
	// ErrUnavailable means no usable device could be opened.
	ErrUnavailable = errors.New("camera unavailable")
	// ErrReadFailed is a transient per-frame failure, callers retry.
	ErrReadFailed = errors.New("camera read failed")
)

type Connection interface {
	UUID() string
	Title() string
	Read() (videoframe.Frame, error)
	IsOpen() bool
	IsClosing() bool
	Close() error
}

type connection struct {
	uuid      string
	backend   videobackend.Backend
	title     string
	mu        sync.Mutex
	isClosing bool
	vc        videobackend.Connection
}

func (c *connection) UUID() string {
	return c.uuid
}

func (c *connection) Title() string {
	return c.title
}

func (c *connection) Read() (videoframe.Frame, error) {
	frame := c.backend.NewFrame()
	if err := c.vc.Read(frame); err != nil {
		frame.Close()
		return nil, xerror.Errorf("%w [%s]: %v", ErrReadFailed, c.title, err)
	}
	return frame, nil
}

func (c *connection) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isClosing {
		return false
	}
	return c.vc.IsOpen()
}

func (c *connection) IsClosing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isClosing
}

// Close releases the device, repeated calls do nothing.
func (c *connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isClosing {
		return nil
	}
	c.isClosing = true
	return c.vc.Close()
}

func connect(ctx context.Context, title, device string, backend videobackend.Backend) (Connection, error) {
	vc, err := backend.Connect(ctx, device)
	if err != nil {
		return nil, xerror.Errorf("%w [%s]: %v", ErrUnavailable, title, err)
	}
	return &connection{
		uuid:    uuid.NewString(),
		backend: backend,
		title:   title,
		vc:      vc,
	}, nil
}

func Connect(title, device string, backend videobackend.Backend) (Connection, error) {
	return connect(context.Background(), title, device, backend)
}

func ConnectWithCancel(cancel context.Context, title, device string, backend videobackend.Backend) (Connection, error) {
	return connect(cancel, title, device, backend)
}

// CheckAvailable checks a device can be opened at all, releasing it straight after.
func CheckAvailable(ctx context.Context, device string, backend videobackend.Backend) error {
	conn, err := connect(ctx, "availability check", device, backend)
	if err != nil {
		return err
	}
	return conn.Close()
}
