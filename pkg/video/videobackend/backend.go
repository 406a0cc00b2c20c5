package videobackend

import (
	"context"

	"github.com/tauraamui/patterncam/pkg/video/videoframe"
)

type Connection interface {
	UUID() string
	Read(videoframe.Frame) error
	IsOpen() bool
	Close() error
}

type Backend interface {
	Connect(context.Context, string) (Connection, error)
	NewFrame() videoframe.Frame
}

const (
	OpenCVName = "opencv"
	MockName   = "mock"
)

func Default() Backend {
	return OpenCV()
}

func OpenCV() Backend {
	return &openCVBackend{}
}

func Mock() Backend {
	return &mockVideoBackend{}
}

func Resolve(t string) Backend {
	switch t {
	case MockName:
		return Mock()
	default:
		return Default()
	}
}
