package preview

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/tauraamui/patterncam/pkg/camera"
	"github.com/tauraamui/patterncam/pkg/effect"
	"github.com/tauraamui/patterncam/pkg/log"
	"github.com/tauraamui/patterncam/pkg/mailbox"
	"github.com/tauraamui/patterncam/pkg/process"
	"github.com/tauraamui/patterncam/pkg/video/videoframe"
)

const readRetryDelay = 10 * time.Millisecond

type captureLoop struct {
	cam      camera.Connection
	pipeline effect.Applier
	control  func() *control
	frames   *mailbox.Mailbox[videoframe.Display]
	interval time.Duration
	running  *int32

	last    videoframe.Display
	hasLast bool
}

func newCaptureProcess(
	cam camera.Connection,
	pipeline effect.Applier,
	control func() *control,
	frames *mailbox.Mailbox[videoframe.Display],
	interval time.Duration,
	running *int32,
) process.Process {
	loop := &captureLoop{
		cam: cam, pipeline: pipeline, control: control,
		frames: frames, interval: interval, running: running,
	}
	return process.New(process.Settings{
		WaitForShutdownMsg: fmt.Sprintf("Stopping capture loop for camera [%s]...", cam.Title()),
		Process:            loop.run,
	})
}

func (l *captureLoop) run(ctx context.Context) []chan interface{} {
	stopped := make(chan interface{})
	atomic.AddInt32(l.running, 1)
	go func() {
		defer close(stopped)
		defer atomic.AddInt32(l.running, -1)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if !l.cycle() {
					sleep(ctx, readRetryDelay)
					continue
				}
				sleep(ctx, l.interval)
			}
		}
	}()
	return []chan interface{}{stopped}
}

// cycle reads and publishes one frame, it reports false when the
// device had nothing to give.
func (l *captureLoop) cycle() bool {
	frame, err := l.cam.Read()
	if err != nil {
		if l.cam.IsClosing() {
			return false
		}
		if !l.cam.IsOpen() {
			log.Warn("Camera [%s] is no longer open, retrying: %v", l.cam.Title(), err)
			return false
		}
		log.Debug("Unable to retrieve frame, retrying: %v", err)
		return false
	}

	ctl := l.control()
	if ctl.paused {
		frame.Close()
		if l.hasLast {
			l.frames.Publish(l.last)
		}
		return true
	}

	display, err := l.pipeline.Apply(frame, ctl.selection)
	frame.Close()
	if err != nil {
		log.Error("Unable to apply effect [%s]: %v", ctl.selection, err)
		return true
	}

	l.last, l.hasLast = display, true
	l.frames.Publish(display)
	return true
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
