package preview

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tauraamui/patterncam/pkg/camera"
	"github.com/tauraamui/patterncam/pkg/effect"
	"github.com/tauraamui/patterncam/pkg/log"
	"github.com/tauraamui/patterncam/pkg/mailbox"
	"github.com/tauraamui/patterncam/pkg/model"
	"github.com/tauraamui/patterncam/pkg/process"
	"github.com/tauraamui/patterncam/pkg/video/videobackend"
	"github.com/tauraamui/patterncam/pkg/video/videoframe"
	"github.com/tauraamui/xerror"
)

const (
	DefaultTitle       = "webcam"
	DefaultStopTimeout = 2 * time.Second
)

// ErrLoopBusy is returned by Start while a previous capture loop which
// outlived its stop wait still has not exited.
var ErrLoopBusy = xerror.New("previous capture loop has not exited")

type Settings struct {
	Title         string
	Device        string
	Backend       videobackend.Backend
	Pipeline      effect.Applier
	Models        *model.Cache
	DefaultModel  string
	FrameInterval time.Duration
	StopTimeout   time.Duration
}

// Controller owns the playback state machine and is the command surface
// the UI talks to. Commands are safe to call from any goroutine.
type Controller struct {
	mu   sync.Mutex
	sett Settings

	state     State
	cam       camera.Connection
	loop      process.Process
	lingering chan struct{}
	running   int32

	control atomic.Pointer[control]
	frames  *mailbox.Mailbox[videoframe.Display]

	faceOn     bool
	kernelSize int
	modelName  string
	model      *model.Handle
}

func NewController(sett Settings) *Controller {
	if len(sett.Title) == 0 {
		sett.Title = DefaultTitle
	}
	if sett.Backend == nil {
		sett.Backend = videobackend.Default()
	}
	if sett.Pipeline == nil {
		sett.Pipeline = effect.NewPipeline()
	}
	if sett.Models == nil {
		sett.Models = model.NewCache(model.NewCatalog(""))
	}
	if sett.StopTimeout <= 0 {
		sett.StopTimeout = DefaultStopTimeout
	}

	c := &Controller{
		sett:       sett,
		state:      Idle,
		frames:     mailbox.New[videoframe.Display](),
		kernelSize: effect.MinKernelSize,
		modelName:  model.Name(sett.DefaultModel),
	}
	c.publishControl()
	return c
}

func (c *Controller) Start() error {
	return c.StartWithCancel(context.Background())
}

// StartWithCancel opens the device and launches the capture loop, or
// resumes when paused. The context only bounds opening the device.
func (c *Controller) StartWithCancel(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Running:
		return nil
	case Paused:
		c.setState(Running)
		return nil
	}

	if err := c.awaitLingeringLoop(); err != nil {
		return err
	}

	log.Info("Connecting to camera: [%s]...", c.sett.Title)
	cam, err := camera.ConnectWithCancel(ctx, c.sett.Title, c.sett.Device, c.sett.Backend)
	if err != nil {
		return err
	}
	log.Info("Connected successfully to camera: [%s] (%s)", c.sett.Title, cam.UUID())

	c.cam = cam
	c.setState(Running)
	c.loop = newCaptureProcess(
		cam, c.sett.Pipeline, c.control.Load, c.frames, c.sett.FrameInterval, &c.running,
	).Setup()
	c.loop.Start()
	return nil
}

func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Paused {
		c.setState(Running)
	}
}

// Pause freezes the visible output on the last published frame, the
// device keeps being read.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Running {
		log.Debug("Ignoring pause while %s", c.state)
		return
	}
	c.setState(Paused)
}

// Stop ends the capture loop and releases the device. It may be called
// in any state and any number of times.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Stopped {
		return nil
	}
	c.setState(Stopped)

	defer func() {
		log.Debug("Frames published: %d, dropped by display: %d", c.frames.Published(), c.frames.Drops())
	}()

	if c.loop != nil {
		c.loop.Stop()
		err := process.WaitWithTimeout(c.loop, c.sett.StopTimeout)
		loop := c.loop
		c.loop = nil
		if err != nil {
			log.Warn("Capture loop for camera [%s] did not stop within %s", c.sett.Title, c.sett.StopTimeout)
			// the loop may be stuck inside a device read, so the
			// device is released once it finally exits
			c.lingering = releaseAfterExit(loop, c.cam, c.sett.Title)
			c.cam = nil
			return nil
		}
	}

	if c.cam == nil {
		return nil
	}

	err := closeCamera(c.cam, c.sett.Title)
	c.cam = nil
	return err
}

func closeCamera(cam camera.Connection, title string) error {
	log.Warn("Closing camera connection: [%s] (%s)...", title, cam.UUID())
	return cam.Close()
}

func releaseAfterExit(loop process.Process, cam camera.Connection, title string) chan struct{} {
	released := make(chan struct{})
	go func() {
		defer close(released)
		loop.Wait()
		if cam == nil {
			return
		}
		if err := closeCamera(cam, title); err != nil {
			log.Error("Unable to close camera [%s]: %v", title, err)
		}
	}()
	return released
}

// awaitLingeringLoop gives a loop which outlived Stop one more stop
// timeout to exit and release its device.
func (c *Controller) awaitLingeringLoop() error {
	if c.lingering == nil {
		return nil
	}
	t := time.NewTimer(c.sett.StopTimeout)
	defer t.Stop()
	select {
	case <-c.lingering:
		c.lingering = nil
		return nil
	case <-t.C:
		return ErrLoopBusy
	}
}

// SelectModel loads the named cascade and makes it the detection model.
// On failure face detection stays disabled until a valid model loads.
func (c *Controller) SelectModel(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modelName = model.Name(name)
	return c.loadModel()
}

func (c *Controller) ToggleFaceDetect(on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.faceOn = on
	if on && c.model == nil {
		return c.loadModel()
	}
	c.publishControl()
	return nil
}

// SetEdgeKernelSize ignores even or out of range sizes, 1 turns edge
// detection off.
func (c *Controller) SetEdgeKernelSize(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !effect.ValidKernelSize(n) {
		log.Debug("Ignoring edge kernel size %d", n)
		return
	}
	c.kernelSize = n
	c.publishControl()
}

func (c *Controller) loadModel() error {
	h, err := c.sett.Models.Get(c.modelName)
	if err != nil {
		c.model = nil
		c.publishControl()
		c.sett.Models.Retain()
		return err
	}

	c.model = h
	c.publishControl()
	// only after the loop can no longer pick up the old model
	c.sett.Models.Retain(h.Name())
	return nil
}

func (c *Controller) ListAvailableModels() []string {
	names, err := c.sett.Models.Catalog().List()
	if err != nil {
		log.Error("Unable to list models: %v", err)
		return []string{}
	}
	return names
}

// Frames is where processed frames are published for display.
func (c *Controller) Frames() *mailbox.Mailbox[videoframe.Display] {
	return c.frames
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Selection() effect.Selection {
	return c.control.Load().selection
}

func (c *Controller) ModelName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modelName
}

// LoopsRunning counts capture loops which have not exited yet.
func (c *Controller) LoopsRunning() int {
	return int(atomic.LoadInt32(&c.running))
}

// Close stops playback and unloads every model.
func (c *Controller) Close() error {
	err := c.Stop()
	c.sett.Models.Close()
	return err
}

func (c *Controller) setState(s State) {
	if c.state != s {
		log.Info("Preview [%s] %s -> %s", c.sett.Title, c.state, s)
	}
	c.state = s
	c.publishControl()
}

func (c *Controller) selection() effect.Selection {
	if c.faceOn && c.model != nil {
		return effect.Faces(c.model)
	}
	if c.kernelSize > effect.MinKernelSize {
		return effect.Edges(c.kernelSize)
	}
	return effect.NoEffect()
}

func (c *Controller) publishControl() {
	c.control.Store(&control{selection: c.selection(), paused: c.state == Paused})
}
