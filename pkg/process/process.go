package process

import (
	"context"
	"sync"
	"time"

	"github.com/tauraamui/patterncam/pkg/log"
	"github.com/tauraamui/xerror"
)

type Process interface {
	Setup() Process
	Start()
	Stop()
	Wait()
}

type Settings struct {
	WaitForShutdownMsg string
	// Process launches the work and returns channels which are closed
	// once each launched routine has exited.
	Process func(context.Context) []chan interface{}
}

func New(settings Settings) Process {
	return &process{
		waitForShutdownMsg: settings.WaitForShutdownMsg,
		process:            settings.Process,
	}
}

type process struct {
	mu                 sync.Mutex
	process            func(context.Context) []chan interface{}
	waitForShutdownMsg string
	canceller          context.CancelFunc
	signals            []chan interface{}
}

func (p *process) logShutdown() {
	if len(p.waitForShutdownMsg) > 0 {
		log.Info(p.waitForShutdownMsg)
	}
}

func (p *process) Setup() Process { return p }

func (p *process) Start() {
	ctx, canceller := context.WithCancel(context.Background())
	p.mu.Lock()
	defer p.mu.Unlock()
	p.canceller = canceller
	p.signals = append(p.signals, p.process(ctx)...)
}

func (p *process) Stop() {
	p.logShutdown()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.canceller != nil {
		p.canceller()
	}
}

func (p *process) Wait() {
	p.mu.Lock()
	signals := p.signals
	p.mu.Unlock()
	for _, sig := range signals {
		<-sig
	}
}

// ErrWaitTimeout is returned when a process outlives a bounded wait.
var ErrWaitTimeout = xerror.New("process did not stop in time")

// WaitWithTimeout waits for proc like Wait but gives up after d.
func WaitWithTimeout(proc Process, d time.Duration) error {
	done := make(chan interface{})
	go func() {
		defer close(done)
		proc.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-time.After(d):
		return ErrWaitTimeout
	}
}
