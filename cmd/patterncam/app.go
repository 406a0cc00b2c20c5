package main

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/tauraamui/patterncam/pkg/configdef"
	"github.com/tauraamui/patterncam/pkg/log"
	"github.com/tauraamui/patterncam/pkg/model"
	"github.com/tauraamui/patterncam/pkg/preview"
)

const windowTitle = "Patterns detection"

type previewApp struct {
	ctl    *preview.Controller
	app    fyne.App
	window fyne.Window

	image  *canvas.Image
	start  *widget.Button
	stop   *widget.Button
	pause  *widget.Button
	face   *widget.Check
	slider *widget.Slider
	models *widget.Select
}

func newPreviewApp(ctl *preview.Controller, values configdef.Values) *previewApp {
	a := app.New()
	p := &previewApp{ctl: ctl, app: a, window: a.NewWindow(windowTitle)}

	p.image = canvas.NewImageFromImage(nil)
	p.image.FillMode = canvas.ImageFillContain
	p.image.SetMinSize(fyne.NewSize(float32(values.DisplayWidth), float32(values.DisplayHeight)))

	p.start = widget.NewButton("Start", p.onStart)
	p.stop = widget.NewButton("Stop/Close", p.onStop)
	p.pause = widget.NewButton("Pause", p.onPause)
	p.face = widget.NewCheck("Face Detect", p.onFaceDetect)

	p.slider = widget.NewSlider(1, 15)
	p.slider.Step = 1
	p.slider.OnChanged = func(v float64) { p.ctl.SetEdgeKernelSize(int(v)) }

	p.models = widget.NewSelect(ctl.ListAvailableModels(), p.onSelectModel)
	p.models.PlaceHolder = "(no models found)"
	for _, name := range p.models.Options {
		// preselect without loading, face detection loads it on demand
		if name == model.Name(values.DefaultModel) {
			p.models.Selected = name
		}
	}

	p.window.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu("File", fyne.NewMenuItem("Exit", p.quit)),
		fyne.NewMenu("About", fyne.NewMenuItem("About", func() {
			dialog.ShowInformation("About", "Live webcam preview with face and edge detection", p.window)
		})),
	))
	p.window.SetContent(p.layout())
	p.window.Resize(fyne.NewSize(800, 500))
	p.window.SetOnClosed(func() { _ = p.ctl.Stop() })

	p.refreshButtons()
	return p
}

func (p *previewApp) layout() fyne.CanvasObject {
	trained := widget.NewCard("Trained model", "", container.NewBorder(nil, nil, widget.NewLabel("File:"), nil, p.models))
	buttons := container.NewGridWithColumns(4, p.face, p.pause, p.stop, p.start)
	edges := widget.NewCard("Edge Detection", "", p.slider)
	controls := container.NewGridWithColumns(2, edges, container.NewVBox(trained, buttons))
	return container.NewBorder(nil, controls, nil, nil, p.image)
}

func (p *previewApp) run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.pumpFrames(ctx)
	p.window.ShowAndRun()
}

func (p *previewApp) quit() {
	p.app.Quit()
}

// pumpFrames hands the newest published frame to the image widget,
// frames published faster than the UI can draw are dropped.
func (p *previewApp) pumpFrames(ctx context.Context) {
	frames := p.ctl.Frames()
	for {
		select {
		case <-ctx.Done():
			return
		case <-frames.Notify():
			display, ok := frames.TryTake()
			if !ok || display.Empty() {
				continue
			}
			img := display.ToImage()
			fyne.Do(func() {
				p.image.Image = img
				p.image.Refresh()
			})
		}
	}
}

func (p *previewApp) onStart() {
	if err := p.ctl.Start(); err != nil {
		log.Error("Unable to start preview: %v", err)
		dialog.ShowError(err, p.window)
	}
	p.refreshButtons()
}

func (p *previewApp) onStop() {
	if err := p.ctl.Stop(); err != nil {
		log.Error("Unable to stop preview cleanly: %v", err)
	}
	p.refreshButtons()
}

func (p *previewApp) onPause() {
	p.ctl.Pause()
	p.refreshButtons()
}

func (p *previewApp) onFaceDetect(on bool) {
	if err := p.ctl.ToggleFaceDetect(on); err != nil {
		dialog.ShowError(fmt.Errorf("face detection disabled: %w", err), p.window)
		p.face.SetChecked(false)
	}
}

func (p *previewApp) onSelectModel(name string) {
	if err := p.ctl.SelectModel(name); err != nil {
		dialog.ShowError(err, p.window)
		if p.face.Checked {
			p.face.SetChecked(false)
		}
	}
}

func (p *previewApp) refreshButtons() {
	state := p.ctl.State()
	enable(p.start, state != preview.Running)
	enable(p.stop, state == preview.Running || state == preview.Paused)
	enable(p.pause, state == preview.Running)
}

func enable(b *widget.Button, on bool) {
	if on {
		b.Enable()
		return
	}
	b.Disable()
}
