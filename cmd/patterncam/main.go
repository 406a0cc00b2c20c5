package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"github.com/tauraamui/patterncam/pkg/camera"
	"github.com/tauraamui/patterncam/pkg/config"
	"github.com/tauraamui/patterncam/pkg/configdef"
	"github.com/tauraamui/patterncam/pkg/log"
	"github.com/tauraamui/patterncam/pkg/preview"
	"gocv.io/x/gocv"
)

const openCheckTimeout = 10 * time.Second

func setup() (string, error) {
	log.Info("Setting up patterncam...")

	err := config.DefaultCreator().Create()
	if err != nil {
		if !errors.Is(err, configdef.ErrConfigAlreadyExists) {
			return "", err
		}
		log.Error(err.Error())
	}

	return "Setup successful...", nil
}

func manage() (string, error) {
	usage := "Usage: patterncam [setup]"

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "setup":
			return setup()
		default:
			return usage, nil
		}
	}

	values, err := config.DefaultResolver().Resolve()
	if err != nil {
		return "", err
	}
	if values.Debug {
		log.SetLevel(log.DebugLevel)
	}

	sett := settingsFromConfig(values)

	ctx, cancel := context.WithTimeout(context.Background(), openCheckTimeout)
	err = camera.CheckAvailable(ctx, sett.Device, sett.Backend)
	cancel()
	if err != nil {
		return "", err
	}

	ctl := preview.NewController(sett)
	ui := newPreviewApp(ctl, values)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		killSignal := <-interrupt
		fmt.Print("\r")
		log.Error("Received signal: %s", killSignal)
		fyne.Do(ui.quit)
	}()

	ui.run()

	log.Info("Shutting down preview...")
	if err := ctl.Close(); err != nil {
		log.Error("Unable to close camera cleanly: %v", err)
	}
	log.Debug("OpenCV mats still open: %d", gocv.MatProfile.Count())

	return "Shutdown successful... BYE! 👋", nil
}

func reportStartupFailure(err error) {
	if errors.Is(err, camera.ErrUnavailable) {
		log.Fatal("No camera available: %v", err)
		return
	}
	log.Fatal("%v", err)
}

func init() {
	log.SetLevel(strings.ToLower(os.Getenv("PATTERNCAM_LOGGING_LEVEL")))
}

func main() {
	status, err := manage()
	if err != nil {
		reportStartupFailure(err)
		os.Exit(1)
	}

	log.Info(status)
}
