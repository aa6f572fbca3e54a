package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/BrugadaSyndrome/bslogger"
	"github.com/gdamore/tcell/v2"

	"MandelbrotViewer/misc"
	"MandelbrotViewer/render"
	"MandelbrotViewer/terminal"
	"MandelbrotViewer/viewer"
	"MandelbrotViewer/window"
)

var (
	height, width                int
	outFile, settingsFile, shell string
	transitions                  bool
)

func main() {
	parseArguments()
	logger := bslogger.NewLogger("Main", bslogger.Normal, nil)
	logArguments(logger)

	settings, err := viewer.NewSettings(settingsFile)
	misc.CheckError(err, logger, misc.Fatal)
	if width > 0 || height > 0 {
		w, h := settings.Width, settings.Height
		if width > 0 {
			w = width
		}
		if height > 0 {
			h = height
		}
		settings.SetResolution(w, h)
	}

	switch shell {
	case "window":
		startWindow(settings, logger)
	case "terminal":
		startTerminal(settings, logger)
	case "headless":
		startHeadless(settings, logger)
	default:
		logger.Fatalf("Unknown shell: %s", shell)
	}
}

func startWindow(settings viewer.Settings, logger bslogger.Logger) {
	v, err := viewer.NewViewer(settings)
	misc.CheckError(err, logger, misc.Fatal)
	misc.CheckError(window.Run(v), logger, misc.Fatal)
}

func startTerminal(settings viewer.Settings, logger bslogger.Logger) {
	screen, err := tcell.NewScreen()
	misc.CheckError(err, logger, misc.Fatal)
	misc.CheckError(screen.Init(), logger, misc.Fatal)

	// The pixel grid follows the terminal unless it was given explicitly
	if width <= 0 && height <= 0 {
		settings.SetResolution(terminal.Resolution(screen))
	}
	v, err := viewer.NewViewer(settings)
	if err != nil {
		screen.Fini()
		logger.Fatal(err.Error())
	}
	err = terminal.NewTerminal(screen, v).Run()
	screen.Fini()
	misc.CheckError(err, logger, misc.Fatal)
}

func startHeadless(settings viewer.Settings, logger bslogger.Logger) {
	v, err := viewer.NewViewer(settings)
	misc.CheckError(err, logger, misc.Fatal)
	defer v.OnQuit()

	if !transitions {
		frame, err := v.Start().Wait()
		misc.CheckError(err, logger, misc.Fatal)
		misc.CheckError(frame.Save(outFile), logger, misc.Fatal)
		logger.Infof("Saved image to %s", outFile)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ext := filepath.Ext(outFile)
	base := strings.TrimSuffix(outFile, ext)

	// Keep a copy of the settings next to the images so the run can be repeated
	settingsBytes, err := json.MarshalIndent(settings, "", "  ")
	misc.CheckError(err, logger, misc.Warning)
	bytesWritten, err := misc.WriteFile(base+"_settings.json", settingsBytes)
	if err != nil || bytesWritten == 0 {
		logger.Warningf("Unable to make a backup copy of the settings: %v", err)
	}
	imageNumber := 0
	for i, transition := range settings.Transitions {
		err := v.RenderTransition(ctx, transition, func(index int, frame *render.Frame) error {
			imageNumber++
			path := fmt.Sprintf("%s_%04d%s", base, imageNumber, ext)
			if err := frame.Save(path); err != nil {
				return err
			}
			logger.Infof("Saved transition %d frame %d to %s", i, index, path)
			return nil
		})
		misc.CheckError(err, logger, misc.Error)
		if err != nil {
			return
		}
	}
	if imageNumber == 0 {
		logger.Warning("No transitions in the settings, nothing was rendered")
	}
}
