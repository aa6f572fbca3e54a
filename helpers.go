package main

import (
	"flag"
	"fmt"

	"github.com/BrugadaSyndrome/bslogger"
)

func parseArguments() {
	flag.StringVar(&settingsFile, "settings", "", "Json file with viewer settings, defaults are used when empty")
	flag.StringVar(&shell, "shell", "window", "How to show the viewer: window, terminal or headless")
	flag.StringVar(&outFile, "out", "mandelbrot.png", "Image written by the headless shell (.png or .jpg)")
	flag.BoolVar(&transitions, "transition", false, "Headless only: render the transitions from the settings file as numbered images")
	flag.IntVar(&width, "width", 0, "Override the width of the view in pixels")
	flag.IntVar(&height, "height", 0, "Override the height of the view in pixels")
	flag.Parse()
}

func logArguments(logger bslogger.Logger) {
	output := "\nGot arguments:\n"
	output += fmt.Sprintf("Settings File: %s\n", settingsFile)
	output += fmt.Sprintf("Shell: %s\n", shell)
	output += fmt.Sprintf("Out File: %s\n", outFile)
	output += fmt.Sprintf("Transition: %t\n", transitions)
	output += fmt.Sprintf("Resolution Override: %dx%d\n", width, height)
	logger.Debug(output)
}
