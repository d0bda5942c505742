package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	fyneapp "fyne.io/fyne/v2/app"

	"github.com/mmynk/tally/internal/cli"
	"github.com/mmynk/tally/internal/ui"
)

const appID = "io.github.mmynk.tally"

func main() {
	cmd := cli.NewRootCommand(runGUI)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}

// runGUI opens the desktop window and blocks until it is closed.
func runGUI(app *cli.App) error {
	a := fyneapp.NewWithID(appID)

	window := ui.New(a)
	ctrl := app.Controller(window)
	window.Bind(ctrl)

	// Startup failures are shown in the window; the app keeps running.
	if err := ctrl.Startup(context.Background()); err != nil {
		slog.Warn("Initial load failed", "error", err)
	}

	slog.Info("Window opened", "database", app.Config.DBPath)
	window.Window().ShowAndRun()
	slog.Info("Window closed")
	return nil
}
