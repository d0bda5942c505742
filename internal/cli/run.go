package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mmynk/tally/internal/models"
	"github.com/mmynk/tally/internal/service"
)

// controller is the part of service.Controller the commands use.
type controller interface {
	service.Actions
	Rows() []models.DisplayRow
}

// withController opens the app, runs fn against a text-backed controller and
// closes the app. With preload the current rows are loaded silently first.
func withController(cmd *cobra.Command, opts *RootOptions, preload bool, fn func(context.Context, controller) error) error {
	app, err := OpenApp(opts)
	if err != nil {
		return err
	}
	defer app.Close()

	presenter := &textPresenter{
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
	}
	ctrl := app.Controller(presenter)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if preload {
		presenter.Quiet = true
		if err := ctrl.Startup(ctx); err != nil {
			return WrapExitError(ExitFailure, "failed to load items", err)
		}
		presenter.Quiet = false
	}

	if err := fn(ctx, ctrl); err != nil {
		return WrapExitError(ExitFailure, cmd.Name()+" failed", err)
	}
	return nil
}
