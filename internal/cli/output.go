package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mmynk/tally/internal/models"
	"github.com/mmynk/tally/internal/service"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected input or failed write
	ExitCommandError = 2 // Bad arguments, config, or database open failure
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// textPresenter renders controller output as plain text.
// Notices go to ErrWriter so Writer only carries the table.
type textPresenter struct {
	Writer    io.Writer
	ErrWriter io.Writer

	// Quiet suppresses display updates, for lookups before an action.
	Quiet bool
}

// Ensure textPresenter implements service.Presenter
var _ service.Presenter = (*textPresenter)(nil)

func (p *textPresenter) DisplayUpdated(rows []models.DisplayRow) {
	if p.Quiet {
		return
	}
	writeRows(p.Writer, rows)
}

func (p *textPresenter) Notice(title, message string) {
	fmt.Fprintf(p.ErrWriter, "%s: %s\n", title, message)
}

func (p *textPresenter) ClearInputs() {}

// writeRows prints rows as aligned columns, separating the total row.
func writeRows(w io.Writer, rows []models.DisplayRow) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tITEM\tPRICE\tDATE")
	for _, row := range rows {
		if _, ok := row.(models.TotalRow); ok {
			fmt.Fprintln(tw, "\t\t\t")
		}
		fmt.Fprintln(tw, strings.Join(row.Columns(), "\t"))
	}
	tw.Flush()
}
