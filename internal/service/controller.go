package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/mmynk/tally/internal/calculator"
	"github.com/mmynk/tally/internal/metrics"
	"github.com/mmynk/tally/internal/middleware"
	"github.com/mmynk/tally/internal/models"
	"github.com/mmynk/tally/internal/storage"
)

// Notice titles and messages shown to the user.
const (
	TitleSuccess = "Success"
	TitleError   = "Error"

	MsgAdded        = "Data added successfully."
	MsgDeleted      = "Data deleted successfully."
	MsgMissingField = "Please enter both item and price."
	MsgInvalidPrice = "Invalid price. Please enter a number."
	MsgNoSelection  = "Please select a row to delete."
	MsgNotFound     = "The selected row no longer exists."
)

// Action names used for logging and metrics.
const (
	ActionStartup = "startup"
	ActionAdd     = "add_item"
	ActionDelete  = "delete_item"
	ActionRefresh = "refresh"
)

// Options configures a Controller.
type Options struct {
	// StrictDelete reports deleting a row that no longer exists as a
	// validation failure. When false such deletes succeed silently.
	StrictDelete bool

	// Metrics records per-action counters. Optional.
	Metrics *metrics.Metrics
}

// Controller mediates between presentation events and the store and owns
// the published display list.
type Controller struct {
	store     storage.Store
	presenter Presenter
	opts      Options

	rows []models.DisplayRow
}

// NewController creates a Controller with the given storage backend and presenter.
func NewController(store storage.Store, presenter Presenter, opts Options) *Controller {
	return &Controller{
		store:     store,
		presenter: presenter,
		opts:      opts,
	}
}

// Startup publishes the initial display.
func (c *Controller) Startup(ctx context.Context) error {
	slog.Info("Controller starting", "strict_delete", c.opts.StrictDelete)
	return middleware.Instrument(ctx, c.opts.Metrics, ActionStartup, c.refresh)
}

// Refresh reloads every row from the store and republishes the display.
// This is the only path that changes what the presenter shows.
func (c *Controller) Refresh(ctx context.Context) error {
	return middleware.Instrument(ctx, c.opts.Metrics, ActionRefresh, c.refresh)
}

// Rows returns a copy of the last published display.
func (c *Controller) Rows() []models.DisplayRow {
	out := make([]models.DisplayRow, len(c.rows))
	copy(out, c.rows)
	return out
}

// AddItemRequested validates the raw inputs and inserts a new line item.
func (c *Controller) AddItemRequested(ctx context.Context, nameText, priceText string) error {
	return middleware.Instrument(ctx, c.opts.Metrics, ActionAdd, func(ctx context.Context) error {
		if nameText == "" || priceText == "" {
			c.presenter.Notice(TitleError, MsgMissingField)
			return &ValidationError{Reason: ReasonMissingField}
		}

		price, err := parsePrice(priceText)
		if err != nil {
			c.presenter.Notice(TitleError, MsgInvalidPrice)
			return &ValidationError{Reason: ReasonInvalidPrice}
		}

		id, err := c.store.Insert(ctx, nameText, price)
		if err != nil {
			c.noticeError(err)
			return err
		}

		slog.Debug("Line item added",
			"action_id", middleware.GetActionID(ctx),
			"id", id,
			"name", nameText,
			"price", price,
		)
		c.presenter.Notice(TitleSuccess, MsgAdded)

		// The insert already committed; a failed reload is reported on its own.
		_ = c.Refresh(ctx)
		c.presenter.ClearInputs()
		return nil
	})
}

// DeleteItemRequested deletes the line item behind the selected row.
func (c *Controller) DeleteItemRequested(ctx context.Context, selection models.DisplayRow) error {
	return middleware.Instrument(ctx, c.opts.Metrics, ActionDelete, func(ctx context.Context) error {
		row, ok := selection.(models.ItemRow)
		if !ok {
			c.presenter.Notice(TitleError, MsgNoSelection)
			return &ValidationError{Reason: ReasonNoSelection}
		}

		err := c.store.Delete(ctx, row.Item.ID)
		switch {
		case err == nil:
		case errors.Is(err, storage.ErrNotFound):
			if c.opts.StrictDelete {
				c.presenter.Notice(TitleError, MsgNotFound)
				_ = c.Refresh(ctx)
				return &ValidationError{Reason: ReasonNotFound}
			}
			slog.Debug("Deleted row was already gone",
				"action_id", middleware.GetActionID(ctx),
				"id", row.Item.ID,
			)
		default:
			c.noticeError(err)
			return err
		}

		c.presenter.Notice(TitleSuccess, MsgDeleted)
		_ = c.Refresh(ctx)
		return nil
	})
}

func (c *Controller) refresh(ctx context.Context) error {
	items, err := c.store.ListAll(ctx)
	if err != nil {
		c.noticeError(err)
		return err
	}

	c.rows = calculator.DisplayRows(items)
	if c.opts.Metrics != nil {
		c.opts.Metrics.Items.Set(float64(len(items)))
	}
	c.presenter.DisplayUpdated(c.Rows())
	return nil
}

func (c *Controller) noticeError(err error) {
	c.presenter.Notice(TitleError, fmt.Sprintf("An error occurred: %v", err))
}

// parsePrice accepts any finite decimal real, ignoring surrounding
// whitespace. Single underscores between digits group digits ("1_000");
// hexadecimal forms are not prices.
func parsePrice(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if isHexFloat(text) {
		return 0, fmt.Errorf("price %q is hexadecimal", text)
	}
	text, err := stripDigitSeparators(text)
	if err != nil {
		return 0, err
	}

	price, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("price %q is not finite", text)
	}
	return price, nil
}

func isHexFloat(text string) bool {
	text = strings.TrimLeft(text, "+-")
	return strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X")
}

// stripDigitSeparators removes underscores that sit between two digits and
// rejects any other underscore.
func stripDigitSeparators(text string) (string, error) {
	if !strings.Contains(text, "_") {
		return text, nil
	}
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '_' {
			b.WriteByte(c)
			continue
		}
		if i == 0 || i == len(text)-1 || !isDigit(text[i-1]) || !isDigit(text[i+1]) {
			return "", fmt.Errorf("misplaced underscore in %q", text)
		}
	}
	return b.String(), nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
