package service

import (
	"context"

	"github.com/mmynk/tally/internal/models"
)

// Presenter is the outbound side of the presentation layer.
// Implementations render whatever the controller publishes.
type Presenter interface {
	// DisplayUpdated replaces the rendered list with rows.
	DisplayUpdated(rows []models.DisplayRow)

	// Notice shows a message; success and failure share this path and
	// differ only by title.
	Notice(title, message string)

	// ClearInputs empties the name and price inputs.
	ClearInputs()
}

// Actions is the inbound side of the presentation layer: the events any
// front end raises in response to the user.
type Actions interface {
	Startup(ctx context.Context) error
	AddItemRequested(ctx context.Context, nameText, priceText string) error
	DeleteItemRequested(ctx context.Context, selection models.DisplayRow) error
}

// Ensure Controller implements Actions
var _ Actions = (*Controller)(nil)
