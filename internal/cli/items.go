package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mmynk/tally/internal/models"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every item and the total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withController(cmd, rootOpts, false, func(ctx context.Context, c controller) error {
				return c.Startup(ctx)
			})
		},
	}
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <item> <price>",
		Short: "Add an item and print the updated list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withController(cmd, rootOpts, false, func(ctx context.Context, c controller) error {
				return c.AddItemRequested(ctx, args[0], args[1])
			})
		},
	}
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item by ID and print the updated list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("invalid id %q", args[0]), err)
			}
			return withController(cmd, rootOpts, true, func(ctx context.Context, c controller) error {
				return c.DeleteItemRequested(ctx, selectByID(c.Rows(), id))
			})
		},
	}
}

// selectByID finds the displayed row for id. A missing id still yields a
// row so the controller's delete policy decides the outcome.
func selectByID(rows []models.DisplayRow, id int64) models.DisplayRow {
	for _, row := range rows {
		if item, ok := row.(models.ItemRow); ok && item.Item.ID == id {
			return item
		}
	}
	return models.ItemRow{Item: models.LineItem{ID: id}}
}
