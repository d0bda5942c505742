// Package ui is the Fyne desktop front end. It renders what the controller
// publishes and forwards button presses as controller actions.
package ui

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/mmynk/tally/internal/models"
	"github.com/mmynk/tally/internal/service"
)

const columns = 4

// Window is the main application window.
type Window struct {
	window  fyne.Window
	actions service.Actions

	nameEntry    *widget.Entry
	priceEntry   *widget.Entry
	addButton    *widget.Button
	deleteButton *widget.Button
	list         *widget.List

	rows     []models.DisplayRow
	selected widget.ListItemID
}

// Ensure Window implements service.Presenter
var _ service.Presenter = (*Window)(nil)

// New builds the window. Call Bind before showing it.
func New(app fyne.App) *Window {
	w := &Window{
		window:   app.NewWindow("Tally"),
		selected: -1,
	}
	w.setupComponents()
	w.setupLayout()
	return w
}

// Bind connects button presses to the controller.
func (w *Window) Bind(actions service.Actions) {
	w.actions = actions
}

// Window returns the underlying Fyne window.
func (w *Window) Window() fyne.Window {
	return w.window
}

// Selection returns the selected row, or nil when nothing is selected.
func (w *Window) Selection() models.DisplayRow {
	if w.selected < 0 || w.selected >= len(w.rows) {
		return nil
	}
	return w.rows[w.selected]
}

// DisplayUpdated replaces the list contents and drops the selection.
func (w *Window) DisplayUpdated(rows []models.DisplayRow) {
	w.rows = rows
	w.list.UnselectAll()
	w.selected = -1
	w.list.Refresh()
}

// Notice shows a popup with an OK button.
func (w *Window) Notice(title, message string) {
	dialog.ShowInformation(title, message, w.window)
}

// ClearInputs empties both entries.
func (w *Window) ClearInputs() {
	w.nameEntry.SetText("")
	w.priceEntry.SetText("")
}

func (w *Window) setupComponents() {
	w.nameEntry = widget.NewEntry()
	w.priceEntry = widget.NewEntry()

	w.addButton = widget.NewButton("Add Data", w.onAdd)
	w.deleteButton = widget.NewButton("Delete Data", w.onDelete)

	w.list = widget.NewList(
		func() int { return len(w.rows) },
		func() fyne.CanvasObject {
			cells := make([]fyne.CanvasObject, columns)
			for i := range cells {
				cells[i] = widget.NewLabel("")
			}
			return container.NewGridWithColumns(columns, cells...)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(w.rows) {
				return
			}
			cols := w.rows[id].Columns()
			for i, cell := range obj.(*fyne.Container).Objects {
				text := ""
				if i < len(cols) {
					text = cols[i]
				}
				cell.(*widget.Label).SetText(text)
			}
		},
	)
	w.list.OnSelected = func(id widget.ListItemID) { w.selected = id }
	w.list.OnUnselected = func(widget.ListItemID) { w.selected = -1 }
}

func (w *Window) setupLayout() {
	form := container.NewVBox(
		widget.NewLabel("Item:"),
		w.nameEntry,
		widget.NewLabel("Price:"),
		w.priceEntry,
		w.addButton,
		w.deleteButton,
	)
	w.window.SetContent(container.NewBorder(form, nil, nil, nil, w.list))
	w.window.Resize(fyne.NewSize(480, 640))
}

func (w *Window) onAdd() {
	if w.actions == nil {
		return
	}
	// Errors are already shown as notices.
	_ = w.actions.AddItemRequested(context.Background(), w.nameEntry.Text, w.priceEntry.Text)
}

func (w *Window) onDelete() {
	if w.actions == nil {
		return
	}
	_ = w.actions.DeleteItemRequested(context.Background(), w.Selection())
}
