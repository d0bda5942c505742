package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/mmynk/tally/internal/metrics"
	"github.com/mmynk/tally/internal/models"
	"github.com/mmynk/tally/internal/storage"
	"github.com/mmynk/tally/internal/storage/sqlite"
)

var today = time.Date(2024, time.March, 14, 9, 0, 0, 0, time.Local)

type notice struct {
	title, message string
}

// recordingPresenter captures everything the controller publishes.
type recordingPresenter struct {
	displays [][]models.DisplayRow
	notices  []notice
	clears   int
}

func (p *recordingPresenter) DisplayUpdated(rows []models.DisplayRow) {
	p.displays = append(p.displays, rows)
}

func (p *recordingPresenter) Notice(title, message string) {
	p.notices = append(p.notices, notice{title, message})
}

func (p *recordingPresenter) ClearInputs() {
	p.clears++
}

func (p *recordingPresenter) lastNotice() notice {
	if len(p.notices) == 0 {
		return notice{}
	}
	return p.notices[len(p.notices)-1]
}

func (p *recordingPresenter) lastDisplay() []models.DisplayRow {
	if len(p.displays) == 0 {
		return nil
	}
	return p.displays[len(p.displays)-1]
}

// setupController creates a controller over a temp SQLite database.
func setupController(t *testing.T, opts Options) (*Controller, *recordingPresenter, storage.Store) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name(), sqlite.WithClock(func() time.Time { return today }))
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
		os.Remove(tmpFile.Name())
	})

	presenter := &recordingPresenter{}
	ctrl := NewController(store, presenter, opts)
	if err := ctrl.Startup(context.Background()); err != nil {
		t.Fatalf("Startup failed: %v", err)
	}
	return ctrl, presenter, store
}

func totalOf(t *testing.T, rows []models.DisplayRow) float64 {
	t.Helper()
	if len(rows) == 0 {
		t.Fatal("expected at least the total row")
	}
	total, ok := rows[len(rows)-1].(models.TotalRow)
	if !ok {
		t.Fatalf("expected trailing TotalRow, got %T", rows[len(rows)-1])
	}
	return total.Total
}

func itemRows(rows []models.DisplayRow) []models.ItemRow {
	var out []models.ItemRow
	for _, r := range rows {
		if ir, ok := r.(models.ItemRow); ok {
			out = append(out, ir)
		}
	}
	return out
}

func TestStartupPublishesTotalOnly(t *testing.T) {
	_, presenter, _ := setupController(t, Options{})

	if len(presenter.displays) != 1 {
		t.Fatalf("expected 1 display update, got %d", len(presenter.displays))
	}
	rows := presenter.lastDisplay()
	if len(rows) != 1 {
		t.Fatalf("expected only the total row, got %d rows", len(rows))
	}
	if totalOf(t, rows) != 0 {
		t.Errorf("expected zero total, got %v", totalOf(t, rows))
	}
}

func TestAddItem(t *testing.T) {
	ctrl, presenter, _ := setupController(t, Options{})
	ctx := context.Background()

	if err := ctrl.AddItemRequested(ctx, "Widget", "12.5"); err != nil {
		t.Fatalf("AddItemRequested failed: %v", err)
	}

	items := itemRows(presenter.lastDisplay())
	if len(items) != 1 {
		t.Fatalf("expected 1 item row, got %d", len(items))
	}
	got := items[0].Item
	if got.Name != "Widget" || got.Price != 12.5 {
		t.Errorf("unexpected item: %+v", got)
	}
	if got.DateAdded.Format(models.DateLayout) != "2024-03-14" {
		t.Errorf("date: expected 2024-03-14, got %s", got.DateAdded.Format(models.DateLayout))
	}
	if totalOf(t, presenter.lastDisplay()) != 12.5 {
		t.Errorf("total: expected 12.5, got %v", totalOf(t, presenter.lastDisplay()))
	}

	if presenter.lastNotice() != (notice{TitleSuccess, MsgAdded}) {
		t.Errorf("unexpected notice: %+v", presenter.lastNotice())
	}
	if presenter.clears != 1 {
		t.Errorf("expected inputs cleared once, got %d", presenter.clears)
	}
}

func TestAddItemValidation(t *testing.T) {
	tests := []struct {
		name       string
		nameText   string
		priceText  string
		wantReason string
		wantMsg    string
	}{
		{"empty name", "", "10", ReasonMissingField, MsgMissingField},
		{"empty price", "Widget", "", ReasonMissingField, MsgMissingField},
		{"both empty", "", "", ReasonMissingField, MsgMissingField},
		{"letters", "Widget", "abc", ReasonInvalidPrice, MsgInvalidPrice},
		{"whitespace price", "Widget", "   ", ReasonInvalidPrice, MsgInvalidPrice},
		{"nan", "Widget", "NaN", ReasonInvalidPrice, MsgInvalidPrice},
		{"infinity", "Widget", "inf", ReasonInvalidPrice, MsgInvalidPrice},
		{"overflow", "Widget", "1e400", ReasonInvalidPrice, MsgInvalidPrice},
		{"hex float", "Widget", "0x1p4", ReasonInvalidPrice, MsgInvalidPrice},
		{"negative hex", "Widget", "-0X10", ReasonInvalidPrice, MsgInvalidPrice},
		{"double underscore", "Widget", "1__000", ReasonInvalidPrice, MsgInvalidPrice},
		{"leading underscore", "Widget", "_1000", ReasonInvalidPrice, MsgInvalidPrice},
		{"underscore before point", "Widget", "1_.5", ReasonInvalidPrice, MsgInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl, presenter, store := setupController(t, Options{})

			err := ctrl.AddItemRequested(context.Background(), tt.nameText, tt.priceText)

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Reason != tt.wantReason {
				t.Errorf("reason: expected %q, got %q", tt.wantReason, verr.Reason)
			}
			if presenter.lastNotice() != (notice{TitleError, tt.wantMsg}) {
				t.Errorf("unexpected notice: %+v", presenter.lastNotice())
			}
			if presenter.clears != 0 {
				t.Error("inputs must not be cleared on validation failure")
			}
			if len(presenter.displays) != 1 {
				t.Errorf("display must not change, got %d updates", len(presenter.displays))
			}

			items, err := store.ListAll(context.Background())
			if err != nil {
				t.Fatalf("ListAll failed: %v", err)
			}
			if len(items) != 0 {
				t.Errorf("expected no rows inserted, got %d", len(items))
			}
		})
	}
}

func TestAddItemAcceptsPaddedPrice(t *testing.T) {
	ctrl, presenter, _ := setupController(t, Options{})

	if err := ctrl.AddItemRequested(context.Background(), "Widget", " 4.20 "); err != nil {
		t.Fatalf("AddItemRequested failed: %v", err)
	}
	if totalOf(t, presenter.lastDisplay()) != 4.20 {
		t.Errorf("total: expected 4.20, got %v", totalOf(t, presenter.lastDisplay()))
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"10", 10},
		{"3.50", 3.5},
		{"1_000", 1000},
		{"1_000.2_5", 1000.25},
		{"-2.5", -2.5},
		{"1e3", 1000},
		{".5", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePrice(tt.in)
			if err != nil {
				t.Fatalf("parsePrice(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parsePrice(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAddItemWithDigitSeparators(t *testing.T) {
	ctrl, presenter, _ := setupController(t, Options{})

	if err := ctrl.AddItemRequested(context.Background(), "Laptop", "1_000"); err != nil {
		t.Fatalf("AddItemRequested failed: %v", err)
	}
	if got := totalOf(t, presenter.lastDisplay()); got != 1000 {
		t.Errorf("total: expected 1000, got %v", got)
	}
}

func TestStartupWithNonFinitePrices(t *testing.T) {
	store := &failingStore{items: []models.LineItem{
		{ID: 1, Name: "huge", Price: math.Inf(1)},
		{ID: 2, Name: "Tea", Price: 2.25},
	}}
	presenter := &recordingPresenter{}
	ctrl := NewController(store, presenter, Options{})

	if err := ctrl.Startup(context.Background()); err != nil {
		t.Fatalf("Startup failed: %v", err)
	}
	if got := totalOf(t, presenter.lastDisplay()); got != 2.25 {
		t.Errorf("total: expected 2.25, got %v", got)
	}
}

func TestStartupOnLegacyDatabase(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "legacy-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	seed, err := sql.Open("sqlite", tmpFile.Name())
	if err != nil {
		t.Fatalf("failed to open seed connection: %v", err)
	}
	_, err = seed.Exec(`
		CREATE TABLE my_table (id INTEGER PRIMARY KEY, item TEXT NOT NULL, price REAL, date_added DATE);
		INSERT INTO my_table (item, price, date_added) VALUES ('x', 9e999, '2024-01-01');
		INSERT INTO my_table (item, price, date_added) VALUES ('Coffee', 3.5, '2024-01-02');`)
	seed.Close()
	if err != nil {
		t.Fatalf("failed to seed legacy rows: %v", err)
	}

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	presenter := &recordingPresenter{}
	if err := NewController(store, presenter, Options{}).Startup(context.Background()); err != nil {
		t.Fatalf("Startup failed: %v", err)
	}

	rows := presenter.lastDisplay()
	if len(itemRows(rows)) != 2 {
		t.Errorf("expected both legacy rows listed, got %d", len(itemRows(rows)))
	}
	if got := totalOf(t, rows); got != 3.5 {
		t.Errorf("total: expected 3.5, got %v", got)
	}
}

func TestDeleteRejectsTotalAndEmptySelection(t *testing.T) {
	ctrl, presenter, store := setupController(t, Options{})
	ctx := context.Background()

	if err := ctrl.AddItemRequested(ctx, "Widget", "5"); err != nil {
		t.Fatalf("AddItemRequested failed: %v", err)
	}
	rows := ctrl.Rows()
	totalRow := rows[len(rows)-1]

	for _, selection := range []models.DisplayRow{nil, totalRow} {
		err := ctrl.DeleteItemRequested(ctx, selection)

		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Reason != ReasonNoSelection {
			t.Errorf("selection %#v: expected no selection error, got %v", selection, err)
		}
		if presenter.lastNotice() != (notice{TitleError, MsgNoSelection}) {
			t.Errorf("unexpected notice: %+v", presenter.lastNotice())
		}
	}

	items, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected row to survive, got %d rows", len(items))
	}
}

func TestDeleteMissingRow(t *testing.T) {
	stale := models.ItemRow{Item: models.LineItem{ID: 42, Name: "Ghost", Price: 1}}

	t.Run("idempotent by default", func(t *testing.T) {
		ctrl, presenter, _ := setupController(t, Options{})

		if err := ctrl.DeleteItemRequested(context.Background(), stale); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if presenter.lastNotice() != (notice{TitleSuccess, MsgDeleted}) {
			t.Errorf("unexpected notice: %+v", presenter.lastNotice())
		}
		if len(presenter.displays) != 2 {
			t.Errorf("expected a refresh after delete, got %d updates", len(presenter.displays))
		}
	})

	t.Run("strict reports not found", func(t *testing.T) {
		ctrl, presenter, _ := setupController(t, Options{StrictDelete: true})

		err := ctrl.DeleteItemRequested(context.Background(), stale)
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Reason != ReasonNotFound {
			t.Fatalf("expected not found error, got %v", err)
		}
		if presenter.lastNotice() != (notice{TitleError, MsgNotFound}) {
			t.Errorf("unexpected notice: %+v", presenter.lastNotice())
		}
		if len(presenter.displays) != 2 {
			t.Errorf("expected a refresh after stale delete, got %d updates", len(presenter.displays))
		}
	})
}

func TestRefreshIsIdempotent(t *testing.T) {
	ctrl, presenter, _ := setupController(t, Options{})
	ctx := context.Background()

	for _, in := range [][2]string{{"A", "1"}, {"B", "2.5"}} {
		if err := ctrl.AddItemRequested(ctx, in[0], in[1]); err != nil {
			t.Fatalf("AddItemRequested failed: %v", err)
		}
	}

	if err := ctrl.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	first := presenter.lastDisplay()
	if err := ctrl.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	second := presenter.lastDisplay()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("refresh not idempotent:\n first=%v\nsecond=%v", first, second)
	}
}

func TestCoffeeAndTea(t *testing.T) {
	m := metrics.New()
	ctrl, presenter, store := setupController(t, Options{Metrics: m})
	ctx := context.Background()

	if err := ctrl.AddItemRequested(ctx, "Coffee", "3.50"); err != nil {
		t.Fatalf("add Coffee failed: %v", err)
	}
	if err := ctrl.AddItemRequested(ctx, "Tea", "2.25"); err != nil {
		t.Fatalf("add Tea failed: %v", err)
	}

	items, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(items) != 2 || items[0].Name != "Coffee" || items[1].Name != "Tea" {
		t.Fatalf("expected Coffee then Tea, got %+v", items)
	}
	if got := totalOf(t, presenter.lastDisplay()); got != 5.75 {
		t.Errorf("total: expected 5.75, got %v", got)
	}

	var coffee models.DisplayRow
	for _, r := range itemRows(ctrl.Rows()) {
		if r.Item.Name == "Coffee" {
			coffee = r
		}
	}
	if err := ctrl.DeleteItemRequested(ctx, coffee); err != nil {
		t.Fatalf("delete Coffee failed: %v", err)
	}

	if got := totalOf(t, presenter.lastDisplay()); got != 2.25 {
		t.Errorf("total: expected 2.25, got %v", got)
	}
	items, err = store.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Tea" || items[0].Price != 2.25 {
		t.Errorf("expected only Tea 2.25, got %+v", items)
	}

	snap, err := m.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.Counts[ActionAdd+"/ok"] != 2 || snap.Counts[ActionDelete+"/ok"] != 1 {
		t.Errorf("unexpected counters: %v", snap.Counts)
	}
	if snap.Items != 1 {
		t.Errorf("items gauge: expected 1, got %v", snap.Items)
	}
	if _, ok := snap.Seconds[ActionRefresh]; !ok {
		t.Errorf("expected refresh timing, got %v", snap.Seconds)
	}
}

// failingStore serves reads from items and fails every write.
type failingStore struct {
	items   []models.LineItem
	failAll bool
}

var errDiskFull = errors.New("disk full")

func (s *failingStore) Insert(ctx context.Context, name string, price float64) (int64, error) {
	return 0, &storage.PersistenceError{Op: "failed to insert line item", Err: errDiskFull}
}

func (s *failingStore) ListAll(ctx context.Context) ([]models.LineItem, error) {
	if s.failAll {
		return nil, &storage.PersistenceError{Op: "failed to list line items", Err: errDiskFull}
	}
	return s.items, nil
}

func (s *failingStore) Delete(ctx context.Context, id int64) error {
	return &storage.PersistenceError{Op: "failed to delete line item", Err: errDiskFull}
}

func (s *failingStore) Close() error { return nil }

func TestPersistenceErrorsLeaveStateUntouched(t *testing.T) {
	store := &failingStore{items: []models.LineItem{{ID: 1, Name: "Coffee", Price: 3.5, DateAdded: today}}}
	presenter := &recordingPresenter{}
	ctrl := NewController(store, presenter, Options{})
	ctx := context.Background()

	if err := ctrl.Startup(ctx); err != nil {
		t.Fatalf("Startup failed: %v", err)
	}
	before := ctrl.Rows()

	t.Run("insert", func(t *testing.T) {
		err := ctrl.AddItemRequested(ctx, "Tea", "2.25")
		var perr *storage.PersistenceError
		if !errors.As(err, &perr) {
			t.Fatalf("expected PersistenceError, got %v", err)
		}
		if presenter.clears != 0 {
			t.Error("inputs must stay untouched after a failed insert")
		}
		want := notice{TitleError, "An error occurred: failed to insert line item: disk full"}
		if presenter.lastNotice() != want {
			t.Errorf("unexpected notice: %+v", presenter.lastNotice())
		}
	})

	t.Run("delete", func(t *testing.T) {
		err := ctrl.DeleteItemRequested(ctx, before[0])
		if !errors.Is(err, errDiskFull) {
			t.Fatalf("expected disk full, got %v", err)
		}
		if presenter.lastNotice().title != TitleError {
			t.Errorf("unexpected notice: %+v", presenter.lastNotice())
		}
	})

	t.Run("refresh", func(t *testing.T) {
		store.failAll = true
		if err := ctrl.Refresh(ctx); err == nil {
			t.Fatal("expected refresh error")
		}
	})

	if len(presenter.displays) != 1 {
		t.Errorf("display must stay at startup state, got %d updates", len(presenter.displays))
	}
	if !reflect.DeepEqual(before, ctrl.Rows()) {
		t.Errorf("rows changed after failures: %v", ctrl.Rows())
	}
}
