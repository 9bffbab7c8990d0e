// Package handler exposes the HTTP handlers of the sync gateway. The
// gateway translates requests into store operations and, for single
// upserts, pushes the persisted row to every connected session once the
// write has committed.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stock-opname/internal/broadcast"
	"github.com/iliyamo/stock-opname/internal/model"
	"github.com/iliyamo/stock-opname/internal/repository"
)

// StockStore is the slice of the repository the gateway depends on.
type StockStore interface {
	GetAll(ctx context.Context) ([]model.StockRow, error)
	Upsert(ctx context.Context, row model.StockRow) (model.StockRow, error)
	UpsertMany(ctx context.Context, rows []model.StockRow) (int, error)
}

// EventPublisher pushes an event to every connected session. Delivery
// is best-effort and must never block the request path.
type EventPublisher interface {
	Publish(ctx context.Context, ev broadcast.Event)
}

// StockHandler aggregates the store and the push channel for the three
// gateway operations. Notify, when set, forwards each committed single
// upsert to the downstream queue; it runs in its own goroutine and its
// failures never reach the caller.
type StockHandler struct {
	Store  StockStore
	Events EventPublisher
	Notify func(ctx context.Context, row model.StockRow)
}

// List handles GET /api/stocks and returns the full current row set.
// An empty store yields [], not an error.
func (h *StockHandler) List(c echo.Context) error {
	rows, err := h.Store.GetAll(c.Request().Context())
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// UpsertOne handles POST /api/stocks (and the /api/stocks/update alias).
// The row name is required; a missing name is a client error and nothing
// is written. On success the persisted row — with the server-resolved
// total and timestamp, not the raw submitted values — is broadcast to
// all sessions and returned to the caller.
func (h *StockHandler) UpsertOne(c echo.Context) error {
	var body model.StockRow
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	persisted, err := h.Store.Upsert(c.Request().Context(), body)
	if err != nil {
		return storeError(c, err)
	}

	// The write is durable at this point; fan-out happens now and the
	// response does not wait for delivery to every client.
	h.Events.Publish(c.Request().Context(), broadcast.Event{
		Name: broadcast.EventStockUpdate,
		Data: persisted,
	})
	if h.Notify != nil {
		go h.Notify(context.Background(), persisted)
	}

	return c.JSON(http.StatusOK, map[string]any{"ok": true, "data": persisted})
}

// UpsertMany handles POST /api/stocks/bulk. The body is either a JSON
// array of rows or a name-keyed object, which is normalized to the
// array form. Items with an empty name are silently dropped. All valid
// rows are written in one all-or-nothing transaction; on success a
// single count-only notice is broadcast instead of a per-row storm, and
// on failure nothing is broadcast at all.
func (h *StockHandler) UpsertMany(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	rows, ok := decodeBulkBody(raw)
	if !ok || len(rows) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "body must be a non-empty JSON array or object of rows"})
	}

	count, err := h.Store.UpsertMany(c.Request().Context(), rows)
	if err != nil {
		return storeError(c, err)
	}

	if count > 0 {
		h.Events.Publish(c.Request().Context(), broadcast.Event{
			Name: broadcast.EventBulkUpdate,
			Data: broadcast.BulkNotice{Count: count},
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "count": count})
}

// decodeBulkBody accepts the two wire shapes of a bulk payload. The
// name-keyed object form fills each row's name from its key when the
// row itself does not carry one, and is sorted by key so the write
// order is deterministic.
func decodeBulkBody(raw []byte) ([]model.StockRow, bool) {
	var rows []model.StockRow
	if err := json.Unmarshal(raw, &rows); err == nil {
		return rows, true
	}
	var keyed map[string]model.StockRow
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return nil, false
	}
	names := make([]string, 0, len(keyed))
	for name := range keyed {
		names = append(names, name)
	}
	sort.Strings(names)
	rows = make([]model.StockRow, 0, len(keyed))
	for _, name := range names {
		row := keyed[name]
		if strings.TrimSpace(row.Name) == "" {
			row.Name = name
		}
		rows = append(rows, row)
	}
	return rows, true
}

// storeError maps repository failures onto the 5xx taxonomy: a missing
// database handle is a 503 (degraded mode), everything else a 500.
func storeError(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrStoreUnavailable) {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "store unavailable"})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
}
