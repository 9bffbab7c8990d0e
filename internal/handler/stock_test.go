package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/stock-opname/internal/broadcast"
	"github.com/iliyamo/stock-opname/internal/model"
	"github.com/iliyamo/stock-opname/internal/repository"
)

var fixedNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

// fakeStore implements StockStore in memory with the same contract as
// the real repository: totals recomputed, timestamps stamped, empty
// names skipped in batches.
type fakeStore struct {
	rows      map[string]model.StockRow
	failWith  error
	upserted  []model.StockRow
	bulkCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]model.StockRow)}
}

func (f *fakeStore) GetAll(ctx context.Context) ([]model.StockRow, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]model.StockRow, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) Upsert(ctx context.Context, row model.StockRow) (model.StockRow, error) {
	if f.failWith != nil {
		return model.StockRow{}, f.failWith
	}
	row.TotalFisik = row.PhysicalTotal()
	row.UpdatedAt = fixedNow
	f.rows[row.Name] = row
	f.upserted = append(f.upserted, row)
	return row, nil
}

func (f *fakeStore) UpsertMany(ctx context.Context, rows []model.StockRow) (int, error) {
	if f.failWith != nil {
		return 0, f.failWith
	}
	f.bulkCalls++
	count := 0
	for _, r := range rows {
		if strings.TrimSpace(r.Name) == "" {
			continue
		}
		r.TotalFisik = r.PhysicalTotal()
		r.UpdatedAt = fixedNow
		f.rows[r.Name] = r
		count++
	}
	return count, nil
}

// recordingPublisher captures everything the gateway broadcasts.
type recordingPublisher struct {
	events []broadcast.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, ev broadcast.Event) {
	p.events = append(p.events, ev)
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestList_EmptyStoreReturnsEmptyArray(t *testing.T) {
	h := &StockHandler{Store: newFakeStore(), Events: &recordingPublisher{}}
	c, rec := newTestContext(t, http.MethodGet, "/api/stocks", "")

	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestList_StoreUnavailable(t *testing.T) {
	store := newFakeStore()
	store.failWith = repository.ErrStoreUnavailable
	h := &StockHandler{Store: store, Events: &recordingPublisher{}}
	c, rec := newTestContext(t, http.MethodGet, "/api/stocks", "")

	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUpsertOne_MissingNameIsClientError(t *testing.T) {
	store := newFakeStore()
	pub := &recordingPublisher{}
	h := &StockHandler{Store: store, Events: pub}
	c, rec := newTestContext(t, http.MethodPost, "/api/stocks", `{"atas":3}`)

	require.NoError(t, h.UpsertOne(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.upserted, "nothing may be written on a client error")
	assert.Empty(t, pub.events, "nothing may be broadcast on a client error")
}

func TestUpsertOne_BroadcastsPersistedTotal(t *testing.T) {
	store := newFakeStore()
	pub := &recordingPublisher{}
	h := &StockHandler{Store: store, Events: pub}
	body := `{"name":"T|1GB|30hr","atas":1,"bawah":2,"belakang":3,"komputer":4,"total_fisik":42}`
	c, rec := newTestContext(t, http.MethodPost, "/api/stocks", body)

	require.NoError(t, h.UpsertOne(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OK   bool           `json:"ok"`
		Data model.StockRow `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, uint32(6), resp.Data.TotalFisik, "caller sees the server-resolved total")
	assert.Equal(t, fixedNow, resp.Data.UpdatedAt)

	require.Len(t, pub.events, 1, "exactly one stock_update per single upsert")
	assert.Equal(t, broadcast.EventStockUpdate, pub.events[0].Name)
	sent, ok := pub.events[0].Data.(model.StockRow)
	require.True(t, ok)
	assert.Equal(t, uint32(6), sent.TotalFisik, "broadcast carries the stored truth, not the raw submission")
	assert.Equal(t, "T|1GB|30hr", sent.Name)
}

func TestUpsertOne_StoreFailureIsServerError(t *testing.T) {
	store := newFakeStore()
	store.failWith = errors.New("connection reset")
	pub := &recordingPublisher{}
	h := &StockHandler{Store: store, Events: pub}
	c, rec := newTestContext(t, http.MethodPost, "/api/stocks", `{"name":"A","atas":1}`)

	require.NoError(t, h.UpsertOne(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, pub.events, "failed writes never broadcast")
}

func TestUpsertMany_SkipsItemsWithoutName(t *testing.T) {
	store := newFakeStore()
	pub := &recordingPublisher{}
	h := &StockHandler{Store: store, Events: pub}
	c, rec := newTestContext(t, http.MethodPost, "/api/stocks/bulk", `[{"name":"A","atas":1},{"atas":5}]`)

	require.NoError(t, h.UpsertMany(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"count":1}`, rec.Body.String())

	_, hasA := store.rows["A"]
	assert.True(t, hasA)
	assert.Len(t, store.rows, 1, "the malformed item must not be persisted")

	require.Len(t, pub.events, 1, "one count-only notice, never a per-row storm")
	assert.Equal(t, broadcast.EventBulkUpdate, pub.events[0].Name)
	assert.Equal(t, broadcast.BulkNotice{Count: 1}, pub.events[0].Data)
}

func TestUpsertMany_AcceptsNameKeyedObject(t *testing.T) {
	store := newFakeStore()
	h := &StockHandler{Store: store, Events: &recordingPublisher{}}
	c, rec := newTestContext(t, http.MethodPost, "/api/stocks/bulk", `{"B":{"atas":2},"A":{"atas":1}}`)

	require.NoError(t, h.UpsertMany(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"count":2}`, rec.Body.String())
	assert.Contains(t, store.rows, "A")
	assert.Contains(t, store.rows, "B")
}

func TestUpsertMany_RejectsNonBatchBodies(t *testing.T) {
	for _, body := range []string{`5`, `"x"`, `[]`, `{}`, `not json`} {
		store := newFakeStore()
		h := &StockHandler{Store: store, Events: &recordingPublisher{}}
		c, rec := newTestContext(t, http.MethodPost, "/api/stocks/bulk", body)

		require.NoError(t, h.UpsertMany(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		assert.Zero(t, store.bulkCalls, "body %q must not reach the store", body)
	}
}

func TestUpsertMany_StoreFailureBroadcastsNothing(t *testing.T) {
	store := newFakeStore()
	store.failWith = errors.New("tx aborted")
	pub := &recordingPublisher{}
	h := &StockHandler{Store: store, Events: pub}
	c, rec := newTestContext(t, http.MethodPost, "/api/stocks/bulk", `[{"name":"A","atas":1}]`)

	require.NoError(t, h.UpsertMany(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, pub.events)
}

// Two sessions subscribed to the hub: when one clerk submits an update,
// the other observes a stock_update with the stored values and nothing
// in the pipeline sends a second write on its behalf.
func TestUpsertOne_SecondClientObservesUpdate(t *testing.T) {
	hub := broadcast.NewHub()
	caster := broadcast.NewBroadcaster(hub, nil, "")
	store := newFakeStore()
	h := &StockHandler{Store: store, Events: caster}

	clientB, cancelB := hub.Subscribe()
	defer cancelB()

	body := `{"name":"T|1GB|30hr","atas":1,"bawah":2,"belakang":3,"komputer":4}`
	c, rec := newTestContext(t, http.MethodPost, "/api/stocks", body)
	require.NoError(t, h.UpsertOne(c))
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case ev := <-clientB:
		assert.Equal(t, broadcast.EventStockUpdate, ev.Name)
		row, ok := ev.Data.(model.StockRow)
		require.True(t, ok)
		assert.Equal(t, uint32(6), row.TotalFisik)
	case <-time.After(time.Second):
		t.Fatal("client B never observed the update")
	}

	assert.Len(t, store.upserted, 1, "observing a broadcast must not trigger another write")
}
