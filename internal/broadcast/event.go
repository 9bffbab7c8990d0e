// Package broadcast implements the push channel between the gateway and
// connected browsers: an in-process fan-out hub delivered over SSE, with
// an optional Redis pub/sub bridge so several server processes behave as
// one logical channel. The channel carries forward notifications only —
// there is no backlog or replay, late joiners catch up with a full list.
package broadcast

import "encoding/json"

// Event names carried on the push channel.
const (
	// EventStockUpdate carries one full stock row after a single upsert
	// committed. Every connected session receives it, including other
	// sessions of the submitting clerk.
	EventStockUpdate = "stock_update"

	// EventBulkUpdate is a count-only notice after a bulk upsert
	// committed. Clients treat it as a hint to refetch the snapshot;
	// bulk writes never fan out per row.
	EventBulkUpdate = "stocks_bulk_update"
)

// Event is one push notification. Data holds the JSON payload for the
// event kind: a model.StockRow for EventStockUpdate, a BulkNotice for
// EventBulkUpdate.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// BulkNotice is the payload of EventBulkUpdate.
type BulkNotice struct {
	Count int `json:"count"`
}

// Encode renders the event's payload as JSON for the wire (SSE data
// line or Redis message body).
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}
