// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/iliyamo/stock-opname/internal/model"
)

// StockQueueName is the durable queue carrying committed single-row
// upserts for downstream consumers (logging, reporting, exports).
const StockQueueName = "stock.updated"

// StockUpdatedEvent is published after a single-row upsert commits. It
// carries the persisted row so consumers never have to query the
// primary database.
type StockUpdatedEvent struct {
	Name       string `json:"name"`
	Provider   string `json:"provider"`
	Validity   string `json:"validity"`
	Quota      string `json:"quota"`
	Atas       uint32 `json:"atas"`
	Bawah      uint32 `json:"bawah"`
	Belakang   uint32 `json:"belakang"`
	Komputer   uint32 `json:"komputer"`
	TotalFisik uint32 `json:"total_fisik"`
	UpdatedAt  string `json:"updated_at"`
}

// EventFromRow maps a persisted stock row onto the queue payload.
func EventFromRow(row model.StockRow) StockUpdatedEvent {
	return StockUpdatedEvent{
		Name:       row.Name,
		Provider:   row.Provider,
		Validity:   row.Validity,
		Quota:      row.Quota,
		Atas:       row.Atas,
		Bawah:      row.Bawah,
		Belakang:   row.Belakang,
		Komputer:   row.Komputer,
		TotalFisik: row.TotalFisik,
		UpdatedAt:  row.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
