package model

import "time"

// StockRow is one product's stock record during a counting session.
// Rows are keyed by name, which clients derive from the descriptive
// fields joined with a fixed separator (e.g. "Telkomsel|1GB|30hr"),
// so the same product always maps to the same row no matter which
// clerk touches it first.
//
// Fields:
//  Name       – primary key, unique product identifier.
//  Provider   – provider label, informational only.
//  Validity   – validity label, informational only.
//  Quota      – quota label, informational only.
//  Atas       – count at the top display location.
//  Bawah      – count at the bottom display location.
//  Belakang   – count at the back display location.
//  Komputer   – reference count from the computer system.
//  TotalFisik – derived physical total (atas + bawah + belakang),
//               stored redundantly for display and queries.
//  UpdatedAt  – server-assigned timestamp of the last write.
type StockRow struct {
	Name       string    `json:"name"`        // stocks.name
	Provider   string    `json:"provider"`    // stocks.provider
	Validity   string    `json:"validity"`    // stocks.validity
	Quota      string    `json:"quota"`       // stocks.quota
	Atas       uint32    `json:"atas"`        // stocks.atas
	Bawah      uint32    `json:"bawah"`       // stocks.bawah
	Belakang   uint32    `json:"belakang"`    // stocks.belakang
	Komputer   uint32    `json:"komputer"`    // stocks.komputer
	TotalFisik uint32    `json:"total_fisik"` // stocks.total_fisik
	UpdatedAt  time.Time `json:"updated_at"`  // stocks.updated_at
}

// PhysicalTotal returns the sum of the three location counts. The stored
// TotalFisik must always equal this after a successful write; the store
// recomputes it on every upsert and never trusts a client-submitted total.
func (r StockRow) PhysicalTotal() uint32 {
	return r.Atas + r.Bawah + r.Belakang
}
