package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/stock-opname/internal/model"
)

func TestEventFromRow(t *testing.T) {
	row := model.StockRow{
		Name: "T|1GB|30hr", Provider: "Telkomsel", Validity: "30hr", Quota: "1GB",
		Atas: 1, Bawah: 2, Belakang: 3, Komputer: 4, TotalFisik: 6,
		UpdatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	ev := EventFromRow(row)
	assert.Equal(t, "T|1GB|30hr", ev.Name)
	assert.Equal(t, uint32(6), ev.TotalFisik)
	assert.Equal(t, "2025-06-01T10:00:00Z", ev.UpdatedAt)
}
