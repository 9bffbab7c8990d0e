package repository // repository for stock row persistence

import (
	"context"      // context for managing deadlines
	"database/sql" // sql provides DB interfaces
	"strings"      // strings trims row names before writing

	"github.com/iliyamo/stock-opname/internal/model"
)

// selectColumns is the column list shared by every read in this file.
// Keeping it in one place guarantees scans stay aligned with the schema.
const selectColumns = `name, provider, validity, quota, atas, bawah, belakang, komputer, total_fisik, updated_at`

// upsertQuery inserts a row or overwrites all non-key fields when the
// name already exists. total_fisik is always the server-side recomputed
// sum and updated_at is always stamped by the database, so concurrent
// writers serialize on the row lock and last write wins cleanly.
const upsertQuery = `INSERT INTO stocks (name, provider, validity, quota, atas, bawah, belakang, komputer, total_fisik, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, UTC_TIMESTAMP())
ON DUPLICATE KEY UPDATE
  provider = VALUES(provider),
  validity = VALUES(validity),
  quota = VALUES(quota),
  atas = VALUES(atas),
  bawah = VALUES(bawah),
  belakang = VALUES(belakang),
  komputer = VALUES(komputer),
  total_fisik = VALUES(total_fisik),
  updated_at = UTC_TIMESTAMP()`

// schema bootstraps the single stocks table on startup. This is not a
// migration system; the table shape is fixed for the life of the tool.
const schema = `CREATE TABLE IF NOT EXISTS stocks (
  name        VARCHAR(191) NOT NULL,
  provider    VARCHAR(191) NOT NULL DEFAULT '',
  validity    VARCHAR(191) NOT NULL DEFAULT '',
  quota       VARCHAR(191) NOT NULL DEFAULT '',
  atas        INT UNSIGNED NOT NULL DEFAULT 0,
  bawah       INT UNSIGNED NOT NULL DEFAULT 0,
  belakang    INT UNSIGNED NOT NULL DEFAULT 0,
  komputer    INT UNSIGNED NOT NULL DEFAULT 0,
  total_fisik INT UNSIGNED NOT NULL DEFAULT 0,
  updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (name)
) CHARACTER SET utf8mb4`

// StockRepo encapsulates database operations for the stocks table.
// A nil db handle puts the repo into a degraded mode where every
// operation fails fast with ErrStoreUnavailable.
type StockRepo struct {
	db *sql.DB
}

// NewStockRepo constructs a StockRepo given a DB handle. The handle may
// be nil when the database was unreachable at boot.
func NewStockRepo(db *sql.DB) *StockRepo {
	return &StockRepo{db: db}
}

// EnsureSchema creates the stocks table when it does not exist yet.
func (r *StockRepo) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return ErrStoreUnavailable
	}
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// GetAll returns every stock row ordered by name so snapshots are
// deterministic. An empty table yields an empty (non-nil) slice.
func (r *StockRepo) GetAll(ctx context.Context) ([]model.StockRow, error) {
	if r.db == nil {
		return nil, ErrStoreUnavailable
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM stocks ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.StockRow, 0)
	for rows.Next() {
		var sr model.StockRow
		if err := scanRow(rows, &sr); err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

// GetByName returns a single row or ErrRowNotFound.
func (r *StockRepo) GetByName(ctx context.Context, name string) (model.StockRow, error) {
	var sr model.StockRow
	if r.db == nil {
		return sr, ErrStoreUnavailable
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM stocks WHERE name = ?`, name)
	if err := scanRow(row, &sr); err != nil {
		if err == sql.ErrNoRows {
			return sr, ErrRowNotFound
		}
		return sr, err
	}
	return sr, nil
}

// Upsert inserts the row if its name is absent, otherwise overwrites all
// non-key fields. The stored total_fisik is recomputed from the three
// location counts and updated_at is stamped by the database. The row is
// read back after the write so callers (and the broadcast path) always
// see the persisted truth rather than the client-submitted values.
func (r *StockRepo) Upsert(ctx context.Context, sr model.StockRow) (model.StockRow, error) {
	if r.db == nil {
		return model.StockRow{}, ErrStoreUnavailable
	}
	sr.Name = strings.TrimSpace(sr.Name)
	if _, err := r.db.ExecContext(ctx, upsertQuery,
		sr.Name, sr.Provider, sr.Validity, sr.Quota,
		sr.Atas, sr.Bawah, sr.Belakang, sr.Komputer, sr.PhysicalTotal(),
	); err != nil {
		return model.StockRow{}, err
	}
	return r.GetByName(ctx, sr.Name)
}

// UpsertMany applies every row's upsert inside a single transaction.
// Rows with an empty name are skipped rather than failing the batch.
// If any write fails the whole transaction is rolled back and zero rows
// are persisted. The returned count is the number of rows written.
func (r *StockRepo) UpsertMany(ctx context.Context, rows []model.StockRow) (int, error) {
	if r.db == nil {
		return 0, ErrStoreUnavailable
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	count := 0
	for _, sr := range rows {
		sr.Name = strings.TrimSpace(sr.Name)
		if sr.Name == "" {
			continue // malformed item, skip without failing the batch
		}
		if _, err := tx.ExecContext(ctx, upsertQuery,
			sr.Name, sr.Provider, sr.Validity, sr.Quota,
			sr.Atas, sr.Bawah, sr.Belakang, sr.Komputer, sr.PhysicalTotal(),
		); err != nil {
			return 0, err
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(s rowScanner, sr *model.StockRow) error {
	return s.Scan(
		&sr.Name, &sr.Provider, &sr.Validity, &sr.Quota,
		&sr.Atas, &sr.Bawah, &sr.Belakang, &sr.Komputer,
		&sr.TotalFisik, &sr.UpdatedAt,
	)
}
