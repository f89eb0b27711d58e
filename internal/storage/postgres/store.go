package postgres

import (
	"database/sql"

	"github.com/albarami/idis/internal/storage"
)

// Store implements every internal/storage interface backed by PostgreSQL.
// Each method resolves its executor via DBTXFromContext so a caller that
// opened a transaction with RunInTx gets the mutation and its audit event
// committed as one unit; a caller with no open transaction gets a plain
// pooled connection.
type Store struct {
	db *sql.DB
}

var (
	_ storage.DealStore     = (*Store)(nil)
	_ storage.DocumentStore = (*Store)(nil)
	_ storage.ClaimStore    = (*Store)(nil)
	_ storage.EvidenceStore = (*Store)(nil)
	_ storage.SanadStore    = (*Store)(nil)
	_ storage.DefectStore   = (*Store)(nil)
	_ storage.CalcStore     = (*Store)(nil)
	_ storage.RunStore      = (*Store)(nil)
)

// New creates a Store using db for connections not already inside a
// WithTx-attached transaction.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}
