package pg

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/autowhitelist/core/relay"
)

const lookupKeyQuery = `SELECT name FROM server_info WHERE key = $1`

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// KeyStore resolves client keys against the server_info table.
type KeyStore struct {
	db Querier
}

// NewKeyStore creates a key store on top of db.
func NewKeyStore(db Querier) *KeyStore {
	return &KeyStore{db: db}
}

// LookupKey implements relay.KeyStore. A transaction stored in ctx with WithTx takes precedence over the pool.
func (s *KeyStore) LookupKey(ctx context.Context, key string) (string, error) {
	var q Querier = s.db
	if tx, ok := TxFromContext(ctx); ok {
		q = tx
	}

	var name string
	if err := q.QueryRow(ctx, lookupKeyQuery, key).Scan(&name); err != nil {
		if IsNotFoundError(err) {
			return "", relay.ErrKeyNotFound
		}
		return "", err
	}
	return name, nil
}
