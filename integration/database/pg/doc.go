// Package pg provides the PostgreSQL key store.
//
// Connect opens a pgx pool with retry, Migrate applies the embedded goose
// migrations (the server_info table), and KeyStore implements relay.KeyStore:
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//		return err
//	}
//	hub, err := relay.New[[]byte](pg.NewKeyStore(pool))
//
// Unknown keys map to relay.ErrKeyNotFound; other query failures are returned unchanged.
// WithTx and TxFromContext carry a pgx.Tx through a context so lookups can join a transaction.
package pg
