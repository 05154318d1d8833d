package postgres

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		sku TEXT PRIMARY KEY,
		version BIGINT NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS batches (
		ref TEXT PRIMARY KEY,
		sku TEXT NOT NULL REFERENCES products (sku),
		purchased_qty INTEGER NOT NULL,
		eta TIMESTAMPTZ NULL
	)`,

	`CREATE TABLE IF NOT EXISTS allocations (
		id SERIAL PRIMARY KEY,
		batch_ref TEXT NOT NULL REFERENCES batches (ref) ON DELETE CASCADE,
		orderid TEXT NOT NULL,
		sku TEXT NOT NULL,
		qty INTEGER NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS allocations_orderid ON allocations (orderid)`,
}

func (s *Store) migrate() error {
	for _, query := range schema {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}
