package sqlite

import "database/sql"

// schema creates the single line item table on first use.
// It is never altered afterwards.
const schema = `
CREATE TABLE IF NOT EXISTS my_table (
    id INTEGER PRIMARY KEY,
    item TEXT NOT NULL,
    price REAL,
    date_added DATE
);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
