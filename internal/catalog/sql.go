// internal/catalog/sql.go
package catalog

import "fmt"

// Columns is the item table layout shared by the SQL sources.
var Columns = []string{"key", "title", "section", "status", "position"}

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS %s (
	key      TEXT PRIMARY KEY,
	title    TEXT NOT NULL,
	section  TEXT NOT NULL,
	status   TEXT NOT NULL,
	position INTEGER NOT NULL
)`
	sectionsSQL = `SELECT section FROM %s GROUP BY section ORDER BY MIN(position)`
	loadSQL     = `SELECT key, title, section, status FROM %s WHERE section = %s ORDER BY position`
	clearSQL    = `DELETE FROM %s`
)

// statement renders one of the templates for a quoted table name and a
// driver-specific placeholder.
func statement(tmpl, table string, placeholder ...any) string {
	return fmt.Sprintf(tmpl, append([]any{table}, placeholder...)...)
}
