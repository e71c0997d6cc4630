// Package models contains the per-table database operations.
package models

import "database/sql"

// errIfNoRows maps a delete that matched nothing to the given sentinel
// error. Drivers that cannot report affected rows are treated as
// successful deletes.
func errIfNoRows(res sql.Result, notFound error) error {
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return notFound
	}

	return nil
}
