// Package records holds the RecordStore implementations: an in-memory map
// and a database/sql table shared by the PostgreSQL and SQLite backends.
package records

import "accreditations/internal/ports"

var (
	_ ports.RecordStore = (*Memory)(nil)
	_ ports.RecordStore = (*SQLStore)(nil)
)
