// Package db defines the database handle passed into every store. The
// connection lifecycle is owned by process startup and shutdown, never by
// individual call sites.
package db

import (
	"database/sql"

	"github.com/rs/zerolog"
)

type DB interface {
	InitSchema() error

	Get() *sql.DB
	Close() error

	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
}

var dbLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	dbLogger = l
}
