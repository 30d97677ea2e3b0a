package database

import (
	"strconv"
	"strings"

	"disasterresponse/internal/table"
)

// Dialect captures the SQL differences between the supported stores.
type Dialect struct {
	Name        string
	IntegerType string
	TextType    string
	// ReadOrder is appended to full-table reads so rows come back in insert order.
	ReadOrder string
	numbered  bool
}

var (
	SQLite = Dialect{
		Name:        DriverSQLite,
		IntegerType: "INTEGER",
		TextType:    "TEXT",
		ReadOrder:   " ORDER BY rowid",
	}
	Postgres = Dialect{
		Name:        DriverPostgres,
		IntegerType: "BIGINT",
		TextType:    "TEXT",
		// ReplaceTable fills a fresh table in one pass and nothing updates it
		// afterwards, so ctid order is insert order.
		ReadOrder: " ORDER BY ctid",
		numbered:  true,
	}
)

// DialectFor returns the dialect of a driver name. Unknown drivers get SQLite.
func DialectFor(driver string) Dialect {
	if driver == DriverPostgres {
		return Postgres
	}
	return SQLite
}

// Placeholder returns the bind marker for the n-th argument, starting at 1.
func (d Dialect) Placeholder(n int) string {
	if d.numbered {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Placeholders returns count comma-separated bind markers starting at from.
func (d Dialect) Placeholders(from, count int) string {
	marks := make([]string, count)
	for i := range marks {
		marks[i] = d.Placeholder(from + i)
	}
	return strings.Join(marks, ", ")
}

// ColumnType maps a table column kind to a SQL type.
func (d Dialect) ColumnType(k table.Kind) string {
	if k == table.KindInteger {
		return d.IntegerType
	}
	return d.TextType
}

// QuoteIdent double-quotes an identifier, doubling embedded quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// kindOf maps a driver-reported column type back to a table kind.
func kindOf(dbType string) table.Kind {
	if strings.Contains(strings.ToUpper(dbType), "INT") {
		return table.KindInteger
	}
	return table.KindText
}
