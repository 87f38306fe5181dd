package database

import (
	"database/sql/driver"
	"strings"
	"sync"

	"modernc.org/sqlite"
)

var (
	sqliteFuncsOnce sync.Once
	sqliteFuncsErr  error
)

// registerSQLiteFunctions replaces SQLite's ASCII-only lower() with a Unicode one so
// culture search folds "MĀORI" the same way Postgres does. Applies to connections
// opened afterwards.
func registerSQLiteFunctions() error {
	sqliteFuncsOnce.Do(func() {
		sqliteFuncsErr = sqlite.RegisterDeterministicScalarFunction("lower", 1, unicodeLower)
	})
	return sqliteFuncsErr
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}
