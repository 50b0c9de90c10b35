package database

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/AtRiskMedia/cutout-go/internal/infrastructure/observability/logging"
)

func TestDataSourceName(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    string
		wantErr bool
	}{
		{"sqlite", Options{Driver: DriverSQLite, Path: "db/x.db"}, "db/x.db?", false},
		{"default driver", Options{Path: "a.db"}, "a.db?", false},
		{"sqlite no path", Options{Driver: DriverSQLite}, "", true},
		{"libsql token", Options{Driver: DriverLibSQL, URL: "libsql://x.turso.io", AuthToken: "t"}, "libsql://x.turso.io?authToken=t", false},
		{"libsql no token", Options{Driver: DriverLibSQL, URL: "http://127.0.0.1:8080"}, "http://127.0.0.1:8080", false},
		{"libsql no url", Options{Driver: DriverLibSQL}, "", true},
		{"postgres", Options{Driver: "postgres"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.opts.DataSourceName()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.HasPrefix(got, tt.want) {
				t.Fatalf("dsn = %q, want prefix %q", got, tt.want)
			}
		})
	}
}

func TestOpenCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cutout.db")
	db, err := Open(Options{Driver: DriverSQLite, Path: path}, logging.NewDiscardLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if err := VerifyConnection(db.DB); err != nil {
		t.Fatalf("VerifyConnection: %v", err)
	}

	var name string
	if err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='profiles'`).Scan(&name); err != nil {
		t.Fatalf("profiles table missing: %v", err)
	}

	// running the schema twice is harmless
	if err := NewTableCreator().CreateSchema(db.DB); err != nil {
		t.Fatalf("CreateSchema rerun: %v", err)
	}
}
