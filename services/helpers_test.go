package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
)

const testTimeout = 5 * time.Second

// setupTestDB returns a goqu database backed by sqlmock. goqu interpolates
// values into the SQL, so expectations match on statement text only.
func setupTestDB(t *testing.T) (*goqu.Database, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return goqu.New("postgres", db), mock
}
