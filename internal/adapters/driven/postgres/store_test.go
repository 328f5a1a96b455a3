package postgres

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// newMockDB returns a DB over sqlmock and fails the test on unmet expectations
func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return Wrap(db), mock
}
