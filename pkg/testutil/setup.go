package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/flickster/flickster/backend/pkg/database"
	_ "github.com/mattn/go-sqlite3"
)

// SetupDB creates a temporary database with the full schema applied. The
// returned cleanup closes the database and removes the temp directory.
func SetupDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "flickster-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	cleanupTmpDir := func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			t.Logf("Failed to remove temp directory %q: %v", tmpDir, err)
		}
	}

	db, err := database.Initialize(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		cleanupTmpDir()
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Initialize schema using the same logic as runtime startup.
	if err := database.InitSchema(db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			t.Logf("Failed to close test database after schema init error: %v", closeErr)
		}
		cleanupTmpDir()
		t.Fatalf("Failed to initialize test schema: %v", err)
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			t.Logf("Failed to close test database: %v", err)
		}
		cleanupTmpDir()
	}

	return db, cleanup
}
