package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/worksession-backend-go/internal/pkg/database"
)

// TestDatabaseSetup wraps the database used by the repository tests
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and skips the test when it is unset
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(context.Background(), dsn, database.PoolOptions{MaxConns: 4})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	setup := &TestDatabaseSetup{DB: db}
	if err := setup.TruncateAllTables(context.Background()); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables removes all rows from the tables the repositories own
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"work_sessions",
		"daily_aims",
		"attendance_events",
		"attendance_records",
		"salary_adjustments",
		"salary_profiles",
		"working_days_configs",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
