package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// testStore opens a fresh on-disk database (migrations applied) for a test.
func testStore(t *testing.T) (*Store, func()) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	store, err := NewStore(StoreConfig{Path: path, WALMode: true})
	require.NoError(t, err)

	return store, func() { _ = store.Close() }
}

// StoreSuite is a test suite for Store operations.
type StoreSuite struct {
	suite.Suite
	store   *Store
	cleanup func()
}

func (s *StoreSuite) SetupTest() {
	s.store, s.cleanup = testStore(s.T())
}

func (s *StoreSuite) TearDownTest() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

// TestGetStmt tests prepared statement caching.
func (s *StoreSuite) TestGetStmt() {
	tests := []struct {
		name    string
		query   string
		wantErr bool
	}{
		{
			name:    "valid simple query",
			query:   "SELECT 1",
			wantErr: false,
		},
		{
			name:    "valid query with parameter",
			query:   "SELECT * FROM sessions WHERE id = ?",
			wantErr: false,
		},
		{
			name:    "invalid query syntax",
			query:   "SELECT * FROM nonexistent_table WHERE",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			stmt, err := s.store.GetStmt(tt.query)
			if tt.wantErr {
				s.Error(err)
				s.Nil(stmt)
			} else {
				s.NoError(err)
				s.NotNil(stmt)

				// Second call should return cached statement
				stmt2, err := s.store.GetStmt(tt.query)
				s.NoError(err)
				s.Same(stmt, stmt2)
			}
		})
	}
}

// TestMigrationsIdempotent verifies reopening the same database applies no
// further migrations and leaves data intact.
func (s *StoreSuite) TestMigrationsIdempotent() {
	ctx := context.Background()

	var version int
	s.Require().NoError(s.store.QueryRowContext(ctx,
		`SELECT MAX(version) FROM schema_version`).Scan(&version))
	s.Equal(len(migrations), version)

	s.NoError(runMigrations(s.store.DB()))

	var count int
	s.Require().NoError(s.store.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM schema_version`).Scan(&count))
	s.Equal(len(migrations), count)
}

// TestPing verifies the connection stays healthy after setup.
func (s *StoreSuite) TestPing() {
	s.NoError(s.store.Ping())
}
