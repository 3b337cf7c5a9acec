// Package storagetest opens an in-memory relational store for tests.
package storagetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/niksmo/spellshop/internal/adapter/storage"
	"github.com/stretchr/testify/require"
)

// New returns a migrated sqlite backed storage closed at test cleanup.
func New(t testing.TB) *storage.Storage {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)",
		uuid.NewString(),
	)
	s, err := storage.NewWithDialector(
		sqlite.Open(dsn), storage.WithMaxOpenConns(1),
	)
	require.NoError(t, err)
	require.NoError(t, s.AutoMigrate(context.Background()))
	t.Cleanup(s.Close)
	return s
}
