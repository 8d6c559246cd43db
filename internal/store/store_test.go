// Shared test helpers for the store package.
package store

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qanoon-app/lawstore/pkg/types"
)

// newTestStore opens a store on a throwaway data directory and closes it
// when the test ends.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(zap.NewNop())
	require.NoError(t, s.Open(types.Config{DataDir: t.TempDir()}))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// mustCreateCase inserts a case and returns it with its generated ID.
func mustCreateCase(t *testing.T, s *Store, name string) *types.Case {
	t.Helper()
	c := &types.Case{Name: name}
	_, err := s.Cases().Create(c)
	require.NoError(t, err)
	return c
}
