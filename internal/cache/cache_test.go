// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stores builds one of each Store backed by a controllable clock.
func stores(t *testing.T, now *time.Time) map[string]Store {
	t.Helper()

	mem := NewMemory()
	mem.Now = func() time.Time { return *now }

	sq, err := NewSQLite(filepath.Join(t.TempDir(), "cache.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })
	sq.Now = func() time.Time { return *now }

	return map[string]Store{"memory": mem, "sqlite": sq}
}

func TestStoreRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for name, s := range stores(t, &now) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok := s.Get(ctx, "missing")
			assert.False(t, ok)

			s.Set(ctx, "q", `{"response":"sleep hygiene helps"}`, time.Hour)
			got, ok := s.Get(ctx, "q")
			require.True(t, ok)
			assert.Equal(t, `{"response":"sleep hygiene helps"}`, got)
		})
	}
}

func TestStoreTTLExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for name, s := range stores(t, &now) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s.Set(ctx, "q", "v", 24*time.Hour)

			now = now.Add(23 * time.Hour)
			_, ok := s.Get(ctx, "q")
			assert.True(t, ok, "entry should survive inside the TTL")

			now = now.Add(2 * time.Hour)
			_, ok = s.Get(ctx, "q")
			assert.False(t, ok, "entry should expire after the TTL")
		})
	}
}

func TestStoreOverwrite(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for name, s := range stores(t, &now) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s.Set(ctx, "q", "old", time.Hour)
			s.Set(ctx, "q", "new", time.Hour)

			got, ok := s.Get(ctx, "q")
			require.True(t, ok)
			assert.Equal(t, "new", got, "last write wins")
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	first, err := NewSQLite(path, zap.NewNop())
	require.NoError(t, err)
	first.Set(ctx, "q", "v", time.Hour)
	require.NoError(t, first.Close())

	second, err := NewSQLite(path, zap.NewNop())
	require.NoError(t, err)
	defer second.Close()

	got, ok := second.Get(ctx, "q")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestSQLiteClosedBackendDegradesToMiss(t *testing.T) {
	sq, err := NewSQLite(filepath.Join(t.TempDir(), "cache.db"), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, sq.Close())

	ctx := context.Background()
	// Neither call may panic or surface an error.
	sq.Set(ctx, "q", "v", time.Hour)
	_, ok := sq.Get(ctx, "q")
	assert.False(t, ok)
}
