package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "tokens.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put(ctx, "jason_github_token", []byte(`{"access_token":"a"}`)))

			got, err := s.Get(ctx, "jason_github_token")
			require.NoError(t, err)
			assert.Equal(t, `{"access_token":"a"}`, string(got))
		})
	}
}

func TestGetMissingKey(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "nobody_github_token")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestPutReplaces(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put(ctx, "k", []byte("old")))
			require.NoError(t, s.Put(ctx, "k", []byte("new")))

			got, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "new", string(got))
		})
	}
}

func TestDeleteAndList(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put(ctx, "jason_github_token", []byte("a")))
			require.NoError(t, s.Put(ctx, "jason_google_token", []byte("b")))

			keys, err := s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"jason_github_token", "jason_google_token"}, keys)

			require.NoError(t, s.Delete(ctx, "jason_github_token"))
			// A second delete of the same key is not an error.
			require.NoError(t, s.Delete(ctx, "jason_github_token"))

			keys, err = s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"jason_google_token"}, keys)
		})
	}
}

func TestConcurrentWritersLastWriteWins(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					assert.NoError(t, s.Put(ctx, "k", []byte("v")))
				}()
			}
			wg.Wait()

			got, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v", string(got))
		})
	}
}
