package localstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"file": func(t *testing.T) Store {
			return NewFile(filepath.Join(t.TempDir(), "nested", "store.json"))
		},
		"memory": func(t *testing.T) Store {
			return NewMemory()
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			t.Run("get absent key", func(t *testing.T) {
				s := newStore(t)

				value, ok, err := s.Get(t.Context(), "access_token")

				require.NoError(t, err)
				require.False(t, ok)
				require.Empty(t, value)
			})

			t.Run("set then get", func(t *testing.T) {
				s := newStore(t)

				require.NoError(t, s.Set(t.Context(), "access_token", "a1"))
				require.NoError(t, s.Set(t.Context(), "access_token", "a2"))

				value, ok, err := s.Get(t.Context(), "access_token")
				require.NoError(t, err)
				require.True(t, ok)
				require.Equal(t, "a2", value, "last write wins")
			})

			t.Run("delete", func(t *testing.T) {
				s := newStore(t)
				require.NoError(t, s.Set(t.Context(), "a", "1"))
				require.NoError(t, s.Set(t.Context(), "b", "2"))

				err := s.Delete(t.Context(), "a", "not-existed")

				require.NoError(t, err)
				_, okA, _ := s.Get(t.Context(), "a")
				_, okB, _ := s.Get(t.Context(), "b")
				assert.False(t, okA)
				assert.True(t, okB)
			})
		})
	}
}

func TestFile(t *testing.T) {
	t.Run("survives reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store.json")
		require.NoError(t, NewFile(path).Set(t.Context(), "refresh_token", "r1"))

		value, ok, err := NewFile(path).Get(t.Context(), "refresh_token")

		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "r1", value)
	})

	t.Run("file is private", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store.json")
		require.NoError(t, NewFile(path).Set(t.Context(), "k", "v"))

		info, err := os.Stat(path)

		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("corrupted file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		_, _, err := NewFile(path).Get(t.Context(), "k")

		require.Error(t, err)
	})
}
