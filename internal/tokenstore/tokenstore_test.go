package tokenstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/triply/internal/localstore"
	"github.com/nkiryanov/triply/internal/models"
)

func TestStore(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemory() },
		"local file": func(t *testing.T) Store {
			return NewLocal(localstore.NewFile(filepath.Join(t.TempDir(), "session.json")))
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			t.Run("empty by default", func(t *testing.T) {
				s := newStore(t)

				pair, err := s.Get(t.Context())

				require.NoError(t, err)
				require.True(t, pair.IsZero())
			})

			t.Run("set both", func(t *testing.T) {
				s := newStore(t)

				err := s.Set(t.Context(), models.TokenPair{Access: "a", Refresh: "r"})

				require.NoError(t, err)
				pair, err := s.Get(t.Context())
				require.NoError(t, err)
				require.Equal(t, models.TokenPair{Access: "a", Refresh: "r"}, pair)
			})

			t.Run("set access keeps refresh", func(t *testing.T) {
				s := newStore(t)
				require.NoError(t, s.Set(t.Context(), models.TokenPair{Access: "a", Refresh: "r"}))

				err := s.SetAccess(t.Context(), "a2")

				require.NoError(t, err)
				pair, err := s.Get(t.Context())
				require.NoError(t, err)
				require.Equal(t, "a2", pair.Access)
				require.Equal(t, "r", pair.Refresh, "refresh token must stay byte identical")
			})

			t.Run("clear is idempotent", func(t *testing.T) {
				s := newStore(t)
				require.NoError(t, s.Set(t.Context(), models.TokenPair{Access: "a", Refresh: "r"}))

				require.NoError(t, s.Clear(t.Context()))
				require.NoError(t, s.Clear(t.Context()))

				pair, err := s.Get(t.Context())
				require.NoError(t, err)
				require.True(t, pair.IsZero())
			})
		})
	}
}

func TestLocal_WellKnownKeys(t *testing.T) {
	ls := localstore.NewMemory()
	s := NewLocal(ls)

	require.NoError(t, s.Set(t.Context(), models.TokenPair{Access: "a", Refresh: "r"}))

	access, ok, err := ls.Get(t.Context(), "access_token")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a", access)

	refresh, ok, err := ls.Get(t.Context(), "refresh_token")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "r", refresh)
}
