package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/triply/internal/apperrors"
	"github.com/nkiryanov/triply/internal/testutil/fakeapi"
)

const (
	testEmail    = "a@b.com"
	testPassword = "secret1"
)

// Runs cli against fake backend, session is kept in temp dir between runs
type cli struct {
	t   *testing.T
	srv *fakeapi.Server
	dir string
	env map[string]string
}

func newCLI(t *testing.T) *cli {
	srv := fakeapi.New(t)
	srv.AddUser(testEmail, testPassword)

	return &cli{
		t:   t,
		srv: srv,
		dir: t.TempDir(),
		env: map[string]string{"TRIPLY_PASSWORD": testPassword},
	}
}

func (c *cli) run(args ...string) (string, error) {
	out := &bytes.Buffer{}
	flags := []string{
		"--api", c.srv.URL,
		"--data-dir", c.dir,
		"--log-level", "error",
	}

	err := run(c.t.Context(),
		func(key string) string { return c.env[key] },
		func() (string, error) { return c.dir, nil },
		append(flags, args...),
		out,
	)
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	out, err := c.run(args...)
	require.NoError(c.t, err, "command %v failed, output: %s", args, out)
	return out
}

func Test_run(t *testing.T) {
	t.Run("usage", func(t *testing.T) {
		c := newCLI(t)

		out := c.mustRun()

		assert.Contains(t, out, "Usage: triply")
		assert.Contains(t, out, "login --email")
	})

	t.Run("unknown command", func(t *testing.T) {
		c := newCLI(t)

		_, err := c.run("fly")

		require.ErrorIs(t, err, errUnknownCommand)
	})

	t.Run("invalid store", func(t *testing.T) {
		c := newCLI(t)

		_, err := c.run("--store", "redis", "status")

		require.Error(t, err)
	})

	t.Run("profile outside data dir", func(t *testing.T) {
		c := newCLI(t)

		_, err := c.run("--profile", "../escaped", "login", "--email", testEmail)

		require.Error(t, err)
		assert.Equal(t, 0, len(c.srv.Requests()), "nothing should be sent")
		assert.NoFileExists(t, filepath.Join(filepath.Dir(c.dir), "escaped.json"))
	})

	t.Run("protected command anonymous", func(t *testing.T) {
		c := newCLI(t)

		_, err := c.run("whoami")

		require.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
		assert.Equal(t, 0, len(c.srv.Requests()), "no tokens, no requests")
	})

	t.Run("login persists between runs", func(t *testing.T) {
		c := newCLI(t)

		out := c.mustRun("login", "--email", testEmail)
		assert.Contains(t, out, "Logged in as Test User <a@b.com>")

		out = c.mustRun("whoami")
		assert.Contains(t, out, testEmail)

		out = c.mustRun("status")
		assert.Contains(t, out, "authenticated")
		assert.Contains(t, out, "Access token expires in")
	})

	t.Run("login wrong password", func(t *testing.T) {
		c := newCLI(t)

		_, err := c.run("login", "--email", testEmail, "--password", "wrong-one")

		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		assert.Equal(t, "No active account found with the given credentials", apperrors.UserMessage(err, ""))
	})

	t.Run("trips with expired access token", func(t *testing.T) {
		c := newCLI(t)
		c.mustRun("login", "--email", testEmail)
		c.mustRun("trip", "create",
			"--title", "Paris in June",
			"--destination", "France",
			"--start", "2025-06-01",
			"--end", "2025-06-08",
			"--budget", "1500",
		)

		c.srv.ExpireAccess()
		out := c.mustRun("trips")

		assert.Contains(t, out, "Paris in June")
		assert.Contains(t, out, "$1500.00")
		assert.Equal(t, 1, c.srv.Count("POST", "/api/v1/auth/token/refresh/"), "access token should be refreshed once")
	})

	t.Run("session ended", func(t *testing.T) {
		c := newCLI(t)
		c.mustRun("login", "--email", testEmail)

		c.srv.ExpireAccess()
		c.srv.RevokeRefresh()
		out, err := c.run("trips")

		require.ErrorIs(t, err, apperrors.ErrSessionTerminated)
		assert.Contains(t, out, "Your session expired, please log in again.")
		assert.Contains(t, out, "Run 'triply login' to continue.")

		out = c.mustRun("status")
		assert.Contains(t, out, "anonymous", "tokens should be cleared")
		assert.Equal(t, 1, c.srv.Count("POST", "/api/v1/auth/token/refresh/"), "anonymous status is known without requests")
	})

	t.Run("logout twice", func(t *testing.T) {
		c := newCLI(t)
		c.mustRun("login", "--email", testEmail)

		c.mustRun("logout")
		out := c.mustRun("logout")

		assert.Contains(t, out, "Logged out")
		_, err := c.run("whoami")
		require.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
	})

	t.Run("profiles are independent", func(t *testing.T) {
		c := newCLI(t)
		c.mustRun("--profile", "work", "login", "--email", testEmail)

		out := c.mustRun("status")
		assert.Contains(t, out, "anonymous")

		out = c.mustRun("--profile", "work", "status")
		assert.Contains(t, out, "authenticated")
	})

	t.Run("checklist", func(t *testing.T) {
		c := newCLI(t)

		out := c.mustRun("checklist", "--trip", "7", "--category", "Electronics", "add", "Travel", "adapter")
		assert.Contains(t, out, `Added "Travel adapter" to Electronics`)
		assert.Contains(t, out, "Packed 0 of 23 (0%)")

		c.mustRun("checklist", "--trip", "7", "toggle", "1")
		out = c.mustRun("checklist", "--trip", "7")
		assert.Contains(t, out, "Packed 1 of 23 (4%)")
		assert.Contains(t, out, "[x] Passport")

		out = c.mustRun("checklist", "--trip", "8")
		assert.Contains(t, out, "Packed 0 of 22 (0%)", "other trip has own checklist")
	})

	t.Run("weather without key", func(t *testing.T) {
		c := newCLI(t)

		_, err := c.run("weather", "Paris")

		require.ErrorIs(t, err, apperrors.ErrWeatherKeyMissing)
	})
}
