package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upb/blog-platform/app"
	"github.com/upb/blog-platform/internal/validation"
)

func sqliteEnv(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "blog.db"))
	t.Setenv("DB_MAX_OPEN_CONNS", "4")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("LOG_LEVEL", "error")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--format", "json")
	require.NoError(t, err)

	var info versionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, app.Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "blog-server "+app.Version)
}

func TestMigrateCommands(t *testing.T) {
	sqliteEnv(t)

	out, err := execute(t, "migrate", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "no migrations applied")

	out, err = execute(t, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied")

	out, err = execute(t, "migrate", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "version 2 (dirty: false)")

	_, err = execute(t, "migrate", "down")
	assert.ErrorContains(t, err, "--yes")

	out, err = execute(t, "migrate", "down", "--yes", "-n", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations reverted")

	out, err = execute(t, "migrate", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "no migrations applied")
}

func TestAdminGrantAndRevoke(t *testing.T) {
	sqliteEnv(t)

	_, err := execute(t, "admin", "grant")
	assert.Error(t, err, "--email is required")

	_, err = execute(t, "admin", "grant", "--email", "nobody@example.com")
	assert.Error(t, err)

	ctx := context.Background()
	cfg, logger, err := loadRuntime(ctx)
	require.NoError(t, err)
	deps, err := app.NewDependencies(ctx, cfg, logger)
	require.NoError(t, err)
	require.NoError(t, deps.Start())
	_, err = deps.Auth.Register(ctx, validation.Payload{
		"name":                  "Ada",
		"email":                 "ada@example.com",
		"password":              "password123",
		"password_confirmation": "password123",
	})
	require.NoError(t, err)
	require.NoError(t, deps.Close(ctx))

	out, err := execute(t, "admin", "grant", "--email", "ADA@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "ada@example.com now has the admin role")

	out, err = execute(t, "admin", "revoke", "--email", "ada@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "ada@example.com now has the user role")
}

func TestLoadRuntime_InvalidConfig(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, _, err := loadRuntime(context.Background())
	assert.ErrorContains(t, err, "failed to load configuration")
}

func TestEnvFileFlag(t *testing.T) {
	_, err := execute(t, "--env-file", filepath.Join(t.TempDir(), "missing.env"), "version")
	assert.Error(t, err)
}
