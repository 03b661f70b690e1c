package cmd

import (
	"bytes"
	"testing"

	"github.com/ariebrainware/medibook/config"
	"github.com/ariebrainware/medibook/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("APPENV", "test")
	t.Setenv("LOG_LEVEL", "error")
	config.ResetConfigForTest()
	t.Cleanup(func() {
		config.ResetConfigForTest()
		util.SetLogger(nil)
	})

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestMigrateCommand(t *testing.T) {
	out, err := runCLI(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "on sqlite")
}

func TestSeedAdminCommand(t *testing.T) {
	out, err := runCLI(t, "seed-admin", "--email", "Root@Example.com", "--password", "s3cret-pass")
	require.NoError(t, err)
	assert.Contains(t, out, "admin root@example.com ready")
}

func TestSeedAdminCommand_Validation(t *testing.T) {
	_, err := runCLI(t, "seed-admin", "--email", "not-an-email", "--password", "s3cret-pass")
	assert.Error(t, err)

	_, err = runCLI(t, "seed-admin", "--email", "root@example.com", "--password", "short")
	assert.Error(t, err)

	_, err = runCLI(t, "seed-admin", "--email", "root@example.com")
	assert.Error(t, err)
}

func TestJWTSecret(t *testing.T) {
	logger, err := setupLogger(&config.Config{LogLevel: "error", LogFormat: "json", AppName: "medibook"})
	require.NoError(t, err)
	t.Cleanup(func() { util.SetLogger(nil) })

	secret, err := jwtSecret(&config.Config{JWTSecret: "configured"}, logger)
	require.NoError(t, err)
	assert.Equal(t, []byte("configured"), secret)

	a, err := jwtSecret(&config.Config{}, logger)
	require.NoError(t, err)
	b, err := jwtSecret(&config.Config{}, logger)
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
