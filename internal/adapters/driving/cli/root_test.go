package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_PersistentFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	for _, name := range []string{"verbose", "config-dir", "data-dir", "metrics-file"} {
		assert.NotNil(t, flags.Lookup(name), name)
	}
	assert.Equal(t, "v", flags.Lookup("verbose").Shorthand)
}

func TestRootCmd_BootstrapBuildsServices(t *testing.T) {
	installServices(t, &Services{})
	var got Options
	closed := 0
	SetBootstrap(func(opts Options) (*Services, error) {
		got = opts
		return &Services{
			Settings: newMockSettingsService(),
			Close:    func() error { closed++; return nil },
		}, nil
	})
	t.Cleanup(func() {
		SetBootstrap(nil)
		configDir, dataDir = "", ""
	})

	_, err := runCommand(t, "--config-dir", "/tmp/cfg", "--data-dir", "/tmp/data", "settings", "show")

	require.NoError(t, err)
	assert.Equal(t, "/tmp/cfg", got.ConfigDir)
	assert.Equal(t, "/tmp/data", got.DataDir)
	assert.Equal(t, 1, closed)

	// Already released by the command.
	require.NoError(t, Close())
	assert.Equal(t, 1, closed)
}

func TestRootCmd_BootstrapError(t *testing.T) {
	installServices(t, &Services{})
	SetBootstrap(func(Options) (*Services, error) { return nil, errors.New("no database") })
	t.Cleanup(func() { SetBootstrap(nil) })

	_, err := runCommand(t, "settings")

	assert.EqualError(t, err, "no database")
}

func TestRootCmd_VersionSkipsBootstrap(t *testing.T) {
	called := false
	SetBootstrap(func(Options) (*Services, error) { called = true; return &Services{}, nil })
	t.Cleanup(func() { SetBootstrap(nil) })

	_, err := runCommand(t, "version")

	require.NoError(t, err)
	assert.False(t, called)
}
