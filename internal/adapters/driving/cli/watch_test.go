package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contentsync/internal/core/domain"
)

func TestWatchCmd_Flags(t *testing.T) {
	assert.Equal(t, "watch [dir]", watchCmd.Use)

	settle := watchCmd.Flags().Lookup("settle")
	require.NotNil(t, settle)
	assert.Equal(t, (500 * time.Millisecond).String(), settle.DefValue)
	assert.NotNil(t, watchCmd.Flags().Lookup("existing"))
	assert.NotNil(t, watchCmd.Flags().Lookup("remove"))
}

func TestWatchCmd_MissingDirectory(t *testing.T) {
	installServices(t, &Services{Importer: newMockImporter()})

	_, err := runCommand(t, "watch", filepath.Join(t.TempDir(), "missing"))

	assert.Error(t, err)
}

func TestImportDropped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.yml")
	require.NoError(t, os.WriteFile(path, []byte("uuid: a\n"), 0o644))
	importer := newMockImporter()
	installServices(t, &Services{Importer: importer})
	watchRemove = true

	buf := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(buf)

	require.NoError(t, importDropped(commandContext(cmd), cmd, path))

	assert.Equal(t, []string{path}, importer.imported)
	assert.Contains(t, buf.String(), "Imported a.yml: 1, failed 0")
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestImportDropped_KeepsFileOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bundle.zip")
	require.NoError(t, os.WriteFile(path, []byte("zip"), 0o644))
	importer := newMockImporter()
	failed := &domain.BatchResult{}
	failed.Fail("node-article-u1.yml", domain.ErrValidation)
	importer.archive["bundle.zip"] = failed
	installServices(t, &Services{Importer: importer})
	watchRemove = true

	cmd := &cobra.Command{}
	cmd.SetOut(new(bytes.Buffer))

	err := importDropped(commandContext(cmd), cmd, path)

	assert.Error(t, err)
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}
