package base

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contentsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/contentsync/internal/core/domain"
)

func imageFile() *domain.Entity {
	return entity("file", "file", "f-1", map[string]any{
		"filename": "logo.png",
		"uri":      "public://images/logo.png",
		"status":   1,
		"created":  10,
		"changed":  20,
		"filemime": "image/png",
	})
}

func TestFile_Export(t *testing.T) {
	files := memory.NewFileStore("https://source.example.com/files")
	session := newMockExportSession()

	out, err := NewFile(files, nil, nil).ExportBaseValues(context.Background(), session, imageFile())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"name":     "logo.png",
		"uri":      "public://images/logo.png",
		"url":      "https://source.example.com/files/images/logo.png",
		"status":   1,
		"created":  10,
		"changed":  20,
		"mimetype": "image/png",
	}, out)
	assert.Equal(t, []string{"public://images/logo.png"}, session.assets)
}

func TestFile_ExportCrop(t *testing.T) {
	ctx := context.Background()
	focal := memory.NewFocalPoint()
	file := imageFile()
	file.ID = "3"
	require.NoError(t, focal.SaveCrop(ctx, file, domain.Crop{X: 50, Y: 40, Width: 10, Height: 20}))

	out, err := NewFile(memory.NewFileStore(""), nil, focal).ExportBaseValues(ctx, newMockExportSession(), file)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"width": 10, "height": 20, "x": 50, "y": 40}, out["crop"])

	file.Set("filemime", "application/pdf")
	out, err = NewFile(memory.NewFileStore(""), nil, focal).ExportBaseValues(ctx, newMockExportSession(), file)
	require.NoError(t, err)
	assert.NotContains(t, out, "crop")
}

func TestFile_MapDownloadsMissingAsset(t *testing.T) {
	files := memory.NewFileStore("")
	fetcher := &mockFetcher{bodies: map[string][]byte{"https://src/logo.png": []byte("png")}}
	codec := NewFile(files, fetcher, nil)

	values := map[string]any{
		"name":     "logo.png",
		"uri":      "public://images/logo.png",
		"url":      "https://src/logo.png",
		"mimetype": "image/png",
		"created":  10,
	}
	out, err := codec.MapBaseFieldsValues(context.Background(), nil, values, domain.NewEntity("file", "file", "f-1"))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"uid":      importOwner,
		"uri":      "public://images/logo.png",
		"status":   domain.FileStatusPermanent,
		"filename": "logo.png",
		"filemime": "image/png",
		"created":  10,
	}, out)
	data, err := files.Read("public://images/logo.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)
	assert.True(t, files.Exists("public://images"))

	// present locally: no second download
	_, err = codec.MapBaseFieldsValues(context.Background(), nil, values, domain.NewEntity("file", "file", "f-1"))
	require.NoError(t, err)
	assert.Len(t, fetcher.calls, 1)
}

func TestFile_MapFetchFailureDoesNotFail(t *testing.T) {
	files := memory.NewFileStore("")
	codec := NewFile(files, &mockFetcher{}, nil)

	out, err := codec.MapBaseFieldsValues(context.Background(), nil, map[string]any{
		"uri": "public://gone.png", "url": "https://src/gone.png", "status": 0,
	}, domain.NewEntity("file", "file", "f-1"))
	require.NoError(t, err)
	assert.Equal(t, 0, out["status"])
	assert.False(t, files.Exists("public://gone.png"))
}

func TestFile_AfterImportSavesCrop(t *testing.T) {
	ctx := context.Background()
	focal := memory.NewFocalPoint()
	codec := NewFile(memory.NewFileStore(""), nil, focal)
	file := imageFile()
	file.ID = "9"

	values := map[string]any{"crop": map[string]any{"width": 10, "height": 20, "x": 50, "y": 40}}
	require.NoError(t, codec.AfterBaseValuesImport(ctx, nil, values, file))

	crop, ok, err := focal.Crop(ctx, file)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.Crop{X: 50, Y: 40, Width: 10, Height: 20}, crop)

	require.NoError(t, codec.AfterBaseValuesImport(ctx, nil, map[string]any{}, file))
	require.NoError(t, NewFile(memory.NewFileStore(""), nil, nil).AfterBaseValuesImport(ctx, nil, values, file))
}

func TestDirname(t *testing.T) {
	assert.Equal(t, "public://a/b", dirname("public://a/b/c.png"))
	assert.Equal(t, "", dirname("public://c.png"))
	assert.Equal(t, "", dirname("c.png"))
}
