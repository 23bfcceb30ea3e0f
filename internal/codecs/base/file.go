package base

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
	"github.com/custodia-labs/contentsync/internal/logger"
)

// importOwner is the owner assigned to imported files.
const importOwner = "1"

var (
	_ driven.BaseFieldsCodec = (*File)(nil)
	_ driven.AfterImportHook = (*File)(nil)
)

// File handles managed files. Every exported file URI is recorded as an
// asset of the pass. Files missing on the destination are downloaded from
// their exported URL before the entity is saved.
type File struct {
	files   driven.FileStore
	fetcher driven.AssetFetcher
	focal   driven.FocalPoint
}

// NewFile creates a file codec. fetcher and focal may be nil.
func NewFile(files driven.FileStore, fetcher driven.AssetFetcher, focal driven.FocalPoint) *File {
	return &File{files: files, fetcher: fetcher, focal: focal}
}

// EntityType returns "file".
func (c *File) EntityType() string { return "file" }

// ExportBaseValues exports the file metadata, its public URL and, when the
// focal point capability is present, the image crop.
func (c *File) ExportBaseValues(ctx context.Context, session driven.ExportSession, entity *domain.Entity) (map[string]any, error) {
	uri := entity.GetString("uri")
	out := map[string]any{
		"name":     entity.Get("filename"),
		"uri":      uri,
		"url":      c.files.ExternalURL(uri),
		"status":   entity.Get("status"),
		"created":  entity.Get("created"),
		"changed":  entity.Get("changed"),
		"mimetype": entity.Get("filemime"),
	}

	if c.focal != nil && strings.HasPrefix(entity.GetString("filemime"), "image/") {
		crop, ok, err := c.focal.Crop(ctx, entity)
		if err != nil {
			return nil, fmt.Errorf("crop of %s: %w", entity.Key(), err)
		}
		if ok {
			out["crop"] = crop.ToMap()
		}
	}

	if uri != "" {
		session.AddAsset(uri)
	}
	return out, nil
}

// MapBaseFieldsValues downloads the file when it is missing locally and
// maps the metadata. Status defaults to permanent.
func (c *File) MapBaseFieldsValues(ctx context.Context, _ driven.ImportSession, values map[string]any, entity *domain.Entity) (map[string]any, error) {
	uri := domain.AsString(values["uri"])
	url := domain.AsString(values["url"])
	if uri != "" && url != "" && !c.files.Exists(uri) {
		c.download(ctx, entity, uri, url)
	}

	status := values["status"]
	if domain.IsEmpty(status) {
		status = domain.FileStatusPermanent
	}

	out := map[string]any{
		"uid":    importOwner,
		"uri":    uri,
		"status": status,
	}
	for to, from := range map[string]string{
		"filename": "name",
		"filemime": "mimetype",
		"created":  "created",
		"changed":  "changed",
	} {
		if v, ok := values[from]; ok {
			out[to] = v
		}
	}
	return out, nil
}

// download fetches a missing asset. Failures leave the asset unset and
// never fail the import.
func (c *File) download(ctx context.Context, entity *domain.Entity, uri, url string) {
	if c.fetcher == nil {
		logger.Warn("file %s: %s is missing and no fetcher is configured", entity.Key(), uri)
		return
	}
	data, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		logger.Warn("file %s: fetch %s: %v", entity.Key(), url, err)
		return
	}
	if dir := dirname(uri); dir != "" {
		if err := c.files.PrepareDirectory(dir); err != nil {
			logger.Warn("file %s: prepare %s: %v", entity.Key(), dir, err)
			return
		}
	}
	if err := c.files.WriteData(uri, data); err != nil {
		logger.Warn("file %s: write %s: %v", entity.Key(), uri, err)
		return
	}
	logger.Debug("file %s: downloaded %s to %s", entity.Key(), url, uri)
}

// AfterBaseValuesImport re-applies the crop once the file has an id.
func (c *File) AfterBaseValuesImport(ctx context.Context, _ driven.ImportSession, values map[string]any, entity *domain.Entity) error {
	if c.focal == nil {
		return nil
	}
	crop, ok := domain.CropFromValue(values["crop"])
	if !ok {
		return nil
	}
	if err := c.focal.SaveCrop(ctx, entity, crop); err != nil {
		return fmt.Errorf("save crop of %s: %w", entity.Key(), err)
	}
	return nil
}

// dirname returns the parent of a scheme URI, keeping the scheme.
func dirname(uri string) string {
	i := strings.LastIndex(uri, "/")
	if i < 0 || strings.HasSuffix(uri[:i+1], "://") {
		return ""
	}
	return uri[:i]
}
