package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
	"github.com/custodia-labs/contentsync/internal/core/ports/driving"
	"github.com/custodia-labs/contentsync/internal/logger"
)

// Ensure ContentImporter implements the interface.
var _ driving.ContentImporter = (*ContentImporter)(nil)

// ImportOptions configures a ContentImporter.
type ImportOptions struct {
	// SiteUUID identifies this site.
	SiteUUID string

	// SiteUUIDCheck rejects documents exported from another site.
	SiteUUIDCheck bool

	// ImportDirectorySchema is the scheme archives are extracted under.
	// Defaults to temporary.
	ImportDirectorySchema string

	// Progress reports archive import steps. Optional.
	Progress ProgressFunc
}

func (o ImportOptions) importSchema() string {
	if o.ImportDirectorySchema == "" {
		return domain.SchemeTemporary
	}
	return o.ImportDirectorySchema
}

// ContentImporter imports portable documents into the entity store.
type ContentImporter struct {
	store    driven.EntityStore
	schema   driven.SchemaProvider
	files    driven.FileStore
	archiver driven.Archiver
	registry driven.CodecRegistry
	metrics  driven.Metrics
	opts     ImportOptions
}

// NewContentImporter creates a new importer.
// archiver is only needed for archive imports; metrics is optional.
func NewContentImporter(
	store driven.EntityStore,
	schema driven.SchemaProvider,
	files driven.FileStore,
	archiver driven.Archiver,
	registry driven.CodecRegistry,
	metrics driven.Metrics,
	opts ImportOptions,
) *ContentImporter {
	return &ContentImporter{
		store:    store,
		schema:   schema,
		files:    files,
		archiver: archiver,
		registry: registry,
		metrics:  orNopMetrics(metrics),
		opts:     opts,
	}
}

// Import imports one document in a new pass.
func (m *ContentImporter) Import(ctx context.Context, doc *domain.Document) (*domain.Entity, error) {
	return m.newPass().ImportDocument(ctx, doc)
}

// ImportFromFile reads a YAML document file and imports it.
func (m *ContentImporter) ImportFromFile(ctx context.Context, filePath string) (*domain.Entity, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrIO, filePath, err)
	}
	doc, err := DecodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return m.Import(ctx, doc)
}

// ImportFromArchive extracts an archive into a fresh import directory,
// copies its assets into the file store, then imports its documents in
// archive order within one pass. The import directory is removed afterwards.
func (m *ContentImporter) ImportFromArchive(ctx context.Context, archivePath string) (*domain.BatchResult, error) {
	if m.archiver == nil {
		return nil, fmt.Errorf("import %s: no archiver configured: %w", archivePath, domain.ErrConfiguration)
	}

	dir := m.opts.importSchema() + "://import/zip/" + uuid.NewString()
	if err := m.files.PrepareDirectory(dir); err != nil {
		return nil, fmt.Errorf("%w: prepare %s: %w", domain.ErrIO, dir, err)
	}
	defer func() {
		if err := m.files.DeleteRecursive(dir); err != nil {
			logger.Warn("clean %s: %v", dir, err)
		}
	}()

	local, err := m.files.Realpath(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %w", domain.ErrIO, dir, err)
	}
	names, err := m.archiver.Extract(archivePath, local)
	if err != nil {
		return nil, fmt.Errorf("%w: extract %s: %w", domain.ErrIO, archivePath, err)
	}

	pass := m.newPass()
	var assets, docs []batchStep
	for _, name := range names {
		switch {
		case strings.HasPrefix(name, assetsDir+"/"):
			assets = append(assets, batchStep{
				name: name,
				run:  func(context.Context) error { return m.copyAsset(dir, name) },
			})
		case strings.HasSuffix(name, DocumentExtension):
			docs = append(docs, batchStep{
				name: name,
				run: func(ctx context.Context) error {
					return pass.importFile(ctx, dir+"/"+name)
				},
			})
		default:
			logger.Debug("import %s: skipped %s", archivePath, name)
		}
	}

	logger.Section("Import")
	logger.Info("Importing %d documents and %d assets from %s", len(docs), len(assets), archivePath)
	return runBatch(ctx, append(assets, docs...), m.opts.Progress, m.metrics, "import")
}

// copyAsset writes "assets/<scheme>/<path>" to "<scheme>://<path>".
func (m *ContentImporter) copyAsset(dir, name string) error {
	uri, ok := assetURI(name)
	if !ok {
		return fmt.Errorf("%w: asset %s has no valid scheme", domain.ErrValidation, name)
	}
	data, err := m.files.Read(dir + "/" + name)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", domain.ErrIO, name, err)
	}
	if parent := dirOf(uri); parent != "" {
		if err := m.files.PrepareDirectory(parent); err != nil {
			return fmt.Errorf("%w: prepare %s: %w", domain.ErrIO, parent, err)
		}
	}
	if err := m.files.WriteData(uri, data); err != nil {
		return fmt.Errorf("%w: write %s: %w", domain.ErrIO, uri, err)
	}
	logger.Debug("asset %s copied to %s", name, uri)
	return nil
}

// CreateStubEntity creates a stub entity in a new pass.
func (m *ContentImporter) CreateStubEntity(ctx context.Context, doc *domain.Document) (*domain.Entity, error) {
	return m.newPass().CreateStubEntity(ctx, doc)
}

// IsFullEntity reports whether value is a full document.
func (m *ContentImporter) IsFullEntity(value any) bool {
	return domain.IsFullDocument(value)
}

func (m *ContentImporter) newPass() *importPass {
	return &importPass{
		importer: m,
		states:   make(map[string]importState),
		entities: make(map[string]*domain.Entity),
	}
}

// importState tracks one entity through an import pass.
type importState int

const (
	stateAbsent importState = iota
	// stateInProgress entities are being imported from a full document.
	stateInProgress
	// stateStubCreated entities were resolved from a stub: loaded from
	// the store or created from base fields only.
	stateStubCreated
	stateFullyImported
)

// Ensure importPass implements the interface.
var _ driven.ImportSession = (*importPass)(nil)

// importPass is the state of one import, keyed by entity key.
type importPass struct {
	importer *ContentImporter
	states   map[string]importState
	entities map[string]*domain.Entity
}

// importFile decodes a document from the file store and imports it.
func (p *importPass) importFile(ctx context.Context, uri string) error {
	data, err := p.importer.files.Read(uri)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", domain.ErrIO, uri, err)
	}
	doc, err := DecodeDocument(data)
	if err != nil {
		return err
	}
	_, err = p.ImportDocument(ctx, doc)
	return err
}

// ImportDocument imports a full document. An entity already imported in
// the pass is returned as is; one still in progress is saved early so the
// caller gets a valid id.
func (p *importPass) ImportDocument(ctx context.Context, doc *domain.Document) (*domain.Entity, error) {
	m := p.importer
	key := doc.Key()
	switch p.states[key] {
	case stateFullyImported:
		logger.Debug("import %s: already imported in this pass", key)
		return p.entities[key], nil
	case stateInProgress:
		return p.saveEarly(ctx, key)
	}

	// 1. Validate before touching anything
	if !doc.IsFull() {
		return nil, fmt.Errorf("import %s: %w: document has no custom_fields", key, domain.ErrValidation)
	}
	if err := validateTarget(m.schema, m.opts, doc); err != nil {
		return nil, fmt.Errorf("import %s: %w", key, err)
	}

	// 2. Load for update or create
	entity, created, err := p.loadOrCreate(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", key, err)
	}
	prev := p.states[key]
	p.states[key] = stateInProgress
	p.entities[key] = entity

	// 3. Base fields, then custom fields
	if err := p.applyBaseValues(ctx, doc.BaseFields, entity); err != nil {
		p.abort(key, prev)
		return nil, fmt.Errorf("import %s: %w", key, err)
	}
	if err := p.applyCustomFields(ctx, doc, entity); err != nil {
		p.abort(key, prev)
		return nil, fmt.Errorf("import %s: %w", key, err)
	}

	// 4. Persist
	if err := m.store.Save(ctx, entity); err != nil {
		p.abort(key, prev)
		return nil, fmt.Errorf("save %s: %w", key, err)
	}
	p.states[key] = stateFullyImported

	// 5. Post-save hook
	if codec, ok := m.registry.BaseCodec(entity.EntityType); ok {
		if hook, ok := codec.(driven.AfterImportHook); ok {
			if err := hook.AfterBaseValuesImport(ctx, p, doc.BaseFields, entity); err != nil {
				logger.Warn("import %s: %v", key, err)
			}
		}
	}

	m.metrics.EntityImported(entity.EntityType, created)
	logger.Debug("imported %s as %s/%s", key, entity.EntityType, entity.ID)
	return entity, nil
}

// ResolveReference returns the destination entity of a reference.
// Full documents are imported; stubs are loaded by uuid or created.
func (p *importPass) ResolveReference(ctx context.Context, doc *domain.Document) (*domain.Entity, error) {
	key := doc.Key()
	switch p.states[key] {
	case stateFullyImported:
		return p.entities[key], nil
	case stateInProgress:
		e, err := p.saveEarly(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrReferenceResolution, err)
		}
		return e, nil
	}

	if doc.IsFull() {
		e, err := p.ImportDocument(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrReferenceResolution, err)
		}
		return e, nil
	}
	if p.states[key] == stateStubCreated {
		return p.entities[key], nil
	}

	e, err := p.importer.store.LoadByUUID(ctx, doc.EntityType, doc.UUID)
	switch {
	case err == nil:
		p.states[key] = stateStubCreated
		p.entities[key] = e
		return e, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("%w: load %s: %w", domain.ErrReferenceResolution, key, err)
	}

	e, err = p.CreateStubEntity(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrReferenceResolution, err)
	}
	return e, nil
}

// CreateStubEntity creates and saves an entity from base fields only.
func (p *importPass) CreateStubEntity(ctx context.Context, doc *domain.Document) (*domain.Entity, error) {
	m := p.importer
	key := doc.Key()
	if err := validateTarget(m.schema, m.opts, doc); err != nil {
		return nil, fmt.Errorf("create stub %s: %w", key, err)
	}

	entity := domain.NewEntity(doc.EntityType, doc.Bundle, doc.UUID)
	prev := p.states[key]
	p.states[key] = stateInProgress
	p.entities[key] = entity

	if err := p.applyBaseValues(ctx, doc.BaseFields, entity); err != nil {
		p.abort(key, prev)
		return nil, fmt.Errorf("create stub %s: %w", key, err)
	}
	if err := m.store.Save(ctx, entity); err != nil {
		p.abort(key, prev)
		return nil, fmt.Errorf("create stub %s: %w", key, err)
	}
	p.states[key] = stateStubCreated

	m.metrics.StubCreated(entity.EntityType)
	logger.Debug("created stub %s as %s/%s", key, entity.EntityType, entity.ID)
	return entity, nil
}

// IsFullEntity reports whether value is a full document.
func (p *importPass) IsFullEntity(value any) bool {
	return domain.IsFullDocument(value)
}

func (p *importPass) loadOrCreate(ctx context.Context, doc *domain.Document) (*domain.Entity, bool, error) {
	if e, ok := p.entities[doc.Key()]; ok {
		return e, false, nil
	}
	e, err := p.importer.store.LoadByUUID(ctx, doc.EntityType, doc.UUID)
	switch {
	case err == nil:
		return e, false, nil
	case errors.Is(err, domain.ErrNotFound):
		return domain.NewEntity(doc.EntityType, doc.Bundle, doc.UUID), true, nil
	default:
		return nil, false, fmt.Errorf("load: %w", err)
	}
}

// saveEarly persists an entity still being imported so references to it
// get an id. The full save follows once its import completes.
func (p *importPass) saveEarly(ctx context.Context, key string) (*domain.Entity, error) {
	e := p.entities[key]
	if !e.IsNew() {
		return e, nil
	}
	if err := p.importer.store.Save(ctx, e); err != nil {
		return nil, fmt.Errorf("save %s early: %w", key, err)
	}
	logger.Debug("saved %s early as %s/%s", key, e.EntityType, e.ID)
	return e, nil
}

// abort rolls the state of a failed import back. Entities already saved
// stay resolvable as stubs.
func (p *importPass) abort(key string, prev importState) {
	e := p.entities[key]
	switch {
	case e != nil && !e.IsNew():
		p.states[key] = stateStubCreated
	case prev == stateAbsent:
		delete(p.states, key)
		delete(p.entities, key)
	default:
		p.states[key] = prev
	}
}

// applyBaseValues maps portable base fields through the base codec, or
// copies them as is for types without one. Nil values unset the field.
func (p *importPass) applyBaseValues(ctx context.Context, values map[string]any, entity *domain.Entity) error {
	mapped := values
	if codec, ok := p.importer.registry.BaseCodec(entity.EntityType); ok {
		var err error
		mapped, err = codec.MapBaseFieldsValues(ctx, p, values, entity)
		if err != nil {
			return fmt.Errorf("base fields: %w", err)
		}
	}
	for k, v := range mapped {
		if v == nil {
			delete(entity.Base, k)
			continue
		}
		entity.Set(k, domain.CopyValue(v))
	}
	return nil
}

// applyCustomFields imports every field of the bundle present in the
// document, in schema order. Unknown fields are skipped.
func (p *importPass) applyCustomFields(ctx context.Context, doc *domain.Document, entity *domain.Entity) error {
	m := p.importer
	known := make(map[string]bool)
	for _, def := range m.schema.FieldDefinitions(entity.EntityType, entity.Bundle) {
		known[def.Name] = true
		value, ok := doc.CustomFields[def.Name]
		if !ok {
			continue
		}
		if err := m.registry.FieldCodec(def.Type).Import(ctx, p, entity, def, value); err != nil {
			return fmt.Errorf("field %s: %w", def.Name, err)
		}
	}

	var unknown []string
	for name := range doc.CustomFields {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		logger.Debug("import %s: fields %s do not exist, skipped", doc.Key(), strings.Join(unknown, ", "))
	}
	return nil
}

// dirOf returns the parent of a scheme URI, or "" at the scheme root.
func dirOf(uri string) string {
	scheme, target, _ := strings.Cut(uri, "://")
	d := path.Dir(target)
	if d == "." || d == "/" {
		return ""
	}
	return scheme + "://" + d
}
