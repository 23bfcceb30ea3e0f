package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
	"github.com/custodia-labs/contentsync/internal/core/ports/driving"
	"github.com/custodia-labs/contentsync/internal/logger"
)

// Ensure ContentExporter implements the interface.
var _ driving.ContentExporter = (*ContentExporter)(nil)

// ContentExporter exports entities into portable documents.
type ContentExporter struct {
	schema     driven.SchemaProvider
	registry   driven.CodecRegistry
	access     driven.AccessPolicy
	exclusions driven.FieldExclusions
	metrics    driven.Metrics
	siteUUID   string
}

// NewContentExporter creates a new exporter.
// access, exclusions and metrics are optional. Without an access policy
// every fieldable entity may be exported.
func NewContentExporter(
	schema driven.SchemaProvider,
	registry driven.CodecRegistry,
	access driven.AccessPolicy,
	exclusions driven.FieldExclusions,
	metrics driven.Metrics,
	siteUUID string,
) *ContentExporter {
	return &ContentExporter{
		schema:     schema,
		registry:   registry,
		access:     access,
		exclusions: exclusions,
		metrics:    orNopMetrics(metrics),
		siteUUID:   siteUUID,
	}
}

// Export exports one entity in a new pass.
func (x *ContentExporter) Export(ctx context.Context, entity *domain.Entity) (*domain.Document, error) {
	if err := x.checkRoot(ctx, entity); err != nil {
		return nil, err
	}
	return x.newPass().ExportEntity(ctx, entity)
}

// ExportMultiple exports entities in one shared pass.
func (x *ContentExporter) ExportMultiple(ctx context.Context, entities []*domain.Entity) *driving.ExportResult {
	pass := x.newPass()
	out := &driving.ExportResult{Result: &domain.BatchResult{}}

	logger.Section("Export")
	for _, entity := range entities {
		if err := ctx.Err(); err != nil {
			out.Result.Fail(entity.Key(), err)
			continue
		}
		doc, err := x.exportRoot(ctx, pass, entity)
		if err != nil {
			logger.Warn("export %s: %v", entity.Key(), err)
			x.metrics.ItemFailed("export")
			out.Result.Fail(entity.Key(), err)
			continue
		}
		out.Documents = append(out.Documents, doc)
		out.Result.Success(entity.Key())
	}
	out.Assets = pass.Assets()
	logger.Info("Exported %d of %d entities, %d assets", len(out.Documents), len(entities), len(out.Assets))
	return out
}

func (x *ContentExporter) exportRoot(ctx context.Context, pass *exportPass, entity *domain.Entity) (*domain.Document, error) {
	if err := x.checkRoot(ctx, entity); err != nil {
		return nil, err
	}
	return pass.ExportEntity(ctx, entity)
}

// checkRoot applies the access policy to a top-level entity.
// Referenced entities are exported on behalf of their referrer.
func (x *ContentExporter) checkRoot(ctx context.Context, entity *domain.Entity) error {
	et, ok := x.schema.EntityType(entity.EntityType)
	if !ok {
		return fmt.Errorf("export %s: entity type %q: %w", entity.Key(), entity.EntityType, domain.ErrUnsupportedType)
	}
	if !et.Fieldable {
		return fmt.Errorf("export %s: entity type %q is not fieldable: %w", entity.Key(), entity.EntityType, domain.ErrUnsupportedType)
	}
	if x.access != nil && !x.access.CanExport(ctx, entity) {
		return fmt.Errorf("export %s: %w", entity.Key(), domain.ErrAccessDenied)
	}
	return nil
}

func (x *ContentExporter) newPass() *exportPass {
	return &exportPass{
		exporter:   x,
		cached:     make(map[string]bool),
		stubbing:   make(map[string]bool),
		seenAssets: make(map[string]bool),
	}
}

// Ensure exportPass implements the interface.
var _ driven.ExportSession = (*exportPass)(nil)

// exportPass is the state of one export: the reference cache and the
// collected assets.
type exportPass struct {
	exporter *ContentExporter

	// cached holds the keys of entities exported in full. journal lists
	// them in marking order so a failed export can be unwound.
	cached  map[string]bool
	journal []string

	// stubbing holds the keys of stubs being built, so a stub whose base
	// fields lead back to itself ends with empty base fields.
	stubbing map[string]bool

	assets     []string
	seenAssets map[string]bool
}

// ExportEntity exports entity in full and marks it cached. The mark is set
// before the fields are exported, so references back to the entity become
// stubs. When the export fails, the marks and assets recorded since it
// started are dropped, so entities nested in the failed document are
// exported in full again by the next referrer.
func (p *exportPass) ExportEntity(ctx context.Context, entity *domain.Entity) (*domain.Document, error) {
	cp := p.checkpoint()
	p.cached[entity.Key()] = true
	p.journal = append(p.journal, entity.Key())

	doc, err := p.exportFull(ctx, entity)
	if err != nil {
		p.rollback(cp)
		return nil, err
	}
	return doc, nil
}

// passCheckpoint records the journal and asset lengths at a point in the pass.
type passCheckpoint struct {
	keys   int
	assets int
}

func (p *exportPass) checkpoint() passCheckpoint {
	return passCheckpoint{keys: len(p.journal), assets: len(p.assets)}
}

// rollback forgets the entities and assets recorded after cp.
func (p *exportPass) rollback(cp passCheckpoint) {
	for _, key := range p.journal[cp.keys:] {
		delete(p.cached, key)
	}
	p.journal = p.journal[:cp.keys]
	for _, uri := range p.assets[cp.assets:] {
		delete(p.seenAssets, uri)
	}
	p.assets = p.assets[:cp.assets]
}

func (p *exportPass) exportFull(ctx context.Context, entity *domain.Entity) (*domain.Document, error) {
	x := p.exporter
	logger.Debug("export %s", entity.Key())

	base, err := p.exportBaseValues(ctx, entity)
	if err != nil {
		return nil, err
	}

	custom := make(map[string]any)
	for _, def := range x.schema.FieldDefinitions(entity.EntityType, entity.Bundle) {
		if x.exclusions != nil && x.exclusions.IsFieldExcluded(entity.EntityType, entity.Bundle, def.Name) {
			logger.Debug("export %s: field %s excluded", entity.Key(), def.Name)
			continue
		}
		field := domain.Field{Entity: entity, Definition: def, Items: entity.Field(def.Name)}
		value, err := x.registry.FieldCodec(def.Type).Export(ctx, p, field)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", entity.Key(), err)
		}
		custom[def.Name] = value
	}

	x.metrics.EntityExported(entity.EntityType)
	return &domain.Document{
		UUID:         entity.UUID,
		EntityType:   entity.EntityType,
		Bundle:       entity.Bundle,
		SiteUUID:     x.siteUUID,
		BaseFields:   base,
		CustomFields: custom,
	}, nil
}

// ExportReference exports entity in full the first time it is met in the
// pass and as a stub afterwards.
func (p *exportPass) ExportReference(ctx context.Context, entity *domain.Entity) (*domain.Document, error) {
	if p.IsReferenceCached(entity) {
		return p.ExportStub(ctx, entity)
	}
	return p.ExportEntity(ctx, entity)
}

// ExportStub exports the identity and base fields of entity.
func (p *exportPass) ExportStub(ctx context.Context, entity *domain.Entity) (*domain.Document, error) {
	key := entity.Key()
	if p.stubbing[key] {
		return domain.NewStub(entity.EntityType, entity.Bundle, entity.UUID, nil), nil
	}
	p.stubbing[key] = true
	defer delete(p.stubbing, key)

	base, err := p.exportBaseValues(ctx, entity)
	if err != nil {
		return nil, err
	}
	return domain.NewStub(entity.EntityType, entity.Bundle, entity.UUID, base), nil
}

// IsReferenceCached reports whether entity was exported in full.
func (p *exportPass) IsReferenceCached(entity *domain.Entity) bool {
	return p.cached[entity.Key()]
}

// AddAsset records a file URI once.
func (p *exportPass) AddAsset(uri string) {
	if p.seenAssets[uri] {
		return
	}
	p.seenAssets[uri] = true
	p.assets = append(p.assets, uri)
}

// Assets returns the collected file URIs in first-seen order.
func (p *exportPass) Assets() []string {
	return append([]string(nil), p.assets...)
}

// exportBaseValues runs the base codec of the entity type. Types without
// a base codec export no base fields.
func (p *exportPass) exportBaseValues(ctx context.Context, entity *domain.Entity) (map[string]any, error) {
	codec, ok := p.exporter.registry.BaseCodec(entity.EntityType)
	if !ok {
		return map[string]any{}, nil
	}
	base, err := codec.ExportBaseValues(ctx, p, entity)
	if err != nil {
		return nil, fmt.Errorf("export base fields of %s: %w", entity.Key(), err)
	}
	if base == nil {
		base = map[string]any{}
	}
	return base, nil
}
