package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
)

// DocumentExtension is the file extension of document files.
const DocumentExtension = ".yml"

// assetsDir is the archive directory holding "<scheme>/<path>" assets.
const assetsDir = "assets"

// fieldRulePattern matches "entity_type.bundle.field" exclusion rules.
var fieldRulePattern = regexp.MustCompile(`^[a-z0-9_]+\.([a-z0-9_]+|\*)\.[a-z0-9_]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("fieldrule", func(fl validator.FieldLevel) bool {
		return fieldRulePattern.MatchString(fl.Field().String())
	})
	return v
}

// documentHeader lists the identity keys every document file must carry.
type documentHeader struct {
	UUID       string `yaml:"uuid" validate:"required"`
	EntityType string `yaml:"entity_type" validate:"required"`
	Bundle     string `yaml:"bundle" validate:"required"`
	SiteUUID   string `yaml:"site_uuid"`
}

// documentSections must be present in a document file. A null section
// reads as an empty mapping, so a null custom_fields still marks the
// document as full.
var documentSections = []string{domain.KeyBaseFields, domain.KeyCustomFields}

// EncodeDocument renders a document as YAML.
func EncodeDocument(doc *domain.Document) ([]byte, error) {
	data, err := yaml.Marshal(doc.ToMap())
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", doc.Key(), err)
	}
	return data, nil
}

// DecodeDocument parses and validates a YAML document file.
// Every error wraps domain.ErrValidation.
func DecodeDocument(data []byte) (*domain.Document, error) {
	var header documentHeader
	if err := yaml.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("%w: yaml is not valid: %w", domain.ErrValidation, err)
	}
	if err := validate.Struct(header); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, describeValidation(err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: yaml is not valid: %w", domain.ErrValidation, err)
	}
	for _, key := range documentSections {
		if _, present := raw[key]; !present {
			return nil, fmt.Errorf("%w: %s is required", domain.ErrValidation, key)
		}
	}
	doc, err := domain.DocumentFromValue(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return doc, nil
}

// describeValidation lists the failed keys of a validator error.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	names := make([]string, len(verrs))
	for i, fe := range verrs {
		names[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
	}
	return strings.Join(names, ", ")
}

// DocumentFileName returns "<entity_type>-<bundle>-<uuid>.yml".
func DocumentFileName(doc *domain.Document) string {
	return strings.Join([]string{doc.EntityType, doc.Bundle, doc.UUID}, "-") + DocumentExtension
}

// assetEntryName maps "<scheme>://<path>" to "assets/<scheme>/<path>".
func assetEntryName(uri string) (string, bool) {
	scheme, target, ok := strings.Cut(uri, "://")
	if !ok || !domain.IsValidScheme(scheme) || strings.Trim(target, "/") == "" {
		return "", false
	}
	return path.Join(assetsDir, scheme, target), true
}

// assetURI is the inverse of assetEntryName.
func assetURI(name string) (string, bool) {
	rel, ok := strings.CutPrefix(name, assetsDir+"/")
	if !ok {
		return "", false
	}
	scheme, target, ok := strings.Cut(rel, "/")
	if !ok || !domain.IsValidScheme(scheme) || target == "" {
		return "", false
	}
	return scheme + "://" + target, true
}

// validateTarget checks that the document's entity type and bundle exist
// and, when enabled, that it was exported from this site.
func validateTarget(schema driven.SchemaProvider, opts ImportOptions, doc *domain.Document) error {
	et, ok := schema.EntityType(doc.EntityType)
	if !ok {
		return fmt.Errorf("%w: entity type %q of %s does not exist", domain.ErrValidation, doc.EntityType, doc.UUID)
	}
	if !et.HasBundle(doc.Bundle) {
		return fmt.Errorf("%w: bundle %q of entity type %q does not exist", domain.ErrValidation, doc.Bundle, doc.EntityType)
	}
	if opts.SiteUUIDCheck && doc.SiteUUID != "" && doc.SiteUUID != opts.SiteUUID {
		return fmt.Errorf("%w: %s was exported from site %s, not this site", domain.ErrValidation, doc.Key(), doc.SiteUUID)
	}
	return nil
}

// Ensure SettingsAccessPolicy implements the interface.
var _ driven.AccessPolicy = (*SettingsAccessPolicy)(nil)

// SettingsAccessPolicy allows export of fieldable entities whose type and
// bundle are on the configured allow list.
type SettingsAccessPolicy struct {
	schema   driven.SchemaProvider
	settings domain.SyncSettings
}

// NewSettingsAccessPolicy creates an access policy from settings.
func NewSettingsAccessPolicy(schema driven.SchemaProvider, settings domain.SyncSettings) *SettingsAccessPolicy {
	return &SettingsAccessPolicy{schema: schema, settings: settings}
}

// CanExport reports whether entity may be exported.
func (p *SettingsAccessPolicy) CanExport(_ context.Context, entity *domain.Entity) bool {
	et, ok := p.schema.EntityType(entity.EntityType)
	if !ok || !et.Fieldable {
		return false
	}
	return p.settings.IsEntityAllowed(entity.EntityType, entity.Bundle)
}
