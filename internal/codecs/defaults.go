package codecs

import (
	"github.com/custodia-labs/contentsync/internal/codecs/base"
	"github.com/custodia-labs/contentsync/internal/codecs/field"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
)

// Dependencies are the collaborators the built-in codecs need.
// Fetcher, FocalPoint, CurrentUser and URLs may be nil.
type Dependencies struct {
	Store       driven.EntityStore
	Schema      driven.SchemaProvider
	Files       driven.FileStore
	Fetcher     driven.AssetFetcher
	FocalPoint  driven.FocalPoint
	CurrentUser driven.CurrentUser
	URLs        driven.URLGenerator
}

// NewDefaultRegistry builds a registry with all built-in codecs.
// Call this during application initialisation.
func NewDefaultRegistry(deps Dependencies) (*Registry, error) {
	fieldCodecs := []driven.FieldCodec{
		field.NewGeneric(),
		field.NewReference(deps.Store, deps.Schema),
		field.NewLink(deps.Store, deps.Schema),
		field.NewText(deps.Store, deps.Schema, deps.URLs),
		field.NewMetatag(),
	}

	baseCodecs := []driven.BaseFieldsCodec{
		base.BlockContent{},
		base.NewFile(deps.Files, deps.Fetcher, deps.FocalPoint),
		base.Media{},
		base.NewMenuLink(deps.Store, deps.Schema),
		base.NewNode(deps.Store, deps.CurrentUser),
		base.Paragraph{},
		base.NewTaxonomyTerm(deps.Store),
		base.User{},
	}

	return NewRegistry(fieldCodecs, baseCodecs)
}
