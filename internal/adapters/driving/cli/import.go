package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/contentsync/internal/core/domain"
)

var importCmd = &cobra.Command{
	Use:   "import [file...]",
	Short: "Import YAML documents or zip archives",
	Long: `Imports content from YAML documents (.yml, .yaml) or zip archives
(.zip) produced by export. Existing entities are matched by uuid and
updated; missing referenced entities are created.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if contentImporter == nil {
		return errors.New("import service not configured")
	}

	ctx := commandContext(cmd)

	result := &domain.BatchResult{}
	for _, path := range args {
		sub, err := importPath(ctx, path)
		if err != nil {
			result.Fail(path, err)
			continue
		}
		result.Succeeded = append(result.Succeeded, sub.Succeeded...)
		result.Failed = append(result.Failed, sub.Failed...)
	}

	printResult(cmd, "Imported", result)
	return resultError(result)
}

// importPath imports one document or archive and reports its items.
func importPath(ctx context.Context, path string) (*domain.BatchResult, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		entity, err := contentImporter.ImportFromFile(ctx, path)
		if err != nil {
			return nil, err
		}
		result := &domain.BatchResult{}
		result.Success(fmt.Sprintf("%s (%s %s)", filepath.Base(path), entity.EntityType, entity.ID))
		return result, nil
	case ".zip":
		return contentImporter.ImportFromArchive(ctx, path)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", domain.ErrInvalidInput, filepath.Ext(path))
	}
}
