package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var entityCmd = &cobra.Command{
	Use:   "entity",
	Short: "Browse entities in the local store",
}

var entityTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List known entity types",
	Args:  cobra.NoArgs,
	RunE:  runEntityTypes,
}

var entityListCmd = &cobra.Command{
	Use:   "list [entity-type]",
	Short: "List entities of a type",
	Args:  cobra.ExactArgs(1),
	RunE:  runEntityList,
}

var entityGetCmd = &cobra.Command{
	Use:   "get [entity-type] [id]",
	Short: "Show an entity as an exported YAML document",
	Args:  cobra.ExactArgs(2),
	RunE:  runEntityGet,
}

var entityDeleteCmd = &cobra.Command{
	Use:   "delete [entity-type] [id]",
	Short: "Delete an entity",
	Args:  cobra.ExactArgs(2),
	RunE:  runEntityDelete,
}

func init() {
	entityCmd.AddCommand(entityTypesCmd)
	entityCmd.AddCommand(entityListCmd)
	entityCmd.AddCommand(entityGetCmd)
	entityCmd.AddCommand(entityDeleteCmd)
	rootCmd.AddCommand(entityCmd)
}

func runEntityTypes(cmd *cobra.Command, _ []string) error {
	if entityService == nil {
		return errors.New("entity service not configured")
	}

	for _, t := range entityService.Types() {
		var flags []string
		if t.Fieldable {
			flags = append(flags, "fieldable")
		}
		if t.Config {
			flags = append(flags, "config")
		}
		bundles := "-"
		if len(t.Bundles) > 0 {
			bundles = strings.Join(t.Bundles, ", ")
		}
		cmd.Printf("%-20s %-24s %-12s %s\n", t.ID, t.Label, strings.Join(flags, ","), bundles)
	}
	return nil
}

func runEntityList(cmd *cobra.Command, args []string) error {
	if entityService == nil {
		return errors.New("entity service not configured")
	}

	entities, err := entityService.List(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to list entities: %w", err)
	}
	if len(entities) == 0 {
		cmd.Printf("No %s entities.\n", args[0])
		return nil
	}

	for _, e := range entities {
		cmd.Printf("%-6s %-16s %s  %s\n", e.ID, e.Bundle, e.UUID, entityLabel(e.Get("title"), e.Get("name"), e.Get("uri")))
	}
	return nil
}

// entityLabel returns the first non-empty label candidate.
func entityLabel(candidates ...any) string {
	for _, c := range candidates {
		if s, ok := c.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func runEntityGet(cmd *cobra.Command, args []string) error {
	if entityService == nil || fileGenerator == nil {
		return errors.New("entity service not configured")
	}

	ctx := commandContext(cmd)
	entity, err := entityService.Get(ctx, args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to get entity: %w", err)
	}
	file, err := fileGenerator.GenerateYAML(ctx, entity)
	if err != nil {
		return fmt.Errorf("failed to render entity: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(file.Data)
	return err
}

func runEntityDelete(cmd *cobra.Command, args []string) error {
	if entityService == nil {
		return errors.New("entity service not configured")
	}

	if err := entityService.Delete(commandContext(cmd), args[0], args[1]); err != nil {
		return fmt.Errorf("failed to delete entity: %w", err)
	}
	cmd.Printf("Deleted %s %s\n", args[0], args[1])
	return nil
}
