package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"veridian-hq/callisto/pkg/hierarchy"
)

var validateFlags struct {
	file string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a hierarchy file",
	Long: `Validate a hierarchy file without starting the server.

The validate command parses the YAML hierarchy definition and checks the
nested-set structure of both node sets:
  - every interval has left < right
  - node IDs are unique within each set
  - no duplicate intervals
  - intervals nest or are disjoint, never partially overlap

Examples:
  # Validate the default hierarchy file
  callisto validate --file hierarchy.yaml`,
	RunE: validateHierarchy,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.file, "file", "f", "hierarchy.yaml", "hierarchy file path")
}

func validateHierarchy(cmd *cobra.Command, args []string) error {
	h, err := hierarchy.LoadFile(validateFlags.file)
	if err != nil {
		return fmt.Errorf("hierarchy invalid: %w", err)
	}

	fmt.Printf("hierarchy valid: %s\n", validateFlags.file)
	fmt.Printf("  attributes: %d nodes, %d roots\n",
		h.Attributes().Len(), len(h.Attributes().Roots()))
	fmt.Printf("  purposes:   %d nodes, %d roots\n",
		h.Purposes().Len(), len(h.Purposes().Roots()))

	registry := hierarchy.NewRegistry()
	version, err := registry.Replace(h)
	if err != nil {
		return err
	}
	fmt.Printf("  version:    %s\n", version)
	return nil
}
