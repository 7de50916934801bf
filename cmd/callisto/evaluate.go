package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"veridian-hq/callisto/pkg/decision"
	"veridian-hq/callisto/pkg/hierarchy"
)

var evaluateFlags struct {
	hierarchyFile  string
	requestFile    string
	preferenceFile string
	output         string
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Resolve a one-shot decision from files",
	Long: `Evaluate a single access request against a privacy preference
without starting the server.

All three inputs are YAML files: the hierarchy definition, the access
request, and the subject preference.

Examples:
  # Resolve a decision and print the result
  callisto evaluate --hierarchy hierarchy.yaml \
    --request request.yaml --preference preference.yaml

  # JSON output for scripting
  callisto evaluate --hierarchy hierarchy.yaml \
    --request request.yaml --preference preference.yaml --output json`,
	RunE: evaluateOnce,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evaluateFlags.hierarchyFile, "hierarchy", "hierarchy.yaml", "hierarchy file path")
	evaluateCmd.Flags().StringVar(&evaluateFlags.requestFile, "request", "", "access request file path")
	evaluateCmd.Flags().StringVar(&evaluateFlags.preferenceFile, "preference", "", "preference file path")
	evaluateCmd.Flags().StringVarP(&evaluateFlags.output, "output", "o", "text", "output format: text or json")

	_ = evaluateCmd.MarkFlagRequired("request")
	_ = evaluateCmd.MarkFlagRequired("preference")
}

func evaluateOnce(cmd *cobra.Command, args []string) error {
	h, err := hierarchy.LoadFile(evaluateFlags.hierarchyFile)
	if err != nil {
		return fmt.Errorf("failed to load hierarchy: %w", err)
	}

	var req decision.AccessRequest
	if err := loadYAML(evaluateFlags.requestFile, &req); err != nil {
		return fmt.Errorf("failed to load request: %w", err)
	}

	var pref decision.Preference
	if err := loadYAML(evaluateFlags.preferenceFile, &pref); err != nil {
		return fmt.Errorf("failed to load preference: %w", err)
	}

	registry := hierarchy.NewRegistry()
	version, err := registry.Replace(h)
	if err != nil {
		return err
	}

	dec, err := decision.Evaluate(&req, &pref, h)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	fp, err := decision.ComputeFingerprint(&req, &pref, version)
	if err != nil {
		return err
	}

	if evaluateFlags.output == "json" {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{
			"decision":      string(dec),
			"policyVersion": version,
			"fingerprint":   string(fp),
		})
	}

	fmt.Printf("decision:       %s\n", dec)
	fmt.Printf("policy version: %s\n", version)
	fmt.Printf("fingerprint:    %s\n", fp)
	return nil
}

func loadYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, v)
}
