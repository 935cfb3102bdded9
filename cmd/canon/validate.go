package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/contentcraft/canon-api/internal/orchestrators/canon"
	"github.com/contentcraft/canon-api/internal/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate <family> <file>",
	Short: "Validate a canon document against its schema",
	Long: `Validate a JSON canon document against the versioned schema for its
family (location, monster, or npc). The schema version is detected from
the document's schema_version field; unparseable versions fall back to
the legacy 1.0 schema.`,
	Args: cobra.ExactArgs(2),
	RunE: runValidate,
}

var normalizeVersion bool

func init() {
	validateCmd.Flags().BoolVar(&normalizeVersion, "normalize", false, "canonicalize variant schema_version spellings (e.g. npc/v1.1) before validating")
}

func runValidate(cmd *cobra.Command, args []string) error {
	family := schema.Family(args[0])

	doc, err := readDocument(args[1])
	if err != nil {
		return err
	}

	svc, err := newService()
	if err != nil {
		return err
	}

	if normalizeVersion {
		normalized, err := svc.NormalizeVersion(cmd.Context(), &canon.NormalizeVersionInput{Document: doc})
		if err != nil {
			return err
		}
		doc = normalized.Document
	}

	out, err := svc.ValidateEntity(cmd.Context(), &canon.ValidateEntityInput{
		Family:   family,
		Document: doc,
	})
	if err != nil {
		return err
	}

	if out.Result.Valid {
		fmt.Printf("valid (%s schema v%s)\n", family, out.Result.SchemaVersion)
		return nil
	}

	fmt.Printf("invalid (%s schema v%s):\n%s\n", family, out.Result.SchemaVersion, out.Result.Details)
	os.Exit(1)
	return nil
}

// readDocument parses a JSON file into the generic document form the
// validators consume.
func readDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path) // #nosec G304 // user-supplied path is the point
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}
