package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/contentcraft/canon-api/internal/orchestrators/canon"
)

var geometryCmd = &cobra.Command{
	Use:   "geometry <file>",
	Short: "Run combined schema and geometry validation on a location",
	Long: `Run schema validation plus scale-aware geometry conflict detection on
a location document. Each conflict is paired with a resolution proposal.
Schema failures short-circuit: geometry checks only run on documents
that decode cleanly.`,
	Args: cobra.ExactArgs(1),
	RunE: runGeometry,
}

func runGeometry(cmd *cobra.Command, args []string) error {
	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}

	svc, err := newService()
	if err != nil {
		return err
	}

	out, err := svc.ValidateLocation(cmd.Context(), &canon.ValidateLocationInput{Document: doc})
	if err != nil {
		return err
	}

	if !out.SchemaResult.Valid {
		fmt.Printf("schema invalid (v%s):\n%s\n", out.SchemaResult.SchemaVersion, out.SchemaResult.Details)
		os.Exit(1)
		return nil
	}

	if len(out.Conflicts) == 0 {
		fmt.Println("valid: no geometry conflicts")
		return nil
	}

	report := struct {
		Valid     bool `json:"valid"`
		Conflicts any  `json:"conflicts"`
		Proposals any  `json:"proposals"`
	}{out.Valid, out.Conflicts, out.Proposals}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))

	if !out.Valid {
		os.Exit(1)
	}
	return nil
}

var saveCmd = &cobra.Command{
	Use:   "save <file>",
	Short: "Validate a location, synchronize its doors, and store it",
	Args:  cobra.ExactArgs(1),
	RunE:  runSave,
}

func runSave(cmd *cobra.Command, args []string) error {
	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}

	svc, err := newService()
	if err != nil {
		return err
	}

	out, err := svc.SaveLocation(cmd.Context(), &canon.SaveLocationInput{Document: doc})
	if err != nil {
		return err
	}

	fmt.Printf("saved location %s (%d door anomalies)\n", out.Location.ID, len(out.Anomalies))
	for _, a := range out.Anomalies {
		fmt.Printf("  %s: %s\n", a.SpaceName, a.Reason)
	}
	return nil
}
