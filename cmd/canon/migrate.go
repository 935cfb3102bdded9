package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contentcraft/canon-api/internal/orchestrators/canon"
)

var syncCmd = &cobra.Command{
	Use:   "sync <location-id>",
	Short: "Re-run door synchronization on a stored location",
	Args:  cobra.ExactArgs(1),
	RunE:  runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}

	out, err := svc.SyncDoors(cmd.Context(), &canon.SyncDoorsInput{LocationID: args[0]})
	if err != nil {
		return err
	}

	fmt.Printf("synchronized %s (%d door anomalies)\n", out.Location.ID, len(out.Anomalies))
	for _, a := range out.Anomalies {
		fmt.Printf("  %s: %s\n", a.SpaceName, a.Reason)
	}
	return nil
}

var migrateLocationID string

var migrateCmd = &cobra.Command{
	Use:   "migrate door-reciprocals",
	Short: "Backfill door reciprocal flags on stored locations",
	Long: `One-shot migration for locations stored before doors carried the
is_reciprocal flag. For every door pair the author-declared side is
identified, the counterpart is flagged as reciprocal, and missing
reciprocals are inserted. Safe to re-run.`,
	Args: cobra.ExactArgs(1),
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateLocationID, "location", "", "migrate a single location instead of all")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if args[0] != "door-reciprocals" {
		return fmt.Errorf("unknown migration %q", args[0])
	}

	svc, err := newService()
	if err != nil {
		return err
	}

	out, err := svc.BackfillReciprocals(cmd.Context(), &canon.BackfillReciprocalsInput{
		LocationID: migrateLocationID,
	})
	if err != nil {
		return err
	}

	fmt.Printf("migrated %d location(s), %d door anomalies\n", out.Migrated, len(out.Anomalies))
	for _, a := range out.Anomalies {
		fmt.Printf("  %s: %s\n", a.SpaceName, a.Reason)
	}
	return nil
}
