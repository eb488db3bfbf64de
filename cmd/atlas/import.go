package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Veraticus/receipt-atlas/internal/cli"
	"github.com/Veraticus/receipt-atlas/internal/common"
	"github.com/Veraticus/receipt-atlas/internal/ingest"
	"github.com/Veraticus/receipt-atlas/internal/model"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <receipts.csv>",
		Short: "Load receipts from a CSV export",
		Long: `Load geotagged receipt lines from a CSV export into the local database.

Columns are matched by header name (unit_latitude, unit_longitude, price,
quantity, fs_receipt_issue_date, org_name, ...). Lines already imported are
skipped, so the same file can be loaded twice safely.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Bool("replace", false, "Delete all previously imported receipts first")
	cmd.Flags().Bool("dry-run", false, "Read and validate the file without saving")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	replace, _ := cmd.Flags().GetBool("replace")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}

	bar := cli.NewProgress(cmd.ErrOrStderr(), -1, "Reading receipts...")
	receipts, err := ingest.ReadFile(ctx, path, func(int) { _ = bar.Add(1) })
	_ = bar.Finish()
	if err != nil {
		return common.NewUserError("could not read receipts", err)
	}

	out := cmd.OutOrStdout()
	if len(receipts) == 0 {
		fmt.Fprintln(out, cli.FormatWarning("No receipt lines found in "+filepath.Base(path)))
		return nil
	}
	if dryRun {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Read %d receipts from %s (dry run, nothing saved)", len(receipts), path)))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if replace {
		if err := store.ClearReceipts(ctx); err != nil {
			return fmt.Errorf("failed to clear receipts: %w", err)
		}
		slog.Info("Cleared previously imported receipts")
	}

	imp := &model.Import{
		ID:         uuid.New().String(),
		Source:     path,
		ImportedAt: time.Now(),
	}
	result, err := store.ImportReceipts(ctx, imp, receipts)
	if err != nil {
		return fmt.Errorf("failed to store receipts: %w", err)
	}

	slog.Info("Import complete",
		"import_id", imp.ID,
		"source", path,
		"inserted", result.Inserted,
		"duplicates", result.Duplicates)

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d receipts from %s", result.Inserted, filepath.Base(path))))
	if result.Duplicates > 0 {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%d lines were already in the database", result.Duplicates)))
	}
	return nil
}
