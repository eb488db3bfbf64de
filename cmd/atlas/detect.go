package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/receipt-atlas/internal/cli"
	"github.com/Veraticus/receipt-atlas/internal/common"
	"github.com/Veraticus/receipt-atlas/internal/export"
)

func detectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect home, work and vacation locations",
		Long: `Group the stored receipts by location and assign the home, work and
vacation roles. Thresholds and weights come from the inference section of
the config file.`,
		RunE: runDetect,
	}

	cmd.Flags().Int("top", 3, "Number of ranked candidates to show per role (0 hides them)")
	cmd.Flags().Bool("save", false, "Record this run in the detection history")
	cmd.Flags().Bool("history", false, "List saved detection runs instead of detecting")
	cmd.Flags().Int("limit", 10, "Number of runs to list with --history")
	cmd.Flags().Bool("json", false, "Print the detection as JSON")

	return cmd
}

func runDetect(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if history, _ := cmd.Flags().GetBool("history"); history {
		limit, _ := cmd.Flags().GetInt("limit")
		runs, listErr := store.ListDetectionRuns(ctx, limit)
		if listErr != nil {
			return fmt.Errorf("failed to list detection runs: %w", listErr)
		}
		return cli.WriteRuns(out, runs)
	}

	eng, err := initEngine(store)
	if err != nil {
		return err
	}

	run, err := eng.Detect(ctx)
	if err != nil {
		return err
	}
	if run.ReceiptCount == 0 {
		return common.NewUserError("no receipts to analyze, run 'atlas import <file>' first", common.ErrNoReceipts)
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		if err := eng.Save(ctx, run); err != nil {
			return err
		}
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeIndentedJSON(out, export.Build(run.Set, run.Report.Result).Detection)
	}

	top, _ := cmd.Flags().GetInt("top")
	return cli.WriteDetection(out, run, top)
}
