package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/receipt-atlas/internal/cli"
	"github.com/Veraticus/receipt-atlas/internal/common"
	"github.com/Veraticus/receipt-atlas/internal/model"
	"github.com/Veraticus/receipt-atlas/internal/spending"
)

var summaries = map[string]struct {
	build func([]model.Receipt) spending.Summary
	title string
}{
	"year":  {build: spending.ByYear, title: "Spending by year"},
	"week":  {build: spending.ByWeekday, title: "Spending by day of week"},
	"month": {build: spending.ByMonth, title: "Spending by month"},
}

func spendingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spending",
		Short: "Summarize spend over calendar periods",
		Long: `Total receipt spend (price × quantity) per year, per day of the week or
per month of the year, or for one day with --date. --insights shows spend
per store, category share, basket sizes and stays away from the home city.`,
		RunE: runSpending,
	}

	cmd.Flags().String("by", "month", "Grouping: year, week or month")
	cmd.Flags().String("date", "", "Total for a single day (YYYY-MM-DD)")
	cmd.Flags().Bool("insights", false, "Show the spending insights dashboard")
	cmd.Flags().Bool("json", false, "Print the summary as JSON")

	return cmd
}

func runSpending(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	by, _ := cmd.Flags().GetString("by")
	date, _ := cmd.Flags().GetString("date")
	insights, _ := cmd.Flags().GetBool("insights")
	asJSON, _ := cmd.Flags().GetBool("json")

	summary, ok := summaries[by]
	if !ok && date == "" && !insights {
		return common.NewUserError(fmt.Sprintf("unknown grouping %q, use year, week or month", by), common.ErrInvalidConfig)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	receipts, err := store.ListReceipts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load receipts: %w", err)
	}

	if insights {
		in := spending.BuildInsights(receipts)
		if asJSON {
			return writeIndentedJSON(out, in)
		}
		return cli.WriteInsights(out, in)
	}

	if date != "" {
		total, totalErr := spending.TotalOnDate(receipts, date)
		if totalErr != nil {
			return common.NewUserError("invalid --date", totalErr)
		}
		if asJSON {
			return writeIndentedJSON(out, total)
		}
		_, err = fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Spent %s on %s", total.Total.StringFixed(2), total.Date)))
		return err
	}

	result := summary.build(receipts)
	if asJSON {
		return writeIndentedJSON(out, result)
	}
	return cli.WriteSpending(out, summary.title, result)
}
