package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/receipt-atlas/internal/engine"
	"github.com/Veraticus/receipt-atlas/internal/model"
	"github.com/Veraticus/receipt-atlas/internal/spending"
)

// WriteDetection prints the detected roles followed by the top candidates
// of each scorer.
func WriteDetection(w io.Writer, run *engine.Run, top int) error {
	result := run.Report.Result

	var lines []string
	for _, role := range model.Roles {
		lines = append(lines, roleLine(role, result.Get(role), run.Report.Candidates[role]))
	}
	lines = append(lines, "", SubtleStyle.Render(fmt.Sprintf(
		"%d receipts, %d locations, %d skipped · run %s",
		run.ReceiptCount, run.Set.Len(), run.Set.Skipped, run.ID)))

	if _, err := fmt.Fprintln(w, RenderBox(AtlasIcon+"  Location roles", strings.Join(lines, "\n"))); err != nil {
		return fmt.Errorf("failed to write detection: %w", err)
	}

	if top <= 0 {
		return nil
	}

	for _, role := range model.Roles {
		candidates := run.Report.Candidates[role]
		if len(candidates) == 0 {
			continue
		}
		if len(candidates) > top {
			candidates = candidates[:top]
		}
		if err := writeCandidates(w, role, candidates); err != nil {
			return err
		}
	}
	return nil
}

func roleLine(role model.Role, c *model.LocationCluster, candidates []model.ScoredCandidate) string {
	label := RoleStyle(role).Render(fmt.Sprintf("%s %-9s", roleIcons[role], roleTitle(role)))
	if c == nil {
		return label + SubtleStyle.Render("not detected")
	}

	score := ""
	for _, cand := range candidates {
		if cand.Cluster.Key == c.Key {
			score = fmt.Sprintf(" · score %.3f", cand.Score)
			break
		}
	}

	return fmt.Sprintf("%s%s %s", label, c.StoreName, SubtleStyle.Render(fmt.Sprintf(
		"(%s · %d visits · %s spent%s)",
		c.Key, c.VisitCount, c.TotalSpend.StringFixed(2), score)))
}

func writeCandidates(w io.Writer, role model.Role, candidates []model.ScoredCandidate) error {
	if _, err := fmt.Fprintf(w, "\n%s\n", RoleStyle(role).Render(roleTitle(role)+" candidates")); err != nil {
		return fmt.Errorf("failed to write candidates: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		HeaderStyle.Render("#"),
		HeaderStyle.Render("Store"),
		HeaderStyle.Render("Location"),
		HeaderStyle.Render("Visits"),
		HeaderStyle.Render("Score")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, cand := range candidates {
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%.3f\n",
			i+1,
			cand.Cluster.StoreName,
			cand.Cluster.Key,
			cand.Cluster.VisitCount,
			cand.Score); err != nil {
			return fmt.Errorf("failed to write candidate: %w", err)
		}
	}
	return tw.Flush()
}

// WriteRuns prints the detection history.
func WriteRuns(w io.Writer, runs []model.DetectionRun) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, FormatInfo("No saved detection runs. Use 'atlas detect --save' to record one."))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
		HeaderStyle.Render("Run"),
		HeaderStyle.Render("Created"),
		HeaderStyle.Render("Locations"),
		HeaderStyle.Render("Home"),
		HeaderStyle.Render("Work"),
		HeaderStyle.Render("Vacation")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, run := range runs {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			shortID(run.ID),
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			run.ClusterCount,
			orDash(run.HomeKey),
			orDash(run.WorkKey),
			orDash(run.VacationKey)); err != nil {
			return fmt.Errorf("failed to write run: %w", err)
		}
	}
	return tw.Flush()
}

// WriteSpending prints a spending summary as a two-column table.
func WriteSpending(w io.Writer, title string, summary spending.Summary) error {
	if _, err := fmt.Fprintln(w, FormatTitle(title)); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, b := range summary {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t\n", b.Label, b.Total.StringFixed(2)); err != nil {
			return fmt.Errorf("failed to write spending row: %w", err)
		}
	}
	if _, err := fmt.Fprintf(tw, "%s\t%s\t\n", BoldStyle.Render("Total"), summary.Total().StringFixed(2)); err != nil {
		return fmt.Errorf("failed to write spending total: %w", err)
	}
	return tw.Flush()
}

// WriteInsights prints the spending dashboard: home city, basket sizes,
// stays away from home, stores and categories.
func WriteInsights(w io.Writer, in *spending.Insights) error {
	home := SubtleStyle.Render("unknown")
	if in.HomeCity != nil {
		home = BoldStyle.Render(*in.HomeCity)
	}
	summary := fmt.Sprintf("Home city      %s\nAvg basket     %s\nMedian basket  %s",
		home, in.AvgBasket.StringFixed(2), in.MedianBasket.StringFixed(2))
	if _, err := fmt.Fprintln(w, RenderBox(AtlasIcon+"  Spending insights", summary)); err != nil {
		return fmt.Errorf("failed to write insights: %w", err)
	}

	stays := make([][]string, 0, len(in.VacationCities))
	for _, stay := range in.VacationCities {
		stays = append(stays, []string{
			stay.City, stay.Start, stay.End, fmt.Sprintf("%d (%s)", stay.Days, stay.WeekdayRange),
		})
	}
	if err := writeTable(w, "Stays away from home", []string{"City", "From", "To", "Days"}, stays); err != nil {
		return err
	}

	stores := make([][]string, 0, len(in.SpendPerStore))
	for _, s := range in.SpendPerStore {
		stores = append(stores, []string{
			s.Store, s.TopCategory, fmt.Sprint(s.Visits), s.Spend.StringFixed(2), s.AvgPerVisit.StringFixed(2),
		})
	}
	if err := writeTable(w, "Spend per store", []string{"Store", "Category", "Visits", "Spend", "Per visit"}, stores); err != nil {
		return err
	}

	categories := make([][]string, 0, len(in.CategoryShare))
	for _, c := range in.CategoryShare {
		categories = append(categories, []string{
			c.Category, c.Spend.StringFixed(2), fmt.Sprintf("%.1f%%", c.Share*100),
		})
	}
	return writeTable(w, "Category share", []string{"Category", "Spend", "Share"}, categories)
}

// writeTable prints a titled table. Empty tables print nothing.
func writeTable(w io.Writer, title string, headers []string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\n%s\n", FormatTitle(title)); err != nil {
		return fmt.Errorf("failed to write %s: %w", strings.ToLower(title), err)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	styled := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = HeaderStyle.Render(h)
	}
	if _, err := fmt.Fprintln(tw, strings.Join(styled, "\t")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return tw.Flush()
}

func roleTitle(role model.Role) string {
	s := string(role)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
