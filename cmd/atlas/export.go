package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/receipt-atlas/internal/cli"
	"github.com/Veraticus/receipt-atlas/internal/common"
	"github.com/Veraticus/receipt-atlas/internal/export"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export locations and detected roles",
		Long: `Run detection and write the result for a map view: every location with
its spend, visit dates and role, plus the raw receipts per location.`,
		RunE: runExport,
	}

	cmd.Flags().StringP("format", "f", "json", "Output format: json or geojson")
	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	if format != "json" && format != "geojson" {
		return common.NewUserError(fmt.Sprintf("unknown format %q, use json or geojson", format), common.ErrInvalidConfig)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	eng, err := initEngine(store)
	if err != nil {
		return err
	}

	run, err := eng.Detect(ctx)
	if err != nil {
		return err
	}
	result := export.Build(run.Set, run.Report.Result)

	data, err := encodeExport(result, format)
	if err != nil {
		return err
	}

	if output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(output, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess(fmt.Sprintf("Wrote %d locations to %s", len(result.Clusters), output)))
	return nil
}

func encodeExport(result *export.Result, format string) ([]byte, error) {
	if format == "geojson" {
		raw, err := result.GeoJSON()
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return nil, fmt.Errorf("failed to format geojson: %w", err)
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	}

	var buf bytes.Buffer
	if err := writeIndentedJSON(&buf, result); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}
