// Package engine runs location inference over a snapshot of receipts.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/receipt-atlas/internal/cluster"
	"github.com/Veraticus/receipt-atlas/internal/model"
	"github.com/Veraticus/receipt-atlas/internal/roles"
)

// LocationEngine loads receipts and classifies their locations.
type LocationEngine struct {
	source ReceiptSource
	runs   RunRecorder
	now    func() time.Time
	params roles.Params
}

// Run is the complete outcome of one inference run. Runs share no state.
type Run struct {
	CreatedAt    time.Time
	Set          *cluster.Set
	Report       *roles.Report
	ID           string
	Params       roles.Params
	ReceiptCount int
}

// New creates an engine reading receipts from source. runs may be nil when
// detection history is not kept.
func New(source ReceiptSource, runs RunRecorder, params roles.Params) (*LocationEngine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &LocationEngine{
		source: source,
		runs:   runs,
		params: params,
		now:    time.Now,
	}, nil
}

// Detect loads the current receipts and runs inference over them.
func (e *LocationEngine) Detect(ctx context.Context) (*Run, error) {
	records, err := e.source.ListReceipts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load receipts: %w", err)
	}

	run, err := Analyze(records, e.params)
	if err != nil {
		return nil, err
	}
	run.CreatedAt = e.now()

	slog.Info("Location inference complete",
		"run_id", run.ID,
		"receipts", run.ReceiptCount,
		"clusters", run.Set.Len(),
		"skipped", run.Set.Skipped,
		"home", keyOf(run.Report.Result.Home),
		"work", keyOf(run.Report.Result.Work),
		"vacation", keyOf(run.Report.Result.Vacation))

	return run, nil
}

// Save records the run's summary in the detection history.
func (e *LocationEngine) Save(ctx context.Context, run *Run) error {
	if e.runs == nil {
		return fmt.Errorf("no run recorder configured")
	}
	summary, err := run.Summary()
	if err != nil {
		return err
	}
	if err := e.runs.SaveDetectionRun(ctx, summary); err != nil {
		return fmt.Errorf("failed to save detection run: %w", err)
	}
	return nil
}

// Analyze aggregates records and classifies the resulting clusters. It is
// pure apart from debug logging.
func Analyze(records []model.Receipt, params roles.Params) (*Run, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	set := cluster.NewAggregator(params.CoordinatePrecision).Aggregate(records)
	report, err := roles.NewClassifier(params).Classify(set)
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}

	return &Run{
		ID:           uuid.New().String(),
		CreatedAt:    time.Now(),
		Set:          set,
		Report:       report,
		Params:       params,
		ReceiptCount: len(records),
	}, nil
}

// Summary flattens the run for persistence.
func (r *Run) Summary() (*model.DetectionRun, error) {
	params, err := json.Marshal(r.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode params: %w", err)
	}
	return &model.DetectionRun{
		ID:           r.ID,
		CreatedAt:    r.CreatedAt,
		ReceiptCount: r.ReceiptCount,
		ClusterCount: r.Set.Len(),
		Skipped:      r.Set.Skipped,
		HomeKey:      keyOf(r.Report.Result.Home),
		WorkKey:      keyOf(r.Report.Result.Work),
		VacationKey:  keyOf(r.Report.Result.Vacation),
		ParamsJSON:   string(params),
	}, nil
}

func keyOf(c *model.LocationCluster) string {
	if c == nil {
		return ""
	}
	return c.Key
}
