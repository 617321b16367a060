package aggregation

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	httperr "github.com/headcount-lab/headcount/internal/core/errors"
	"github.com/headcount-lab/headcount/internal/core/storage"
)

// Trigger exposes manual rollup runs over HTTP.
type Trigger struct {
	aggregator *Aggregator
	scheduler  *Scheduler
}

// NewTrigger wires the trigger endpoint. scheduler may be nil, in which case
// async requests run synchronously.
func NewTrigger(aggregator *Aggregator, scheduler *Scheduler) *Trigger {
	if aggregator == nil {
		panic("aggregation: aggregator must not be nil")
	}
	return &Trigger{aggregator: aggregator, scheduler: scheduler}
}

// RegisterRoutes registers the aggregation routes.
func (t *Trigger) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/aggregation/trigger", t.HandleTrigger)
}

// TriggerStats is the stats block of a trigger response.
type TriggerStats struct {
	DetectionRecords      int64    `json:"detection_records"`
	Unaggregated          *int64   `json:"unaggregated_records,omitempty"`
	Processed             *int64   `json:"processed_records,omitempty"`
	RemainingUnaggregated *int64   `json:"remaining_unaggregated,omitempty"`
	DailyCreated          *int64   `json:"daily_aggregations_created,omitempty"`
	MonthlyCreated        *int64   `json:"monthly_aggregations_created,omitempty"`
	TotalDaily            int64    `json:"total_daily_aggregations"`
	TotalMonthly          int64    `json:"total_monthly_aggregations"`
	ElapsedSeconds        *float64 `json:"processing_time_seconds,omitempty"`
}

// TriggerResponse is the body of POST /v1/aggregation/trigger.
type TriggerResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	RunID   string        `json:"run_id,omitempty"`
	Stats   *TriggerStats `json:"stats,omitempty"`
}

// HandleTrigger handles POST /v1/aggregation/trigger
// Query parameters: force (rebuild all rollups), async (queue on the scheduler)
func (t *Trigger) HandleTrigger(c *gin.Context) {
	force, _ := strconv.ParseBool(c.Query("force"))
	async, _ := strconv.ParseBool(c.Query("async"))

	if async && !force && t.scheduler != nil {
		queued := t.scheduler.TriggerNow()
		c.JSON(http.StatusAccepted, TriggerResponse{
			Success: true,
			Message: queuedMessage(queued),
		})
		return
	}

	run := t.aggregator.Run
	if force {
		run = t.aggregator.Rebuild
	}

	result, err := run(c.Request.Context())
	if err != nil {
		slog.Error("[Aggregator] Manual trigger failed", "force", force, "error", err)
		writeRunError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewTriggerResponse(result))
}

// NewTriggerResponse renders a run result the way the trigger endpoint
// reports it: a short summary when there was nothing to fold, the full
// counters otherwise.
func NewTriggerResponse(r RunResult) TriggerResponse {
	if r.NoData() {
		zero := int64(0)
		return TriggerResponse{
			Success: true,
			Message: "No unaggregated data found. All detection data has already been aggregated.",
			RunID:   r.RunID.String(),
			Stats: &TriggerStats{
				DetectionRecords: r.DetectionRecords,
				Unaggregated:     &zero,
				TotalDaily:       r.TotalDaily,
				TotalMonthly:     r.TotalMonthly,
			},
		}
	}

	return TriggerResponse{
		Success: true,
		Message: fmt.Sprintf("Successfully aggregated %d records in %.2f seconds", r.Processed, r.ElapsedSeconds),
		RunID:   r.RunID.String(),
		Stats: &TriggerStats{
			DetectionRecords:      r.DetectionRecords,
			Processed:             &r.Processed,
			RemainingUnaggregated: &r.RemainingUnaggregated,
			DailyCreated:          &r.DailyCreated,
			MonthlyCreated:        &r.MonthlyCreated,
			TotalDaily:            r.TotalDaily,
			TotalMonthly:          r.TotalMonthly,
			ElapsedSeconds:        &r.ElapsedSeconds,
		},
	}
}

// writeRunError reports a failed run without exposing store or driver text.
// The full error is in the log under the run id.
func writeRunError(c *gin.Context, err error) {
	resp := httperr.ErrorResponse{
		ErrorType: httperr.HttpAggregationFailure,
		Message:   "Aggregation failed",
	}
	code := http.StatusInternalServerError

	if errors.Is(err, storage.ErrTransient) {
		resp.ErrorType = httperr.HttpTransientStoreError
		resp.Message = "Aggregation failed: data store temporarily unavailable"
		code = http.StatusServiceUnavailable
	}

	var runErr *Error
	if errors.As(err, &runErr) {
		resp.Details = gin.H{"run_id": runErr.RunID.String(), "step": runErr.Op}
	}
	c.JSON(code, resp)
}

func queuedMessage(queued bool) string {
	if queued {
		return "Aggregation run queued"
	}
	return "Aggregation run already pending"
}
