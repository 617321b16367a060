package projection

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	v1 "github.com/headcount-lab/headcount/internal/api/v1"
	"github.com/headcount-lab/headcount/internal/core/demographics"
	httperr "github.com/headcount-lab/headcount/internal/core/errors"
	"github.com/headcount-lab/headcount/internal/core/storage"
	"github.com/headcount-lab/headcount/internal/core/tier"
)

// RegisterRoutes registers all query API routes on the given router.
// allowTestDate enables the test_date override on today stats.
func (s *Service) RegisterRoutes(r gin.IRouter, allowTestDate bool) {
	r.GET("/v1/stats/today", s.todayHandler(allowTestDate))
	r.GET("/v1/stats/range/:start/:end", s.HandleRangeStats)
	r.GET("/v1/rollups/daily", s.HandleListDaily)
	r.GET("/v1/rollups/monthly", s.HandleListMonthly)
}

func (s *Service) todayHandler(allowTestDate bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := TodayQuery{
			IncludeDemographics: queryBool(c, "include_demographics"),
			NoCache:             queryBool(c, "no_cache"),
		}

		if raw := c.Query("test_date"); raw != "" && allowTestDate {
			d, err := parseDate(raw)
			if err != nil {
				writeQueryError(c, err)
				return
			}
			q.Date = d
			q.NoCache = true
		}

		resp, err := s.GetTodayStats(c.Request.Context(), q)
		if err != nil {
			writeQueryError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// HandleRangeStats handles GET /v1/stats/range/:start/:end
// Query parameters: include_demographics, no_cache
func (s *Service) HandleRangeStats(c *gin.Context) {
	start, err := parseDate(c.Param("start"))
	if err != nil {
		writeQueryError(c, err)
		return
	}
	end, err := parseDate(c.Param("end"))
	if err != nil {
		writeQueryError(c, err)
		return
	}

	resp, err := s.GetRangeStats(c.Request.Context(), RangeQuery{
		Start:               start,
		End:                 end,
		IncludeDemographics: queryBool(c, "include_demographics"),
		NoCache:             queryBool(c, "no_cache"),
	})
	if err != nil {
		writeQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleListDaily handles GET /v1/rollups/daily
// Query parameters: start_date, end_date, limit (default 30)
func (s *Service) HandleListDaily(c *gin.Context) {
	q := DailyListQuery{Limit: queryLimit(c, DefaultDailyLimit)}

	var err error
	if raw := c.Query("start_date"); raw != "" {
		if q.Start, err = parseDate(raw); err != nil {
			writeQueryError(c, err)
			return
		}
	}
	if raw := c.Query("end_date"); raw != "" {
		if q.End, err = parseDate(raw); err != nil {
			writeQueryError(c, err)
			return
		}
	}

	rollups, err := s.ListDailyRollups(c.Request.Context(), q)
	if err != nil {
		writeQueryError(c, err)
		return
	}

	records := make([]v1.DailyRollupRecord, 0, len(rollups))
	for _, r := range rollups {
		records = append(records, v1.NewDailyRollupRecord(r))
	}
	c.JSON(http.StatusOK, records)
}

// HandleListMonthly handles GET /v1/rollups/monthly
// Query parameters: start_year, start_month, end_year, end_month, limit (default 12)
func (s *Service) HandleListMonthly(c *gin.Context) {
	q := MonthlyListQuery{Limit: queryLimit(c, DefaultMonthlyLimit)}

	var err error
	if q.Start, err = parseMonth(c.Query("start_year"), c.Query("start_month")); err != nil {
		writeQueryError(c, err)
		return
	}
	if q.End, err = parseMonth(c.Query("end_year"), c.Query("end_month")); err != nil {
		writeQueryError(c, err)
		return
	}

	rollups, err := s.ListMonthlyRollups(c.Request.Context(), q)
	if err != nil {
		writeQueryError(c, err)
		return
	}

	records := make([]v1.MonthlyRollupRecord, 0, len(rollups))
	for _, r := range rollups {
		records = append(records, v1.NewMonthlyRollupRecord(r))
	}
	c.JSON(http.StatusOK, records)
}

func writeQueryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidDateFormat):
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidDateFormatError,
			Message:   "Invalid date format. Use YYYY-MM-DD",
			Details:   err.Error(),
		})
	case errors.Is(err, tier.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRangeError,
			Message:   "End date must not be before start date",
			Details:   err.Error(),
		})
	case errors.Is(err, storage.ErrTransient):
		c.JSON(http.StatusServiceUnavailable, httperr.ErrorResponse{
			ErrorType: httperr.HttpTransientStoreError,
			Message:   "Data store temporarily unavailable",
			Details:   err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to query statistics",
			Details:   err.Error(),
		})
	}
}

func parseDate(raw string) (time.Time, error) {
	t, err := time.Parse(demographics.DayLayout, raw)
	if err != nil {
		return time.Time{}, invalidDatef("%q is not a YYYY-MM-DD date", raw)
	}
	return t, nil
}

// parseMonth turns a year/month pair into the first of that month. Both
// empty means unbounded; one without the other is ignored.
func parseMonth(year, month string) (time.Time, error) {
	if year == "" || month == "" {
		return time.Time{}, nil
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, invalidDatef("invalid year %q", year)
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return time.Time{}, invalidDatef("invalid month %q", month)
	}
	return time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC), nil
}

// queryLimit falls back to def when limit is missing or not a positive integer.
func queryLimit(c *gin.Context, def int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func queryBool(c *gin.Context, name string) bool {
	b, _ := strconv.ParseBool(c.Query(name))
	return b
}

func invalidDatef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidDateFormat, fmt.Sprintf(format, args...))
}
