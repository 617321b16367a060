package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	v1 "github.com/headcount-lab/headcount/internal/api/v1"
	"github.com/headcount-lab/headcount/internal/core/demographics"
	httperr "github.com/headcount-lab/headcount/internal/core/errors"
	"github.com/headcount-lab/headcount/internal/core/storage"
	storagemocks "github.com/headcount-lab/headcount/internal/mocks/storage"
)

const detailedPayload = `{
	"timestamp": "2024-05-14T09:31:00Z",
	"detections": {
		"male":   {"0-9": 0, "10-19": 1, "20-29": 3, "30-39": 0, "40-49": 0, "50+": 0},
		"female": {"0-9": 0, "10-19": 0, "20-29": 2, "30-39": 0, "40-49": 0, "50+": 1}
	}
}`

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) InvalidateAll() { c.calls++ }

func newRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc.RegisterRoutes(r)
	return r
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/detections", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestIngestHandler_DetailedSuccess(t *testing.T) {
	mockStore := storagemocks.NewRawEventStore(t)
	mockStore.EXPECT().
		SaveRawEvent(mock.Anything, mock.MatchedBy(func(e *demographics.RawEvent) bool {
			return e.Timestamp.Equal(time.Date(2024, 5, 14, 9, 31, 0, 0, time.UTC)) &&
				e.Buckets.Get(demographics.Male, 2) == 3 &&
				e.Buckets.Get(demographics.Female, 5) == 1
		})).
		RunAndReturn(func(_ context.Context, e *demographics.RawEvent) error {
			e.ID = 17
			return nil
		}).
		Once()

	inv := &countingInvalidator{}
	resp := post(newRouter(NewService(mockStore, inv, 1)), detailedPayload)

	require.Equal(t, http.StatusCreated, resp.Code)
	var result IngestResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.Equal(t, "success", result.Status)
	assert.Equal(t, msgDetailedStored, result.Message)
	assert.Equal(t, int64(17), result.Data.ID)
	assert.Equal(t, int64(4), result.Data.MaleCount)
	assert.Equal(t, int64(3), result.Data.FemaleCount)
	assert.Equal(t, int64(7), result.Data.TotalCount)
	assert.Equal(t, int64(3), result.Data.Demographics.Male["20-29"])
	assert.Equal(t, 1, inv.calls)
}

func TestIngestHandler_SimpleSuccess(t *testing.T) {
	mockStore := storagemocks.NewRawEventStore(t)
	mockStore.EXPECT().
		SaveRawEvent(mock.Anything, mock.MatchedBy(func(e *demographics.RawEvent) bool {
			return e.Buckets.Get(demographics.Male, 2) == 4 && e.Buckets.Get(demographics.Female, 2) == 3
		})).
		Return(nil).
		Once()

	resp := post(newRouter(NewService(mockStore, nil, 1)),
		`{"timestamp":"2024-05-14T09:31:00Z","detections":{"male":4,"female":3}}`)

	require.Equal(t, http.StatusCreated, resp.Code)
	var result IngestResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.Equal(t, msgSimpleStored, result.Message)
	assert.Equal(t, int64(7), result.Data.TotalCount)
}

func TestIngestHandler_Rejections(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		expectedCode int
		expectedType string
	}{
		{
			name:         "malformed json",
			body:         "not json",
			expectedCode: http.StatusBadRequest,
			expectedType: httperr.HttpInvalidJsonError,
		},
		{
			name:         "missing female key",
			body:         `{"timestamp":"2024-05-14T09:31:00Z","detections":{"male":4}}`,
			expectedCode: http.StatusBadRequest,
			expectedType: httperr.HttpValidationError,
		},
		{
			name:         "mixed forms",
			body:         `{"timestamp":"2024-05-14T09:31:00Z","detections":{"male":4,"female":{"0-9":1}}}`,
			expectedCode: http.StatusBadRequest,
			expectedType: httperr.HttpInvalidPayloadError,
		},
		{
			name:         "negative count",
			body:         `{"timestamp":"2024-05-14T09:31:00Z","detections":{"male":-2,"female":1}}`,
			expectedCode: http.StatusBadRequest,
			expectedType: httperr.HttpValidationError,
		},
		{
			name:         "missing timestamp",
			body:         `{"detections":{"male":1,"female":1}}`,
			expectedCode: http.StatusBadRequest,
			expectedType: httperr.HttpValidationError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockStore := storagemocks.NewRawEventStore(t)
			inv := &countingInvalidator{}
			resp := post(newRouter(NewService(mockStore, inv, 1)), tc.body)

			require.Equal(t, tc.expectedCode, resp.Code)
			var errResp httperr.ErrorResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
			assert.Equal(t, tc.expectedType, errResp.ErrorType)
			assert.Zero(t, inv.calls)
		})
	}
}

func TestIngestHandler_RejectionNamesNonIntegerBands(t *testing.T) {
	mockStore := storagemocks.NewRawEventStore(t)
	body := strings.Replace(detailedPayload, `"30-39": 0, "40-49": 0, "50+": 1`, `"30-39": "a", "40-49": 0, "50+": 1.5`, 1)
	resp := post(newRouter(NewService(mockStore, nil, 1)), body)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	assert.Equal(t, httperr.HttpValidationError, errResp.ErrorType)
	assert.Contains(t, errResp.Message, "female counts must be integers: 30-39, 50+")
}

func TestIngestHandler_OversizedBody(t *testing.T) {
	mockStore := storagemocks.NewRawEventStore(t)
	svc := NewService(mockStore, nil, 1)

	body := `{"timestamp":"2024-05-14T09:31:00Z","pad":"` + strings.Repeat("x", 1024*1024) + `"}`
	resp := post(newRouter(svc), body)

	require.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
}

func TestIngestHandler_StoreFailures(t *testing.T) {
	tests := []struct {
		name         string
		storeErr     error
		expectedCode int
		expectedType string
	}{
		{"transient", fmt.Errorf("save: %w", storage.ErrTransient), http.StatusServiceUnavailable, httperr.HttpTransientStoreError},
		{"permanent", errors.New("disk full"), http.StatusInternalServerError, httperr.HttpInternalError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockStore := storagemocks.NewRawEventStore(t)
			mockStore.EXPECT().SaveRawEvent(mock.Anything, mock.Anything).Return(tc.storeErr).Once()

			inv := &countingInvalidator{}
			resp := post(newRouter(NewService(mockStore, inv, 1)), detailedPayload)

			require.Equal(t, tc.expectedCode, resp.Code)
			var errResp httperr.ErrorResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
			assert.Equal(t, tc.expectedType, errResp.ErrorType)
			assert.Zero(t, inv.calls)
		})
	}
}

func TestListRecentHandler_NewestFirst(t *testing.T) {
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

	var older, newer demographics.Buckets
	older.Set(demographics.Male, 0, 1)
	newer.Set(demographics.Female, 1, 2)

	mockStore := storagemocks.NewRawEventStore(t)
	mockStore.EXPECT().
		ListRawEvents(mock.Anything, now.Add(-24*time.Hour), now.Add(time.Millisecond)).
		Return([]demographics.RawEvent{
			{ID: 1, Timestamp: now.Add(-3 * time.Hour), Buckets: older},
			{ID: 2, Timestamp: now.Add(-time.Minute), Buckets: newer},
		}, nil).
		Once()

	svc := NewService(mockStore, nil, 1)
	svc.nowFn = func() time.Time { return now }

	req := httptest.NewRequest(http.MethodGet, "/v1/detections", nil)
	resp := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var records []v1.DetectionRecord
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, int64(2), records[0].ID)
	assert.Equal(t, int64(2), records[0].FemaleCount)
	assert.Equal(t, int64(1), records[1].ID)
}
