package v1

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/headcount-lab/headcount/internal/core/demographics"
)

func TestDetection_Validation(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr error
		form    string
	}{
		{
			name: "detailed form",
			payload: `{"timestamp":"2024-05-14T09:31:00Z","detections":{
				"male":{"0-9":0,"10-19":1,"20-29":3,"30-39":0,"40-49":0,"50+":0},
				"female":{"0-9":0,"10-19":0,"20-29":2,"30-39":0,"40-49":0,"50+":1}}}`,
			form: FormDetailed,
		},
		{
			name:    "simple form",
			payload: `{"timestamp":"2024-05-14T09:31:00Z","detections":{"male":4,"female":3}}`,
			form:    FormSimple,
		},
		{
			name:    "missing timestamp",
			payload: `{"detections":{"male":4,"female":3}}`,
			wantErr: ErrValidation,
		},
		{
			name:    "missing female",
			payload: `{"timestamp":"2024-05-14T09:31:00Z","detections":{"male":4}}`,
			wantErr: ErrValidation,
		},
		{
			name: "mixed forms",
			payload: `{"timestamp":"2024-05-14T09:31:00Z","detections":{
				"male":4,
				"female":{"0-9":0,"10-19":0,"20-29":2,"30-39":0,"40-49":0,"50+":1}}}`,
			wantErr: ErrInvalidPayloadFormat,
		},
		{
			name:    "string counts",
			payload: `{"timestamp":"2024-05-14T09:31:00Z","detections":{"male":"4","female":"3"}}`,
			wantErr: ErrInvalidPayloadFormat,
		},
		{
			name: "detailed form missing a band",
			payload: `{"timestamp":"2024-05-14T09:31:00Z","detections":{
				"male":{"0-9":0,"10-19":1,"20-29":3,"30-39":0,"40-49":0},
				"female":{"0-9":0,"10-19":0,"20-29":2,"30-39":0,"40-49":0,"50+":1}}}`,
			wantErr: ErrValidation,
		},
		{
			name: "detailed form with fractional count",
			payload: `{"timestamp":"2024-05-14T09:31:00Z","detections":{
				"male":{"0-9":0.5,"10-19":1,"20-29":3,"30-39":0,"40-49":0,"50+":0},
				"female":{"0-9":0,"10-19":0,"20-29":2,"30-39":0,"40-49":0,"50+":1}}}`,
			wantErr: ErrValidation,
		},
		{
			name:    "negative simple count",
			payload: `{"timestamp":"2024-05-14T09:31:00Z","detections":{"male":-1,"female":3}}`,
			wantErr: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Detection
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &d))

			err := d.Validate()
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.form, d.Form())
		})
	}
}

func TestDetection_ValidationNamesOffendingBands(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		message string
	}{
		{
			name: "non-integer values are listed",
			payload: `{"timestamp":"2024-05-14T09:31:00Z","detections":{
				"male":{"0-9":0,"10-19":1,"20-29":3,"30-39":0,"40-49":0,"50+":0},
				"female":{"0-9":0,"10-19":"two","20-29":2,"30-39":0,"40-49":0.5,"50+":1}}}`,
			message: "female counts must be integers: 10-19, 40-49",
		},
		{
			name: "missing band",
			payload: `{"timestamp":"2024-05-14T09:31:00Z","detections":{
				"male":{"0-9":0,"10-19":1,"20-29":3,"30-39":0,"40-49":0},
				"female":{"0-9":0,"10-19":0,"20-29":2,"30-39":0,"40-49":0,"50+":1}}}`,
			message: "male 50+ is missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Detection
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &d))

			err := d.Validate()
			require.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestDetection_UnknownBandsAreIgnored(t *testing.T) {
	payload := `{"timestamp":"2024-05-14T09:31:00Z","detections":{
		"male":{"0-9":0,"10-19":1,"20-29":3,"30-39":0,"40-49":0,"50+":0,"60+":7,"70+":"x"},
		"female":{"0-9":0,"10-19":0,"20-29":2,"30-39":0,"40-49":0,"50+":1}}}`

	var d Detection
	require.NoError(t, json.Unmarshal([]byte(payload), &d))
	require.NoError(t, d.Validate())
	assert.Equal(t, int64(4), d.Buckets().Male())
}

func TestDetection_SimpleFormLandsInTwentiesBand(t *testing.T) {
	d := Detection{
		Timestamp:  time.Date(2024, 5, 14, 9, 31, 0, 0, time.UTC),
		Detections: Detections{Male: SimpleCounts(4), Female: SimpleCounts(3)},
	}
	require.NoError(t, d.Validate())

	b := d.Buckets()
	assert.Equal(t, int64(4), b.Get(demographics.Male, 2))
	assert.Equal(t, int64(3), b.Get(demographics.Female, 2))
	assert.Equal(t, int64(7), b.Total())
}

func TestDetection_DetailedFormMapsBands(t *testing.T) {
	d := Detection{
		Timestamp: time.Date(2024, 5, 14, 9, 31, 0, 0, time.UTC),
		Detections: Detections{
			Male:   DetailedCounts(map[string]int64{"0-9": 1, "10-19": 0, "20-29": 0, "30-39": 0, "40-49": 0, "50+": 5}),
			Female: DetailedCounts(map[string]int64{"0-9": 0, "10-19": 2, "20-29": 0, "30-39": 0, "40-49": 0, "50+": 0, "60+": 9}),
		},
	}
	require.NoError(t, d.Validate())

	b := d.Buckets()
	assert.Equal(t, int64(1), b.Get(demographics.Male, 0))
	assert.Equal(t, int64(5), b.Get(demographics.Male, 5))
	assert.Equal(t, int64(2), b.Get(demographics.Female, 1))
	assert.Equal(t, int64(8), b.Total())
}

func TestGenderCounts_MarshalRoundTrip(t *testing.T) {
	body, err := json.Marshal(Detections{Male: SimpleCounts(4), Female: DetailedCounts(map[string]int64{"0-9": 1})})
	require.NoError(t, err)
	assert.JSONEq(t, `{"male":4,"female":{"0-9":1}}`, string(body))
}

func TestNewMonthlyRollupRecord(t *testing.T) {
	var b demographics.Buckets
	b.Set(demographics.Female, 3, 12)

	rec := NewMonthlyRollupRecord(demographics.MonthlyRollup{Year: 2024, Month: time.May, Buckets: b})
	assert.Equal(t, "May", rec.MonthName)
	assert.Equal(t, 5, rec.Month)
	assert.Equal(t, int64(12), rec.FemaleCount)
	assert.Equal(t, int64(12), rec.Demographics.Female["30-39"])
}
