package anticheat

import (
	"testing"
	"time"

	"github.com/mark3labs/assassin-core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAt(lat, lng, accuracy float64, t time.Time) Sample {
	return Sample{
		Coordinate: domain.Coordinate{Latitude: lat, Longitude: lng},
		Accuracy:   accuracy,
		Timestamp:  t,
	}
}

func TestValidateFirstSampleAlwaysAccepted(t *testing.T) {
	v := New(100, 100)
	res, err := v.Validate("p1", sampleAt(40.5, -79.5, 10, time.Now()))
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Violations)
}

func TestValidateFlagsLowAccuracy(t *testing.T) {
	v := New(100, 100)
	res, err := v.Validate("p1", sampleAt(40.5, -79.5, 150, time.Now()))
	require.NoError(t, err)
	assert.True(t, res.Valid)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, ViolationLowAccuracy, res.Violations[0].Type)
}

func TestValidateRejectsTeleport(t *testing.T) {
	v := New(100, 100)
	start := time.Now()
	_, err := v.Validate("p1", sampleAt(40.5, -79.5, 5, start))
	require.NoError(t, err)

	_, err = v.Validate("p1", sampleAt(41.5, -79.5, 5, start.Add(1*time.Second)))
	require.Error(t, err)
}

func TestValidateFlagsElevatedSpeedWithoutRejecting(t *testing.T) {
	v := New(100, 100)
	start := time.Now()
	_, err := v.Validate("p1", sampleAt(40.5, -79.5, 5, start))
	require.NoError(t, err)

	// ~200m in 4 seconds is well over 150km/h but under 300km/h.
	res, err := v.Validate("p1", sampleAt(40.5018, -79.5, 5, start.Add(4*time.Second)))
	require.NoError(t, err)
	assert.True(t, res.Valid)
	require.NotEmpty(t, res.Violations)
	assert.Equal(t, ViolationElevatedSpeed, res.Violations[0].Type)
}

func TestValidateFlagsClockSkewWithoutRejecting(t *testing.T) {
	v := New(100, 100)
	start := time.Now()
	_, err := v.Validate("p1", sampleAt(40.5, -79.5, 5, start))
	require.NoError(t, err)

	res, err := v.Validate("p1", sampleAt(40.5, -79.5, 5, start.Add(-30*time.Second)))
	require.NoError(t, err)
	var found bool
	for _, viol := range res.Violations {
		if viol.Type == ViolationClockSkew {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateFlagsFingerprintChurn(t *testing.T) {
	v := New(100, 100)
	now := time.Now()
	for i, fp := range []string{"a", "b", "c", "d"} {
		s := sampleAt(40.5, -79.5, 5, now.Add(time.Duration(i)*time.Second))
		s.Fingerprint = fp
		_, err := v.Validate("p1", s)
		require.NoError(t, err)
	}

	s := sampleAt(40.5, -79.5, 5, now.Add(5*time.Second))
	s.Fingerprint = "e"
	res, err := v.Validate("p1", s)
	require.NoError(t, err)
	var found bool
	for _, viol := range res.Violations {
		if viol.Type == ViolationFingerprint {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAllowSubmissionRateLimits(t *testing.T) {
	v := New(1, 1)
	assert.True(t, v.AllowSubmission("p1"))
	assert.False(t, v.AllowSubmission("p1"))
}

func TestShouldFlagSessionBand(t *testing.T) {
	assert.False(t, ShouldFlagSession(LocationValidationResult{Violations: []Violation{{Severity: 5}}}))
	assert.True(t, ShouldFlagSession(LocationValidationResult{Violations: []Violation{{Severity: 7}}}))
	assert.False(t, ShouldFlagSession(LocationValidationResult{Violations: []Violation{{Severity: 9}}}))
}
