// Package anticheat implements per-player location plausibility checks:
// accuracy, velocity/teleport, clock-skew/replay, and fingerprint
// stability, plus a transport-level rate limiter.
//
// State is per-player and append-only (a bounded ring of recent
// samples), so no cross-player locking is required; the ring is
// guarded by a per-player mutex, and submission rate is capped with
// golang.org/x/time/rate, the same way a per-route limiter caps
// per-IP request rate.
package anticheat

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/assassin-core/domain"
	"github.com/mark3labs/assassin-core/errs"
	"github.com/mark3labs/assassin-core/geometry"
	"github.com/mark3labs/assassin-core/metrics"
	"golang.org/x/time/rate"
)

// Severity thresholds for each violation category.
const (
	MaxAccuracyMeters = 100.0

	SeverityTeleport   = 9
	SeverityHighSpeed  = 7
	SeverityElevated   = 5
	SeverityClockSkew  = 6
	SeverityFingerprint = 6

	SpeedKmhElevated  = 150.0
	SpeedKmhHigh      = 300.0
	SpeedKmhTeleport  = 1000.0

	ClockSkewToleranceSec = 5.0

	FingerprintChangeWindow     = 24 * time.Hour
	FingerprintChangeThreshold  = 3

	RejectSeverityThreshold  = 9
	FlagSeverityThreshold    = 7

	ringSize = 20
)

// ViolationType names the kind of anti-cheat flag raised.
type ViolationType string

const (
	ViolationLowAccuracy  ViolationType = "LOW_ACCURACY"
	ViolationElevatedSpeed ViolationType = "ELEVATED_SPEED"
	ViolationHighSpeed    ViolationType = "HIGH_SPEED"
	ViolationTeleport     ViolationType = "TELEPORT"
	ViolationClockSkew    ViolationType = "CLOCK_SKEW"
	ViolationFingerprint  ViolationType = "FINGERPRINT_UNSTABLE"
)

// Violation is one flagged condition on a sample.
type Violation struct {
	Type     ViolationType
	Severity int
	Detail   string
}

// LocationValidationResult is the verdict for one incoming sample.
type LocationValidationResult struct {
	Valid      bool
	Violations []Violation
}

// MaxSeverity returns the highest-severity violation's level, or 0 if
// there are none.
func (r LocationValidationResult) MaxSeverity() int {
	max := 0
	for _, v := range r.Violations {
		if v.Severity > max {
			max = v.Severity
		}
	}
	return max
}

// Sample is one incoming location report.
type Sample struct {
	Coordinate  domain.Coordinate
	Accuracy    float64
	Timestamp   time.Time
	Fingerprint string
}

type playerState struct {
	mu        sync.Mutex
	ring      []Sample
	head      int
	count     int
	limiter   *rate.Limiter
	fingerprints []domain.FingerprintSighting
	lastSeverity int
}

func (ps *playerState) push(s Sample) {
	if len(ps.ring) == 0 {
		ps.ring = make([]Sample, ringSize)
	}
	ps.ring[ps.head] = s
	ps.head = (ps.head + 1) % ringSize
	if ps.count < ringSize {
		ps.count++
	}
}

func (ps *playerState) last() (Sample, bool) {
	if ps.count == 0 {
		return Sample{}, false
	}
	idx := (ps.head - 1 + ringSize) % ringSize
	return ps.ring[idx], true
}

// Validator holds per-player anti-cheat state; safe for concurrent use
// from multiple HTTP workers.
type Validator struct {
	mu              sync.Mutex
	players         map[string]*playerState
	ratePerSecond   float64
	burst           int
	log             *log.Logger
}

// New creates a Validator. ratePerSecond/burst configure the transport
// rate limiter (config.AntiCheatRatePerSecond/Burst).
func New(ratePerSecond float64, burst int) *Validator {
	return &Validator{
		players:       make(map[string]*playerState),
		ratePerSecond: ratePerSecond,
		burst:         burst,
		log:           log.With("component", "anticheat"),
	}
}

func (v *Validator) stateFor(playerID string) *playerState {
	v.mu.Lock()
	defer v.mu.Unlock()
	ps, ok := v.players[playerID]
	if !ok {
		ps = &playerState{limiter: rate.NewLimiter(rate.Limit(v.ratePerSecond), v.burst)}
		v.players[playerID] = ps
	}
	return ps
}

// AllowSubmission applies the transport-level rate limit, independent of
// the semantic checks below (a player hammering the endpoint is a
// transport concern, not a geo-plausibility one).
func (v *Validator) AllowSubmission(playerID string) bool {
	return v.stateFor(playerID).limiter.Allow()
}

// Validate runs every plausibility check against the player's prior
// samples and appends the new sample to the ring if it is not rejected.
func (v *Validator) Validate(playerID string, s Sample) (LocationValidationResult, error) {
	ps := v.stateFor(playerID)
	ps.mu.Lock()
	defer ps.mu.Unlock()

	var violations []Violation

	if s.Accuracy > MaxAccuracyMeters {
		violations = append(violations, Violation{
			Type: ViolationLowAccuracy, Severity: 3,
			Detail: "accuracy exceeds 100m",
		})
	}

	if prev, ok := ps.last(); ok {
		dist, err := geometry.Haversine(prev.Coordinate, s.Coordinate)
		if err != nil {
			return LocationValidationResult{}, err
		}
		elapsed := s.Timestamp.Sub(prev.Timestamp).Seconds()

		if elapsed < -ClockSkewToleranceSec {
			violations = append(violations, Violation{
				Type: ViolationClockSkew, Severity: SeverityClockSkew,
				Detail: "sample older than last stored sample by more than 5s",
			})
		} else if elapsed > 0 {
			speedKmh := (dist / elapsed) * 3.6
			switch {
			case speedKmh > SpeedKmhTeleport:
				violations = append(violations, Violation{
					Type: ViolationTeleport, Severity: SeverityTeleport,
					Detail: "implied speed exceeds 1000 km/h",
				})
			case speedKmh > SpeedKmhHigh:
				violations = append(violations, Violation{
					Type: ViolationHighSpeed, Severity: SeverityHighSpeed,
					Detail: "implied speed exceeds 300 km/h",
				})
			case speedKmh > SpeedKmhElevated:
				violations = append(violations, Violation{
					Type: ViolationElevatedSpeed, Severity: SeverityElevated,
					Detail: "implied speed exceeds 150 km/h",
				})
			}
		}
	}

	if s.Fingerprint != "" {
		violations = append(violations, v.checkFingerprint(ps, s)...)
	}

	for _, viol := range violations {
		metrics.AntiCheatViolations.WithLabelValues(string(viol.Type)).Inc()
	}

	result := LocationValidationResult{Valid: true, Violations: violations}
	ps.lastSeverity = result.MaxSeverity()
	if result.MaxSeverity() >= RejectSeverityThreshold {
		result.Valid = false
		return result, errs.AntiCheatReject(errs.ReasonStaleLocation, "location rejected: severity %d violation", result.MaxSeverity())
	}

	ps.push(s)
	return result, nil
}

// LastSeverity returns the max violation severity recorded on the
// player's most recently validated sample (rejected samples included),
// or 0 if none has been
// submitted yet. KillPipeline's proposal precondition checks this is
// below 7.
func (v *Validator) LastSeverity(playerID string) int {
	ps := v.stateFor(playerID)
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.lastSeverity
}

func (v *Validator) checkFingerprint(ps *playerState, s Sample) []Violation {
	now := s.Timestamp
	cutoff := now.Add(-FingerprintChangeWindow)

	kept := ps.fingerprints[:0]
	for _, fp := range ps.fingerprints {
		if fp.SeenAt.After(cutoff) {
			kept = append(kept, fp)
		}
	}
	ps.fingerprints = kept

	distinct := map[string]bool{}
	for _, fp := range ps.fingerprints {
		distinct[fp.Fingerprint] = true
	}
	isNew := !distinct[s.Fingerprint]
	if isNew {
		ps.fingerprints = append(ps.fingerprints, domain.FingerprintSighting{Fingerprint: s.Fingerprint, SeenAt: now})
		distinct[s.Fingerprint] = true
	}

	if len(distinct) > FingerprintChangeThreshold {
		return []Violation{{
			Type: ViolationFingerprint, Severity: SeverityFingerprint,
			Detail: "device fingerprint changed more than 3 times in 24h",
		}}
	}
	return nil
}

// ShouldFlagSession reports whether a result's severity warrants an
// automated response (flag session / optional emergency pause) without
// rising to an outright rejection.
func ShouldFlagSession(r LocationValidationResult) bool {
	s := r.MaxSeverity()
	return s >= FlagSeverityThreshold && s < RejectSeverityThreshold
}
