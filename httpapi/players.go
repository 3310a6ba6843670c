package httpapi

import (
	"net/http"
	"time"

	"github.com/mark3labs/assassin-core/anticheat"
	"github.com/mark3labs/assassin-core/domain"
	"github.com/mark3labs/assassin-core/errs"
	"github.com/pocketbase/pocketbase/core"
)

func (a *API) updateLocation(e *core.RequestEvent) error {
	playerID := e.Request.PathValue("id")

	var body struct {
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		Accuracy    float64 `json:"accuracy"`
		TimestampMS int64   `json:"timestamp"`
		Fingerprint string  `json:"fingerprint"`
	}
	if err := e.BindBody(&body); err != nil {
		return writeError(e, errs.Validation("invalid request body: %v", err))
	}

	if a.AntiCheat != nil && !a.AntiCheat.AllowSubmission(playerID) {
		return writeError(e, errs.AntiCheatReject(errs.ReasonStaleLocation, "location submissions are rate-limited"))
	}

	timestamp := time.Now()
	if body.TimestampMS > 0 {
		timestamp = time.UnixMilli(body.TimestampMS)
	}

	p, err := a.Store.GetPlayer(playerID)
	if err != nil {
		return writeError(e, err)
	}

	if a.AntiCheat != nil {
		sample := anticheat.Sample{
			Coordinate:  domain.Coordinate{Latitude: body.Latitude, Longitude: body.Longitude},
			Accuracy:    body.Accuracy,
			Timestamp:   timestamp,
			Fingerprint: body.Fingerprint,
		}
		if _, err := a.AntiCheat.Validate(playerID, sample); err != nil {
			return writeError(e, err)
		}
	}

	if p.LocationTimestamp != nil && timestamp.Before(*p.LocationTimestamp) {
		// Out-of-order sample older than the last stored one; discard
		// silently rather than erroring the client.
		return e.NoContent(http.StatusNoContent)
	}

	p.Latitude = &body.Latitude
	p.Longitude = &body.Longitude
	p.Accuracy = &body.Accuracy
	p.LocationTimestamp = &timestamp
	if body.Fingerprint != "" {
		p.DeviceFingerprint = body.Fingerprint
	}
	if err := a.Store.Transact(func(txApp core.App) error {
		return a.Store.PutPlayer(txApp, p)
	}); err != nil {
		return writeError(e, err)
	}

	if a.Proximity != nil && p.GameID != "" {
		if _, err := a.Proximity.OnLocationUpdate(p.GameID, playerID, timestamp); err != nil {
			return writeError(e, err)
		}
	}

	return e.NoContent(http.StatusNoContent)
}
