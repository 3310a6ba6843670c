// Package events publishes domain events as plain subject messages over
// the embedded NATS server through a typed Publisher any core component can hold without
// depending on nats.Conn directly.
package events

import (
	"encoding/json"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats.go"
)

// Subject names. One per domain event the core emits; out-of-scope
// collaborators (notifications, admin dashboard, export) subscribe to
// these without coupling to the core's internals.
const (
	SubjectPlayerLocationUpdated = "players.location.updated"
	SubjectKillProposed          = "kills.proposed"
	SubjectKillVerified          = "kills.verified"
	SubjectKillRejected          = "kills.rejected"
	SubjectAssignmentChanged     = "assignments.changed"
	SubjectGameStatusChanged     = "games.status.changed"
	SubjectZoneStateChanged      = "zone.state.changed"
	SubjectProximityAlert        = "proximity.alert"
	SubjectPlayerEliminated      = "players.eliminated"
	SubjectEmergencyPause        = "games.emergency_pause"
)

// Publisher wraps a *nats.Conn with JSON-marshal-then-publish, surfacing
// marshal/publish errors to the caller instead of swallowing them.
type Publisher struct {
	nc  *nats.Conn
	log *log.Logger
}

// NewPublisher wraps an established NATS connection, typically created
// via nats.Connect against an embedded server.
func NewPublisher(nc *nats.Conn) *Publisher {
	return &Publisher{nc: nc, log: log.With("component", "events")}
}

// Publish marshals payload as JSON and publishes it to subject.
func (p *Publisher) Publish(subject string, payload any) error {
	if p == nil || p.nc == nil {
		return nil // events are best-effort; a nil publisher is a valid no-op for tests.
	}
	data, err := json.Marshal(payload)
	if err != nil {
		p.log.Error("marshal event", "subject", subject, "error", err)
		return err
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.log.Error("publish event", "subject", subject, "error", err)
		return err
	}
	return nil
}
