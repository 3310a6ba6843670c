package httpapi

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/assassin-core/middleware"
	"github.com/pocketbase/pocketbase/core"
	datastar "github.com/starfederation/datastar/sdk/go"
)

// proximityStreamInterval matches zoneStreamInterval; both live views
// poll their engine's cached state rather than push on every update.
const proximityStreamInterval = 1 * time.Second

// getProximityStream pushes the requesting player's most recent
// proximity result (distance band to their assigned target) for as long
// as the client stays connected.
func (a *API) getProximityStream(e *core.RequestEvent) error {
	playerID := middleware.CurrentPlayerID(e)
	sse := datastar.NewSSE(e.Response, e.Request)

	ticker := time.NewTicker(proximityStreamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.Request.Context().Done():
			return nil
		case <-ticker.C:
			result, ok := a.Proximity.RecentProximity(playerID, time.Now())
			if !ok {
				continue
			}
			payload, err := json.Marshal(result)
			if err != nil {
				continue
			}
			if err := sse.MergeSignals([]byte(fmt.Sprintf(`{"proximity": %s}`, payload))); err != nil {
				return nil
			}
		}
	}
}
