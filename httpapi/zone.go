package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pocketbase/pocketbase/core"
	datastar "github.com/starfederation/datastar/sdk/go"
)

func (a *API) getZoneState(e *core.RequestEvent) error {
	state, err := a.Store.GetZoneState(e.Request.PathValue("id"))
	if err != nil {
		return writeError(e, err)
	}
	return e.JSON(http.StatusOK, state)
}

// zoneStreamInterval is how often getZoneStream pushes a fresh
// GameZoneState signal to a connected live view.
const zoneStreamInterval = 1 * time.Second

// getZoneStream pushes the zone's current stage/radius/center to a
// connected client every zoneStreamInterval as a datastar signal,
// polling rather than pushing only on mutation.
func (a *API) getZoneStream(e *core.RequestEvent) error {
	gameID := e.Request.PathValue("id")
	sse := datastar.NewSSE(e.Response, e.Request)

	ticker := time.NewTicker(zoneStreamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.Request.Context().Done():
			return nil
		case <-ticker.C:
			state, err := a.Store.GetZoneState(gameID)
			if err != nil {
				log.Error("zone stream: load state", "gameId", gameID, "err", err)
				continue
			}
			payload, err := json.Marshal(state)
			if err != nil {
				continue
			}
			if err := sse.MergeSignals([]byte(fmt.Sprintf(`{"zoneState": %s}`, payload))); err != nil {
				return nil
			}
		}
	}
}
