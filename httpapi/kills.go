package httpapi

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/mark3labs/assassin-core/domain"
	"github.com/mark3labs/assassin-core/errs"
	"github.com/mark3labs/assassin-core/killpipeline"
	"github.com/mark3labs/assassin-core/middleware"
	"github.com/pocketbase/pocketbase/core"
)

func (a *API) proposeKill(e *core.RequestEvent) error {
	var body struct {
		VictimID        string  `json:"victimId"`
		GameID          string  `json:"gameId"`
		Method          string  `json:"method"`
		PhotoBase64     string  `json:"photoBase64"`
		KillerLatitude  float64 `json:"killerLatitude"`
		KillerLongitude float64 `json:"killerLongitude"`
	}
	if err := e.BindBody(&body); err != nil {
		return writeError(e, errs.Validation("invalid request body: %v", err))
	}

	data := map[string]any{}
	if body.PhotoBase64 != "" {
		raw, err := base64.StdEncoding.DecodeString(body.PhotoBase64)
		if err != nil {
			return writeError(e, errs.Validation("photoBase64 is not valid base64: %v", err))
		}
		data["photoBytes"] = raw
	}

	kill, err := a.KillPipeline.Propose(killpipeline.ProposeInput{
		KillerID:         middleware.CurrentPlayerID(e),
		VictimID:         body.VictimID,
		GameID:           body.GameID,
		Method:           domain.VerificationMethod(body.Method),
		VerificationData: data,
		KillerLatitude:   body.KillerLatitude,
		KillerLongitude:  body.KillerLongitude,
	}, time.Now())
	if err != nil {
		return writeError(e, err)
	}
	return e.JSON(http.StatusCreated, kill)
}

func (a *API) submitPhoto(e *core.RequestEvent) error {
	var body struct {
		PhotoBase64 string `json:"photoBase64"`
	}
	if err := e.BindBody(&body); err != nil {
		return writeError(e, errs.Validation("invalid request body: %v", err))
	}
	photoBytes, err := base64.StdEncoding.DecodeString(body.PhotoBase64)
	if err != nil {
		return writeError(e, errs.Validation("photoBase64 is not valid base64: %v", err))
	}

	kill, err := a.KillPipeline.SubmitPhoto(e.Request.PathValue("id"), photoBytes)
	if err != nil {
		return writeError(e, err)
	}
	return e.JSON(http.StatusOK, kill)
}

func (a *API) adminVerifyKill(e *core.RequestEvent) error {
	var body struct {
		IsValid bool `json:"isValid"`
	}
	if err := e.BindBody(&body); err != nil {
		return writeError(e, errs.Validation("invalid request body: %v", err))
	}

	kill, err := a.KillPipeline.AdminVerify(e.Request.PathValue("id"), middleware.CurrentPlayerID(e), body.IsValid, time.Now())
	if err != nil {
		return writeError(e, err)
	}
	return e.JSON(http.StatusOK, kill)
}
