// Package httpapi adapts the core's components onto pocketbase's
// router.Router[*core.RequestEvent], one file per resource the way the
// teacher's routes/ package splits by concern (index.go, auth.go).
// This is the only layer that maps errs.Error to an HTTP status code.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/mark3labs/assassin-core/errs"
	"github.com/pocketbase/pocketbase/core"
)

// writeError maps a core error to the response status/body for each
// errs.Code.
func writeError(e *core.RequestEvent, err error) error {
	var coreErr *errs.Error
	if !errors.As(err, &coreErr) {
		return e.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error(), "code": string(errs.CodeInternal)})
	}

	status := http.StatusInternalServerError
	switch coreErr.Code {
	case errs.CodeValidation, errs.CodeInvalidGeo, errs.CodeAntiCheat:
		status = http.StatusBadRequest
	case errs.CodeUnauthorized:
		status = http.StatusForbidden
	case errs.CodeNotFound:
		status = http.StatusNotFound
	case errs.CodeGameState, errs.CodeConflict:
		status = http.StatusConflict
	case errs.CodePersistence, errs.CodeInternal:
		status = http.StatusInternalServerError
	}

	body := map[string]any{"message": coreErr.Message, "code": string(coreErr.Code)}
	if coreErr.Reason != "" {
		body["reason"] = string(coreErr.Reason)
	}
	return e.JSON(status, body)
}
