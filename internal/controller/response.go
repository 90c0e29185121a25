package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	appErrors "github.com/unclebandit/mailto-campaigns/internal/errors"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

var errMalformed = errors.New("invalid request format")

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errMalformed
	}
	return nil
}

// statusFor maps an error to its HTTP status and the message that is safe to
// return to the caller.
func statusFor(err error) (int, string) {
	if ve, ok := appErrors.AsValidation(err); ok {
		return http.StatusBadRequest, ve.Message
	}
	switch {
	case errors.Is(err, errMalformed):
		return http.StatusBadRequest, errMalformed.Error()
	case errors.Is(err, appErrors.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, appErrors.ErrSlugTaken):
		return http.StatusConflict, appErrors.ErrSlugTaken.Error()
	case appErrors.IsNotFound(err):
		return http.StatusNotFound, "campaign not found"
	}
	return http.StatusInternalServerError, "internal server error"
}

// writeError answers {"success":false,"error":...}. Only 5xx causes are
// logged; their text never reaches the client.
func writeError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		logFor(log).WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func logFor(log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		return logrus.StandardLogger()
	}
	return log
}
