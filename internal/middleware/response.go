// Package middleware holds the HTTP plumbing shared by every handler: JSON
// responses, request decoding, logging, metrics, rate limiting and CORS.
package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"argip-api/internal/apperr"
)

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// JSONResponse writes v as JSON with the given status.
func JSONResponse(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("failed to encode response")
	}
}

// NoContent answers 204 with an empty body.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// ErrorResponse maps err onto its status code and {"detail": ...} body.
// Storage failures are logged with their cause; 401s carry a Bearer challenge.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	entry := LoggerFromContext(r.Context()).WithField("kind", apperr.KindOf(err).String())

	if status >= http.StatusInternalServerError {
		entry.WithError(err).Error("request failed")
	} else {
		entry.Debug(apperr.Message(err))
	}

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	JSONResponse(w, status, ErrorBody{Detail: apperr.Message(err)})
}
