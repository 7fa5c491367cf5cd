package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/vncsmyrnk/opinionpoll/internal/core/domain"
)

const maxBodyBytes = 1 << 20

var errBodyTooLarge = domain.NewValidationError("", "request body too large")

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// writeError maps a service error to its HTTP status. Internal errors are
// logged and replaced by a generic message.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		if errors.Is(err, errBodyTooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		writeMessage(w, http.StatusBadRequest, err.Error())
	case domain.KindConflict:
		if errors.Is(err, domain.ErrAdminExists) {
			writeMessage(w, http.StatusConflict, err.Error())
			return
		}
		writeMessage(w, http.StatusForbidden, err.Error())
	case domain.KindNotFound:
		writeMessage(w, http.StatusNotFound, err.Error())
	case domain.KindUnauthorized:
		writeMessage(w, http.StatusUnauthorized, err.Error())
	default:
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeMessage(w, http.StatusInternalServerError, domain.ErrInternal.Error())
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return domain.NewValidationError("", "invalid request body")
	}
	return nil
}

// parseID reads a positive integer id from a path or query value.
func parseID(raw string, invalid error) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid
	}
	return id, nil
}

// flexibleID accepts both 12 and "12" in request bodies.
type flexibleID int64

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	id, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	*f = flexibleID(id)
	return nil
}
