// Package respond writes the JSON envelope every API response uses and maps
// domain errors to HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/MrJamesThe3rd/notemarket/internal/apperr"
)

type Envelope struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func JSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

func Message(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, Envelope{Success: true, Message: message})
}

func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Success: false, Message: message})
}

// Decode reads a JSON body into dst. An empty body leaves dst untouched so
// that validation reports the missing fields.
func Decode(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("%w: malformed request body: %v", apperr.ErrInvalid, err)
	}

	return nil
}

// Error writes err with the status its kind maps to. Unclassified errors are
// logged and hidden behind a generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		JSON(w, http.StatusBadRequest, Envelope{
			Message: "validation failed",
			Errors:  flatten("", verrs),
		})

		return
	}

	var internal validation.InternalError
	if errors.As(err, &internal) {
		logInternal(r, err)
		Fail(w, http.StatusInternalServerError, "internal error")

		return
	}

	var verr validation.Error
	if errors.As(err, &verr) {
		Fail(w, http.StatusBadRequest, verr.Error())
		return
	}

	switch {
	case errors.Is(err, apperr.ErrInvalid):
		Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrUnauthorized):
		Fail(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, apperr.ErrForbidden):
		Fail(w, http.StatusForbidden, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrConflict):
		Fail(w, http.StatusConflict, err.Error())
	default:
		logInternal(r, err)
		Fail(w, http.StatusInternalServerError, "internal error")
	}
}

func logInternal(r *http.Request, err error) {
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
}

// flatten turns nested validation errors into dotted field keys, e.g.
// "rows[2].zip".
func flatten(prefix string, errs validation.Errors) map[string]string {
	out := make(map[string]string, len(errs))

	for field, err := range errs {
		key := field
		if prefix != "" {
			key = prefix + "." + field
		}

		var nested validation.Errors
		if errors.As(err, &nested) {
			for k, v := range flatten(key, nested) {
				out[k] = v
			}

			continue
		}

		out[key] = err.Error()
	}

	return out
}
