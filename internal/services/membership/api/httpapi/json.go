package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "github.com/louisbranch/memberdesk/internal/platform/errors"
)

// maxBodyBytes caps request bodies read by decodeJSON.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(payload)
}

// decodeJSON reads one JSON object into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.New(apperrors.CodeRequestInvalid, "request body is required")
		}
		return apperrors.Wrap(apperrors.CodeRequestInvalid, "request body is not valid JSON", err)
	}
	if decoder.More() {
		return apperrors.New(apperrors.CodeRequestInvalid, "request body must hold a single JSON object")
	}
	return nil
}
