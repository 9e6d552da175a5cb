package httpclient

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/errors"
)

// FallbackMessage is reported when an error response carries no readable message.
const FallbackMessage = "Server error!"

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 1 << 20

// ExtractMessage returns the human-readable message carried by an error
// payload, or fallback when the payload is not a JSON object, lacks a
// message, or the message is not a non-empty string. It understands
// {"message": "..."} (other fields of any type are ignored, as in
// {"status": 404, "error": "Not Found", "message": "..."}) and the
// {"error": {"code": "...", "message": "..."}} envelope.
func ExtractMessage(body []byte, fallback string) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return fallback
	}
	if msg, ok := stringField(fields["message"]); ok {
		return msg
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(fields["error"], &envelope); err == nil {
		if msg, ok := stringField(envelope["message"]); ok {
			return msg
		}
	}
	return fallback
}

func stringField(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// translates it into an AppError whose Message is always non-empty.
func ParseResponseError(resp *http.Response) *apperrors.AppError {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		body = nil
	}
	return apperrors.FromStatus(resp.StatusCode, ExtractMessage(body, FallbackMessage))
}

// IsSuccess reports whether status is a 2xx code.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
