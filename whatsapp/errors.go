package whatsapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// unknownErrorMessage is the fallback message used when the vendor returns an
// empty or unreadable error body.
const unknownErrorMessage = "Unknown WhatsApp API error"

// ErrNoBusinessAccountID is returned by operations that are scoped to a
// WhatsApp Business Account when the client was configured without one.
var ErrNoBusinessAccountID = errors.New("business account id not configured")

// APIError is the normalized form of every failed Graph API call. All fields
// are always populated: a malformed or empty vendor body degrades to code 0,
// title "unknown" and the generic message, so callers never branch on absence.
type APIError struct {
	// Code is the vendor error code, 0 when the body carried none.
	Code int
	// Title is "{code}/{subcode}" when a subcode is present, otherwise the
	// decimal code, otherwise "unknown".
	Title string
	// HTTPStatus is the status code of the failed response.
	HTTPStatus int
	// Message is the vendor-supplied human message or a generic fallback.
	Message string
	// Details carries the vendor trace id when one was present.
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("whatsapp api error %s (http %d): %s (%s)", e.Title, e.HTTPStatus, e.Message, e.Details)
	}
	return fmt.Sprintf("whatsapp api error %s (http %d): %s", e.Title, e.HTTPStatus, e.Message)
}

type graphError struct {
	Code      int    `json:"code"`
	Subcode   int    `json:"error_subcode"`
	Message   string `json:"message"`
	FbtraceID string `json:"fbtrace_id"`
}

type graphErrorEnvelope struct {
	Error *graphError `json:"error"`
}

// newAPIError converts a raw vendor error body plus the HTTP status into a
// fully populated APIError. It accepts the Graph envelope {"error": {...}} as
// well as a bare error object, and never fails: garbage in, sentinel
// defaults out.
func newAPIError(body []byte, httpStatus int) *APIError {
	parsed := parseGraphError(body)

	apiErr := &APIError{
		Code:       parsed.Code,
		HTTPStatus: httpStatus,
		Message:    strings.TrimSpace(parsed.Message),
	}
	if apiErr.Message == "" {
		apiErr.Message = unknownErrorMessage
	}

	switch {
	case parsed.Subcode != 0:
		apiErr.Title = fmt.Sprintf("%d/%d", parsed.Code, parsed.Subcode)
	case parsed.Code != 0:
		apiErr.Title = strconv.Itoa(parsed.Code)
	default:
		apiErr.Title = "unknown"
	}

	if trace := strings.TrimSpace(parsed.FbtraceID); trace != "" {
		apiErr.Details = "fbtrace_id: " + trace
	}

	return apiErr
}

func parseGraphError(body []byte) graphError {
	if len(strings.TrimSpace(string(body))) == 0 {
		return graphError{}
	}

	var envelope graphErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		return *envelope.Error
	}

	var bare graphError
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare
	}
	return graphError{}
}
