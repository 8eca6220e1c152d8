package clients

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jsamuelsen/go-brain-sdk/internal/domain"
)

// unknownErrorDump marks an error body that could not be parsed as JSON.
const unknownErrorDump = "Unknown server error occurred"

// genericFailureMessage is used when the error envelope carries no message.
const genericFailureMessage = "Request failed."

// classify builds the structured server error for an HTTP error response.
// Every extraction is independent and failure-isolated: a malformed or
// missing piece of the response never prevents the others from being
// captured.
func classify(resp *http.Response, body []byte, correlationID string, elapsed time.Duration) *domain.ServerError {
	serverErr := &domain.ServerError{
		StatusCode: resp.StatusCode,
		Elapsed:    elapsed,
		TimeTaken:  resp.Header.Get(HeaderResponseTime),
	}

	var dump any
	if err := json.Unmarshal(body, &dump); err != nil {
		dump = unknownErrorDump
	}
	serverErr.Dump = dump

	envelope := errorEnvelope(dump)

	if code, ok := envelope["code"].(string); ok {
		serverErr.Code = fmt.Sprintf("Request failed with error code %q", code)
	}

	message := genericFailureMessage
	if m, ok := envelope["message"].(string); ok {
		message = "Error message: " + m
	}

	message += " Request ID: " + correlationID

	if spanID := resp.Header.Get(HeaderSpanID); spanID != "" {
		message += " Span ID: " + spanID
	}

	serverErr.Message = message

	return serverErr
}

// errorEnvelope digs the error object out of a parsed body. Returns nil for
// any shape other than {"error": {...}}; indexing a nil map is safe, so
// callers can extract fields without further checks.
func errorEnvelope(dump any) map[string]any {
	obj, ok := dump.(map[string]any)
	if !ok {
		return nil
	}

	envelope, _ := obj["error"].(map[string]any)

	return envelope
}
