package clients

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// Overlay keys present in every Result. The overlay is applied after the
// body is merged, so these always win over same-named body fields.
const (
	keyStatus        = "status"
	keyStatusCode    = "statusCode"
	keyStatusMessage = "statusMessage"
	keyElapsed       = "elapsed"
	keyTimeTaken     = "timeTaken"
	keyValue         = "value"
)

// statusSucceeded and statusFailed are the two overlay status values.
const (
	statusSucceeded = "Succeeded"
	statusFailed    = "Failed"
)

// Result is the uniform record every successful dispatch returns. When the
// response carried a JSON object its fields sit alongside the overlay
// fields; a JSON array or scalar is wrapped under "value".
type Result map[string]any

// normalize converts a response into a Result. Parse failures are swallowed:
// a success status never becomes an error just because its body wasn't JSON.
func normalize(resp *http.Response, body []byte, elapsed time.Duration) Result {
	result := Result{}

	if text := strings.TrimSpace(string(body)); text != "" {
		var parsed any
		if err := json.Unmarshal([]byte(text), &parsed); err == nil {
			switch value := parsed.(type) {
			case map[string]any:
				result = Result(value)
			default:
				result[keyValue] = value
			}
		}
	}

	status := statusSucceeded
	if resp.StatusCode >= http.StatusBadRequest {
		status = statusFailed
	}

	result[keyStatus] = status
	result[keyStatusCode] = resp.StatusCode
	result[keyStatusMessage] = ""
	result[keyElapsed] = elapsed

	if timeTaken := resp.Header.Get(HeaderResponseTime); timeTaken != "" {
		result[keyTimeTaken] = timeTaken
	}

	return result
}

// Status returns the overlay status string.
func (r Result) Status() string {
	s, _ := r[keyStatus].(string)
	return s
}

// StatusCode returns the HTTP status code of the exchange.
func (r Result) StatusCode() int {
	code, _ := r[keyStatusCode].(int)
	return code
}

// Succeeded reports whether the exchange completed with a non-error status.
func (r Result) Succeeded() bool {
	return r.Status() == statusSucceeded
}

// Elapsed returns the measured wall-clock duration of the exchange.
func (r Result) Elapsed() time.Duration {
	elapsed, _ := r[keyElapsed].(time.Duration)
	return elapsed
}

// TimeTaken returns the server-reported timing header, empty when absent.
func (r Result) TimeTaken() string {
	t, _ := r[keyTimeTaken].(string)
	return t
}

// Value returns the wrapped body for responses whose JSON body was not an
// object, or nil when the body was an object or empty.
func (r Result) Value() any {
	return r[keyValue]
}
