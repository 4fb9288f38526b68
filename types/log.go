package types

import "time"

// LogEntry is a finished request queued for persistence. Secrets are already
// redacted from bodies and headers.
type LogEntry struct {
	Method          string
	URL             string
	ClientIP        string
	UserID          string
	RequestBody     string
	ResponseBody    string
	RequestHeaders  string
	ResponseHeaders string
	StatusCode      int
	LatencyMS       int64
	CreatedAt       time.Time
}
