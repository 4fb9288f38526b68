package utils

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"pharma-supply/apperror"
	"pharma-supply/logger"
	"pharma-supply/types"
)

const redacted = "[REDACTED]"

// secretFields never reach the request log.
var secretFields = map[string]struct{}{
	"password":     {},
	"temp_token":   {},
	"otp_code":     {},
	"access_token": {},
	"private_key":  {},
}

var (
	ErrMissingToken        = errors.New("not authenticated")
	ErrMalformedAuthHeader = errors.New("invalid authorization header format")
)

// ExtractBearerToken returns the token of an "Authorization: Bearer <token>" header.
func ExtractBearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", ErrMissingToken
	}

	tokenParts := strings.Fields(authHeader)
	if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") {
		return "", ErrMalformedAuthHeader
	}
	return tokenParts[1], nil
}

// SendError writes err as {"detail": ...} with the status of its kind.
// Internal errors are logged; their text reaches the client only when expose is set.
func SendError(c *fiber.Ctx, err error, expose bool) error {
	status := apperror.Status(err)
	if status >= fiber.StatusInternalServerError {
		logger.Error(c.Method()+" "+c.Path()+" failed", err)
	}
	return c.Status(status).JSON(types.ErrorResponse{Detail: apperror.ClientMessage(err, expose)})
}

// RedactJSON masks secret fields of a JSON object body. Bodies that are not
// JSON objects are returned unchanged.
func RedactJSON(body []byte) string {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return string(body)
	}
	if !redactMap(payload) {
		return string(body)
	}
	out, err := json.Marshal(payload)
	if err != nil {
		return string(body)
	}
	return string(out)
}

func redactMap(m map[string]interface{}) bool {
	changed := false
	for key, value := range m {
		if _, secret := secretFields[strings.ToLower(key)]; secret {
			m[key] = redacted
			changed = true
			continue
		}
		if nested, ok := value.(map[string]interface{}); ok && redactMap(nested) {
			changed = true
		}
	}
	return changed
}

// sanitizeRequestBody drops large encoded payloads and masks secrets.
func sanitizeRequestBody(c *fiber.Ctx) string {
	body := c.Body()
	if len(body) > 1000 && (strings.Contains(string(body), "data:image/") ||
		strings.Contains(string(body), "base64") ||
		isLikelyBase64(string(body))) {
		return "[LARGE_REQUEST_BODY_WITH_POSSIBLE_FILE_CONTENT]"
	}
	return RedactJSON(body)
}

// isLikelyBase64 detects if content looks like base64
func isLikelyBase64(content string) bool {
	if len(content) < 100 {
		return false
	}

	base64Chars := 0
	for _, char := range content {
		if (char >= 'A' && char <= 'Z') ||
			(char >= 'a' && char <= 'z') ||
			(char >= '0' && char <= '9') ||
			char == '+' || char == '/' || char == '=' {
			base64Chars++
		}
	}

	return float64(base64Chars)/float64(len(content)) > 0.8
}

// redactHeaders hides the bearer credential in a raw header block.
func redactHeaders(raw []byte) string {
	lines := strings.Split(string(raw), "\r\n")
	for i, line := range lines {
		if name, _, found := strings.Cut(line, ":"); found && strings.EqualFold(strings.TrimSpace(name), fiber.HeaderAuthorization) {
			lines[i] = name + ": " + redacted
		}
	}
	return strings.Join(lines, "\r\n")
}

// CreateSanitizedLogEntry creates a deep copied and sanitized log entry for
// a request that started at start. Call it after the handler ran so the
// response is populated.
func CreateSanitizedLogEntry(c *fiber.Ctx, start time.Time) types.LogEntry {
	// Fiber reuses its buffers after the handler returns.
	method := string([]byte(c.Method()))
	url := string([]byte(c.OriginalURL()))

	return types.LogEntry{
		Method:          method,
		URL:             url,
		ClientIP:        string([]byte(c.IP())),
		RequestBody:     sanitizeRequestBody(c),
		ResponseBody:    RedactJSON(c.Response().Body()),
		RequestHeaders:  redactHeaders(c.Request().Header.Header()),
		ResponseHeaders: string(c.Response().Header.Header()),
		StatusCode:      c.Response().StatusCode(),
		LatencyMS:       time.Since(start).Milliseconds(),
		CreatedAt:       start,
	}
}
