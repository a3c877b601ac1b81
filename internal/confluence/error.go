package confluence

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Error represents a Confluence REST error response.
type Error struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Reason     string `json:"reason"`
	Body       string `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Message != "" {
		return fmt.Sprintf("confluence: %d %s", e.StatusCode, e.Message)
	}

	if e.Reason != "" {
		return fmt.Sprintf("confluence: %d %s", e.StatusCode, e.Reason)
	}

	return fmt.Sprintf("confluence: %d", e.StatusCode)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func parseError(res *http.Response) error {
	data, _ := io.ReadAll(res.Body)
	errRes := &Error{Body: string(data)}
	if len(data) > 0 {
		_ = json.Unmarshal(data, errRes)
	}

	// The JSON body carries its own statusCode field on Data Center, but the
	// transport status wins when they disagree or the body is not JSON.
	errRes.StatusCode = res.StatusCode

	if errRes.Message == "" && errRes.Reason == "" {
		errRes.Message = string(data)
	}

	return errRes
}
