package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"syscall"

	"github.com/nkiryanov/triply/internal/apperrors"
)

// classify maps transport failure to the client error taxonomy
// Connection problems are never reported as authorization ones
func classify(err error) error {
	// Session failures carry their own cause, it is already classified
	if errors.Is(err, apperrors.ErrSessionTerminated) {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return urlErr.Err
		}
		return err
	}

	var netErr net.Error
	var opErr *net.OpError

	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", apperrors.ErrTimeout, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %w", apperrors.ErrTimeout, err)
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET), errors.As(err, &opErr):
		return fmt.Errorf("%w: %w", apperrors.ErrServerUnreachable, err)
	default:
		return err
	}
}

// decodeError builds APIError from a non 2xx reply
func decodeError(resp *http.Response) *apperrors.APIError {
	apiErr := &apperrors.APIError{
		StatusCode: resp.StatusCode,
		Kind:       kindOf(resp.StatusCode),
	}

	// Server errors details are not for users
	if resp.StatusCode >= http.StatusInternalServerError {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return apiErr
	}

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&payload); err != nil {
		return apiErr
	}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		raw := payload[k]
		switch k {
		case "detail", "error", "message":
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				// keys are sorted: 'detail' wins over the others
				if apiErr.Detail == "" {
					apiErr.Detail = s
				}
				continue
			}
		}

		if msgs := fieldMessages(raw); len(msgs) > 0 {
			if apiErr.Fields == nil {
				apiErr.Fields = make(map[string][]string)
			}
			apiErr.Fields[k] = msgs
		}
	}

	return apiErr
}

// Field error is either single string or list of strings
func fieldMessages(raw json.RawMessage) []string {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return []string{s}
	}
	return nil
}

func kindOf(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case status == http.StatusForbidden:
		return apperrors.ErrForbidden
	case status == http.StatusNotFound:
		return apperrors.ErrNotFound
	case status >= http.StatusInternalServerError:
		return apperrors.ErrServerError
	default:
		return nil
	}
}
