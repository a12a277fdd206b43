package transport

import (
	"bytes"
	"encoding/json"
	"fmt"

	"driver-sync/internal/core/apierror"
)

// envelope is the server's standard response wrapper.
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// JSON builds a request with a JSON body.
func JSON(method, path string, payload any) (Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Request{}, fmt.Errorf("failed to encode %s body: %w", path, err)
	}
	return Request{
		Method:      method,
		Path:        path,
		Body:        body,
		ContentType: "application/json",
	}, nil
}

// CheckStatus converts a non-2xx response into a classified error.
func CheckStatus(resp *Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return apierror.FromResponse(resp.StatusCode, resp.Body)
}

// DecodeData checks the status and decodes the envelope's data into out.
// A nil out only checks the status. A body without an envelope is decoded as-is.
func DecodeData(resp *Response, out any) error {
	if err := CheckStatus(resp); err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(resp.Body, &env); err == nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
		return nil
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// DecodeList decodes a list response into out. The list may be the envelope's
// data itself or, for paginated endpoints, nested one level deeper under
// data.data. A missing or null list decodes to nothing.
func DecodeList[T any](resp *Response, out *[]T) error {
	var raw json.RawMessage
	if err := DecodeData(resp, &raw); err != nil {
		return err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*out = nil
		return nil
	}

	if raw[0] == '{' {
		var page struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &page); err != nil {
			return fmt.Errorf("failed to decode page: %w", err)
		}
		raw = bytes.TrimSpace(page.Data)
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			*out = nil
			return nil
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode list: %w", err)
	}
	return nil
}

// Message returns the envelope's message, if any.
func Message(resp *Response) string {
	var env envelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return ""
	}
	return env.Message
}
