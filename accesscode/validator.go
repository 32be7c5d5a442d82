// Package accesscode checks the one-off codes that gate authority sign-up.
package accesscode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

//go:generate mockgen -source=validator.go -destination=mock_accesscode/mock_validator.go

// ErrNotConfigured is returned when authority sign-up is attempted but no
// validation endpoint is set.
var ErrNotConfigured = errors.New("authority code validation is not configured")

// Validator reports whether code is a valid, unexpired authority code for
// email. A false result and an error are both a rejection.
type Validator interface {
	Validate(ctx context.Context, code, email string) (bool, error)
}

type validateRequest struct {
	AccessCode string `json:"access_code"`
	UserEmail  string `json:"user_email"`
}

// HTTPValidator posts the code to a remote function that answers with a
// bare JSON boolean.
type HTTPValidator struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPValidator(endpoint, apiKey string, timeout time.Duration) *HTTPValidator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPValidator{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

func (v *HTTPValidator) Validate(ctx context.Context, code, email string) (bool, error) {
	body, err := json.Marshal(validateRequest{AccessCode: code, UserEmail: email})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if v.apiKey != "" {
		req.Header.Set("apikey", v.apiKey)
		req.Header.Set("Authorization", "Bearer "+v.apiKey)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("call validator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("validator returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var ok bool
	if err := json.NewDecoder(resp.Body).Decode(&ok); err != nil {
		return false, fmt.Errorf("decode validator response: %w", err)
	}
	return ok, nil
}

// Disabled rejects every code. It is used when no endpoint is configured so
// that authority sign-up fails closed.
type Disabled struct{}

func (Disabled) Validate(context.Context, string, string) (bool, error) {
	return false, ErrNotConfigured
}
