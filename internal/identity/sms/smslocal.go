package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

const (
	DefaultSMSLocalURL = "https://www.smslocal.com/dev/bulkV2"
	defaultTimeout     = 15 * time.Second
)

var (
	ErrNotConfigured = errors.New("sms: api key not configured")

	// ErrUnavailable is returned while the breaker is open.
	ErrUnavailable = gobreaker.ErrOpenState
)

// BreakerObserver is told about breaker state changes. metrics.Metrics
// satisfies it.
type BreakerObserver interface {
	BreakerState(name string, state float64)
}

// SMSLocal sends codes through the SMS Local OTP route. Calls go through a
// circuit breaker so a failing gateway is not hammered by every login.
type SMSLocal struct {
	APIKey     string
	BaseURL    string
	Sender     string
	HTTPClient *http.Client

	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewSMSLocal builds a client. baseURL may be empty; observer may be nil.
func NewSMSLocal(apiKey, baseURL, sender string, logger *slog.Logger, observer BreakerObserver) *SMSLocal {
	if baseURL == "" {
		baseURL = DefaultSMSLocalURL
	}

	settings := gobreaker.Settings{
		Name:        "smslocal",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
			if observer != nil {
				observer.BreakerState(name, stateValue(to))
			}
		},
	}

	return &SMSLocal{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		Sender:     sender,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
		breaker:    gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// State reports the breaker state.
func (c *SMSLocal) State() gobreaker.State { return c.breaker.State() }

type smsLocalRequest struct {
	Route     string `json:"route"`
	Numbers   string `json:"numbers"`
	Variables string `json:"variables"`
	SenderID  string `json:"sender_id,omitempty"`
}

func (c *SMSLocal) Send(ctx context.Context, msg Message) error {
	if c.APIKey == "" {
		return ErrNotConfigured
	}
	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.post(ctx, msg)
	})
	return err
}

func (c *SMSLocal) post(ctx context.Context, msg Message) error {
	raw, err := json.Marshal(smsLocalRequest{
		Route:     "otp",
		Numbers:   strings.TrimPrefix(msg.Phone, "+"),
		Variables: msg.Code,
		SenderID:  c.Sender,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sms: request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}
