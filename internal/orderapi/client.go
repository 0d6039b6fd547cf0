// Package orderapi is the HTTP client for the restaurant's order service:
// order submission plus the auth-status and profile lookups used to prefill
// checkout.
package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"premi-cart/internal/model"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 * 1024

// Config holds client settings.
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// Client talks to the order service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	profiles   *gobreaker.CircuitBreaker[*model.Profile]
	logger     zerolog.Logger
}

type orderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id"`
	Message string `json:"message"`
}

type authStatusResponse struct {
	LoggedIn bool   `json:"logged_in"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

type profileResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	User    *model.Profile `json:"user"`
}

// New creates a client. A nil httpClient gets one with cfg.Timeout.
func New(cfg Config, httpClient *http.Client, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 3
	}
	if cfg.BreakerCooldown == 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}

	logger = logger.With().Str("component", "order-api").Logger()

	failures := cfg.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker[*model.Profile](gobreaker.Settings{
		Name:        "profile-lookup",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		profiles:   breaker,
		logger:     logger,
	}
}

// SubmitOrder posts the order. A *model.SubmissionError is returned when
// the service refuses the order or cannot be reached.
func (c *Client) SubmitOrder(ctx context.Context, order *model.OrderSubmission) (*model.OrderResult, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/orders", bytes.NewReader(body))
	if err != nil {
		return nil, model.NewUnreachableError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("channel", order.Channel).Msg("order service unreachable")
		return nil, model.NewUnreachableError(err)
	}
	defer resp.Body.Close()

	var out orderResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("message", out.Message).
			Str("channel", order.Channel).
			Msg("order rejected")
		return nil, model.NewRejectedError(resp.StatusCode, out.Message)
	}

	if decodeErr != nil {
		c.logger.Error().Err(decodeErr).Int("status", resp.StatusCode).Msg("failed to decode order response")
		return nil, model.NewUnreachableError(fmt.Errorf("failed to decode order response: %w", decodeErr))
	}

	if !out.Success {
		c.logger.Warn().Str("message", out.Message).Str("channel", order.Channel).Msg("order not accepted")
		return nil, model.NewRejectedError(resp.StatusCode, out.Message)
	}

	c.logger.Info().
		Str("order_id", out.OrderID).
		Str("channel", order.Channel).
		Int("total", order.Total).
		Msg("order accepted")

	return &model.OrderResult{OrderID: out.OrderID}, nil
}

// LookupProfile returns the logged-in customer's profile, or nil when the
// visitor is a guest.
func (c *Client) LookupProfile(ctx context.Context) (*model.Profile, error) {
	profile, err := c.profiles.Execute(func() (*model.Profile, error) {
		return c.lookupProfile(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Debug().Err(err).Msg("profile lookup skipped")
		}
		return nil, err
	}
	return profile, nil
}

func (c *Client) lookupProfile(ctx context.Context) (*model.Profile, error) {
	var status authStatusResponse
	if err := c.getJSON(ctx, "/auth-status", &status); err != nil {
		return nil, fmt.Errorf("failed to get auth status: %w", err)
	}
	if !status.LoggedIn {
		return nil, nil
	}

	var prof profileResponse
	if err := c.getJSON(ctx, "/profile", &prof); err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if !prof.Success || prof.User == nil {
		c.logger.Debug().Str("message", prof.Message).Msg("profile not available")
		return &model.Profile{UserID: status.UserID, UserName: status.UserName}, nil
	}

	profile := *prof.User
	profile.UserName = status.UserName
	if profile.UserID == "" {
		profile.UserID = status.UserID
	}
	return &profile, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("order service %s: status %d: %s", path, resp.StatusCode, bytes.TrimSpace(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if cookie := ForwardedCookie(ctx); cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	return req, nil
}

type cookieKey struct{}

// WithForwardedCookie returns a context carrying the browser's Cookie
// header, sent along with every order service call made with it.
func WithForwardedCookie(ctx context.Context, cookie string) context.Context {
	return context.WithValue(ctx, cookieKey{}, cookie)
}

// ForwardedCookie returns the Cookie header stored by WithForwardedCookie.
func ForwardedCookie(ctx context.Context) string {
	v, _ := ctx.Value(cookieKey{}).(string)
	return v
}
