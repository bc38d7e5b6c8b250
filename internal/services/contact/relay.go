package contact

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

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/LeonardoBeccarini/farmassist/internal/model"
)

// Relay delivers a contact message; one attempt, no retry.
type Relay interface {
	Send(ctx context.Context, msg model.ContactMessage) error
}

type EmailJSConfig struct {
	Endpoint   string
	ServiceID  string
	TemplateID string
	PublicKey  string
	Timeout    time.Duration
	// BreakerFailures consecutive failures open the breaker for BreakerOpenFor.
	BreakerFailures uint32
	BreakerOpenFor  time.Duration
}

// EmailJSRelay posta il form all'API REST di EmailJS, protetto da circuit breaker.
type EmailJSRelay struct {
	cfg     EmailJSConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  logrus.FieldLogger
}

var _ Relay = (*EmailJSRelay)(nil)

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

func NewEmailJSRelay(cfg EmailJSConfig, logger logrus.FieldLogger) *EmailJSRelay {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 3
	}
	logger = logger.WithField("component", "emailjs")
	return &EmailJSRelay{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "emailjs",
			Timeout: cfg.BreakerOpenFor,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= cfg.BreakerFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.WithFields(logrus.Fields{"from": from.String(), "to": to.String()}).Warn("breaker state changed")
			},
		}),
		logger: logger,
	}
}

func (r *EmailJSRelay) Send(ctx context.Context, msg model.ContactMessage) error {
	_, err := r.breaker.Execute(func() (interface{}, error) {
		return nil, r.post(ctx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("email relay unavailable: %w", err)
	}
	return err
}

func (r *EmailJSRelay) post(ctx context.Context, msg model.ContactMessage) error {
	body, err := json.Marshal(emailJSRequest{
		ServiceID:  r.cfg.ServiceID,
		TemplateID: r.cfg.TemplateID,
		UserID:     r.cfg.PublicKey,
		TemplateParams: map[string]string{
			"name":    msg.Name,
			"email":   msg.Email,
			"message": msg.Message,
		},
	})
	if err != nil {
		return fmt.Errorf("encode emailjs request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build emailjs request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("emailjs request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("emailjs status %d: %s", resp.StatusCode, strings.TrimSpace(string(text)))
	}
	r.logger.Debug("message relayed")
	return nil
}

// State reports the breaker state, for health endpoints.
func (r *EmailJSRelay) State() gobreaker.State {
	return r.breaker.State()
}
