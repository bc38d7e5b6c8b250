package contact

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/LeonardoBeccarini/farmassist/internal/model"
)

// MaxSuccessFor bounds how long the success banner stays up.
const MaxSuccessFor = 3 * time.Second

// FailureMessage is shown when the relay rejects a message.
const FailureMessage = "Failed to send message. Please try again."

var (
	ErrInvalidForm = errors.New("invalid contact form")
	ErrSendFailed  = errors.New("send failed")
	ErrClosed      = errors.New("contact form closed")
)

// FormState is what the contact page renders.
type FormState struct {
	Fields    model.ContactMessage `json:"fields"`
	Submitted bool                 `json:"submitted"`
	Error     string               `json:"error,omitempty"`
}

// Form holds the contact page state. After a successful send the fields are
// cleared and Submitted stays true for successFor.
type Form struct {
	relay      Relay
	successFor time.Duration
	logger     logrus.FieldLogger

	mu         sync.Mutex
	fields     model.ContactMessage
	submitted  bool
	errMsg     string
	resetTimer *time.Timer
	closed     bool
}

func NewForm(relay Relay, successFor time.Duration, logger logrus.FieldLogger) *Form {
	if successFor <= 0 || successFor > MaxSuccessFor {
		successFor = MaxSuccessFor
	}
	return &Form{relay: relay, successFor: successFor, logger: logger.WithField("component", "contact-form")}
}

// Set updates a single field by name (name, email, message).
func (f *Form) Set(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch field {
	case "name":
		f.fields.Name = value
	case "email":
		f.fields.Email = value
	case "message":
		f.fields.Message = value
	default:
		return fmt.Errorf("%w: unknown field %q", ErrInvalidForm, field)
	}
	return nil
}

func (f *Form) SetFields(m model.ContactMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields = m
}

func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FormState{Fields: f.fields, Submitted: f.submitted, Error: f.errMsg}
}

// Submit sends the current fields through the relay.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	msg := f.fields
	f.errMsg = ""
	f.mu.Unlock()

	if err := validate(msg); err != nil {
		return err
	}

	err := f.relay.Send(ctx, msg)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	if err != nil {
		f.errMsg = FailureMessage
		f.logger.WithError(err).Warn("contact message not delivered")
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	f.submitted = true
	f.fields = model.ContactMessage{}
	if f.resetTimer != nil {
		f.resetTimer.Stop()
	}
	f.resetTimer = time.AfterFunc(f.successFor, f.clearSubmitted)
	f.logger.Info("contact message sent")
	return nil
}

func (f *Form) clearSubmitted() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = false
	f.resetTimer = nil
}

// Close stops the success timer; further submits fail with ErrClosed.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	if f.resetTimer != nil {
		f.resetTimer.Stop()
		f.resetTimer = nil
	}
}

func validate(m model.ContactMessage) error {
	var problems []string
	if strings.TrimSpace(m.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(m.Email) == "" {
		problems = append(problems, "email is required")
	} else if _, err := mail.ParseAddress(m.Email); err != nil {
		problems = append(problems, "email is not valid")
	}
	if strings.TrimSpace(m.Message) == "" {
		problems = append(problems, "message is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidForm, strings.Join(problems, "; "))
	}
	return nil
}
