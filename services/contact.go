package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-content-backend/errs"
	"github.com/rpupo63/portfolio-content-backend/models"
)

const DefaultNotifyTimeout = 10 * time.Second

// ContactStore persists contact submissions.
type ContactStore interface {
	Add(ctx context.Context, submission *models.ContactSubmission) error
}

type ContactConfig struct {
	// NotifyTimeout bounds the owner notification. The request's own deadline does not apply.
	NotifyTimeout time.Duration
}

type ContactInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Company   string `json:"company"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

type ContactResult struct {
	Submission *models.ContactSubmission
	Notified   bool
}

// ContactIntake validates and stores contact form submissions, then notifies the owner
// on a best-effort basis.
type ContactIntake struct {
	store    ContactStore
	notifier Notifier
	cfg      ContactConfig
	logger   zerolog.Logger
}

// NewContactIntake builds the intake. notifier may be nil, in which case nobody is notified.
func NewContactIntake(store ContactStore, notifier Notifier, cfg ContactConfig) *ContactIntake {
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = DefaultNotifyTimeout
	}
	return &ContactIntake{
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		logger:   log.With().Str("service", "contactIntake").Logger(),
	}
}

// Submit returns a validation error and writes nothing when a required field is missing.
// Once the submission is stored the call succeeds whatever happens to the notification.
func (c *ContactIntake) Submit(ctx context.Context, in ContactInput) (ContactResult, error) {
	submission := &models.ContactSubmission{
		Name:      in.Name,
		Email:     in.Email,
		Company:   in.Company,
		Subject:   in.Subject,
		Message:   in.Message,
		IPAddress: models.StringPtr(in.IPAddress),
		UserAgent: in.UserAgent,
	}
	submission.Normalize()
	if problems := submission.Validate(); len(problems) > 0 {
		return ContactResult{}, errs.NewValidationError(problems)
	}

	if err := c.store.Add(ctx, submission); err != nil {
		return ContactResult{}, err
	}

	result := ContactResult{Submission: submission}
	if c.notifier == nil {
		return result, nil
	}

	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.NotifyTimeout)
	defer cancel()

	if err := c.notifier.Notify(notifyCtx, *submission); err != nil {
		notifyErr := errs.NewExternalServiceError("contact notification", err)
		c.logger.Warn().
			Err(notifyErr).
			Str("submissionId", submission.ID.String()).
			Str("cause", err.Error()).
			Msg("Contact notification failed; submission kept")
		return result, nil
	}

	result.Notified = true
	c.logger.Info().Str("submissionId", submission.ID.String()).Msg("Contact notification sent")
	return result, nil
}
