package loginflow

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/hellojohn-login/internal/observability/logger"
)

// CredentialBackend signs a user in with email and password.
// A nil error means the backend accepted the credentials and established a session.
// Errors implementing Rejection are backend-reported failures; anything else is
// treated as unclassified.
type CredentialBackend interface {
	SignInWithCredentials(ctx context.Context, email, password string) error
}

// Form is the transient email/password input. It is never persisted.
type Form struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	RevealPassword bool   `json:"reveal_password"`
	// RememberMe belongs to the session layer; this package only carries it.
	RememberMe bool `json:"remember_me"`
}

// TogglePasswordVisibility flips the password display toggle.
func (f *Form) TogglePasswordVisibility() { f.RevealPassword = !f.RevealPassword }

// Clear wipes the entered credentials. Toggles are kept.
func (f *Form) Clear() {
	f.Email = ""
	f.Password = ""
}

// Outcome is what an initiator did with a user action.
type Outcome int

const (
	// OutcomeRejected: the gate was held by another attempt; nothing happened.
	OutcomeRejected Outcome = iota
	OutcomeSucceeded
	OutcomeFailed
	// OutcomeRedirected: a provider authorization URL was obtained; control leaves the controller.
	OutcomeRedirected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeRedirected:
		return "redirected"
	default:
		return "rejected"
	}
}

// CredentialSubmitter issues a single sign-in request per admitted submission.
// No format validation and no retries: a failed attempt needs a new submission.
type CredentialSubmitter struct {
	coord   *Coordinator
	backend CredentialBackend
}

// NewCredentialSubmitter binds a submitter to a coordinator and a backend.
func NewCredentialSubmitter(coord *Coordinator, backend CredentialBackend) *CredentialSubmitter {
	return &CredentialSubmitter{coord: coord, backend: backend}
}

// Submit runs one credential attempt. The result is also visible through the
// coordinator's Snapshot.
func (s *CredentialSubmitter) Submit(ctx context.Context, form Form) Outcome {
	log := logger.From(ctx).With(logger.Op("CredentialSubmitter.Submit"), logger.Origin(OriginCredential.String()))

	attempt, err := s.coord.TryStart(OriginCredential)
	if err != nil {
		log.Debug("submission ignored", logger.Err(err))
		return OutcomeRejected
	}
	log = log.With(logger.AttemptID(attempt.ID.String()), logger.Email(form.Email))

	if err := s.signIn(ctx, form); err != nil {
		kind, msg := classify(err, KindInvalidCredentials, FallbackMessage)
		log.Warn("credential sign-in failed", logger.String("kind", kind.String()), logger.Err(err))
		if rerr := s.coord.ReportFailure(OriginCredential, msg); rerr != nil {
			log.Error("report failure refused", logger.Err(rerr))
		}
		return OutcomeFailed
	}

	if err := s.coord.ReportSuccess(OriginCredential); err != nil {
		log.Error("report success refused", logger.Err(err))
		return OutcomeFailed
	}
	log.Info("credential sign-in succeeded")
	return OutcomeSucceeded
}

// signIn makes the backend call. A panic inside the backend is turned into an
// unclassified error so the gate is always released.
func (s *CredentialSubmitter) signIn(ctx context.Context, form Form) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("loginflow: credential backend panic: %v", rec)
		}
	}()
	return s.backend.SignInWithCredentials(ctx, form.Email, form.Password)
}
