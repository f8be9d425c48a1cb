package loginflow

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Coordinator is the single source of truth for "is anything authenticating" and
// "what was the last error". The in-flight lock and lastError are only mutated
// through TryStart, ReportSuccess, ReportFailure and Reset.
type Coordinator struct {
	mu        sync.Mutex
	current   *Attempt
	lastError string

	nav   Navigator
	obs   Observer
	now   func() time.Time
	newID func() uuid.UUID
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithNavigator sets the receiver of the proceed signal.
func WithNavigator(n Navigator) Option {
	return func(c *Coordinator) {
		if n != nil {
			c.nav = n
		}
	}
}

// WithObserver sets the transition observer (metrics, logs).
func WithObserver(o Observer) Option {
	return func(c *Coordinator) {
		if o != nil {
			c.obs = o
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCoordinator returns an idle coordinator.
func NewCoordinator(opts ...Option) *Coordinator {
	c := &Coordinator{
		nav:   NavigatorFunc(func(Origin) {}),
		obs:   nopObserver{},
		now:   time.Now,
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TryStart admits origin when nothing is in flight. The check and the state change
// happen under the same lock, so of two concurrent callers only one is admitted.
// Admission discards the previous terminal attempt and clears the last error.
// A rejected start has no side effects besides notifying the observer.
func (c *Coordinator) TryStart(origin Origin) (Attempt, error) {
	if origin == OriginNone {
		return Attempt{}, ErrInvalidOrigin
	}

	c.mu.Lock()
	if c.current != nil && c.current.Status == StatusInFlight {
		owner := c.current.Origin
		c.mu.Unlock()
		c.obs.Rejected(origin, owner)
		return Attempt{}, ErrAlreadyInFlight
	}

	a := &Attempt{
		ID:        c.newID(),
		Origin:    origin,
		Status:    StatusInFlight,
		StartedAt: c.now(),
	}
	c.current = a
	c.lastError = ""
	admitted := *a
	c.mu.Unlock()

	c.obs.Admitted(admitted)
	return admitted, nil
}

// ReportSuccess resolves the in-flight attempt of origin as succeeded, clears the
// last error, releases the lock and emits one proceed signal.
func (c *Coordinator) ReportSuccess(origin Origin) error {
	a, err := c.resolve(origin, StatusSucceeded, "")
	if err != nil {
		return err
	}
	c.obs.Resolved(a)
	c.nav.Proceed(origin)
	return nil
}

// ReportFailure resolves the in-flight attempt of origin as failed and releases the
// lock. A blank message is replaced by FallbackMessage.
func (c *Coordinator) ReportFailure(origin Origin, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		message = FallbackMessage
	}
	a, err := c.resolve(origin, StatusFailed, message)
	if err != nil {
		return err
	}
	c.obs.Resolved(a)
	return nil
}

func (c *Coordinator) resolve(origin Origin, status Status, message string) (Attempt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || c.current.Status != StatusInFlight || c.current.Origin != origin {
		return Attempt{}, ErrNotInFlight
	}

	ended := c.now()
	c.current.Status = status
	c.current.EndedAt = &ended
	if status == StatusFailed {
		c.current.ErrorMessage = message
		c.lastError = message
	} else {
		c.lastError = ""
	}
	return cloneAttempt(c.current), nil
}

// Reset returns a terminal attempt to idle once the presentation layer rendered it.
// The last error stays visible until the next admitted start. No-op while in flight.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil && c.current.Status.Terminal() {
		c.current = nil
	}
}

// Abandon drops the in-flight attempt of a controller that is being discarded,
// after a provider redirect or when its login session expires. Observers get
// Abandoned instead of Resolved. It returns false when nothing was in flight.
func (c *Coordinator) Abandon() bool {
	c.mu.Lock()
	if c.current == nil || c.current.Status != StatusInFlight {
		c.mu.Unlock()
		return false
	}
	a := cloneAttempt(c.current)
	c.current = nil
	c.mu.Unlock()

	c.obs.Abandoned(a)
	return true
}

// Snapshot returns the current FlowState. It has no side effects.
func (c *Coordinator) Snapshot() FlowState {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := FlowState{LastError: c.lastError}
	if c.current != nil {
		a := cloneAttempt(c.current)
		st.Attempt = &a
		if a.Status == StatusInFlight {
			st.AnyInFlight = true
			st.ActiveOrigin = a.Origin
		}
	}
	return st
}

// Current returns a copy of the current attempt, if any.
func (c *Coordinator) Current() (Attempt, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Attempt{}, false
	}
	return cloneAttempt(c.current), true
}

func cloneAttempt(a *Attempt) Attempt {
	out := *a
	if a.EndedAt != nil {
		t := *a.EndedAt
		out.EndedAt = &t
	}
	return out
}
