package loginflow

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// rejection mimics a backend-reported failure.
type rejection struct{ msg string }

func (r rejection) Error() string            { return "backend: " + r.msg }
func (r rejection) RejectionMessage() string { return r.msg }

// fakeBackend answers with preset results. When gate is set, calls block until it is
// closed, which keeps the attempt in flight while the test pokes the coordinator.
type fakeBackend struct {
	signInErr error
	authURL   string
	oauthErr  error
	panicWith any

	gate    chan struct{}
	entered chan struct{}

	signInCalls atomic.Int32
	oauthCalls  atomic.Int32

	mu           sync.Mutex
	lastTarget   string
	lastProvider string
}

func (f *fakeBackend) wait(ctx context.Context) error {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate == nil {
		return nil
	}
	select {
	case <-f.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeBackend) SignInWithCredentials(ctx context.Context, email, password string) error {
	f.signInCalls.Add(1)
	if err := f.wait(ctx); err != nil {
		return err
	}
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	return f.signInErr
}

func (f *fakeBackend) BeginOAuth(ctx context.Context, providerID, redirectTarget string) (string, error) {
	f.oauthCalls.Add(1)
	f.mu.Lock()
	f.lastTarget = redirectTarget
	f.lastProvider = providerID
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return "", err
	}
	if f.oauthErr != nil {
		return "", f.oauthErr
	}
	return f.authURL, nil
}

var errNetwork = errors.New("dial tcp 10.0.0.1:443: connect: connection refused")

// recorder is an Observer that keeps every transition.
type recorder struct {
	mu        sync.Mutex
	admitted  []Attempt
	rejected  []Origin
	resolved  []Attempt
	abandoned []Attempt
}

func (r *recorder) Admitted(a Attempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.admitted = append(r.admitted, a)
}

func (r *recorder) Rejected(origin, _ Origin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected = append(r.rejected, origin)
}

func (r *recorder) Resolved(a Attempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolved = append(r.resolved, a)
}

func (r *recorder) Abandoned(a Attempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.abandoned = append(r.abandoned, a)
}
