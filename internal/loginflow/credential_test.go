package loginflow

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCredentialSubmitter_BackendMessageVerbatim(t *testing.T) {
	b := &fakeBackend{signInErr: fmt.Errorf("login: %w", rejection{msg: "Invalid login credentials"})}
	coord := NewCoordinator()
	s := NewCredentialSubmitter(coord, b)

	require.Equal(t, OutcomeFailed, s.Submit(context.Background(), Form{Email: "a@b.c", Password: "bad"}))
	require.Equal(t, "Invalid login credentials", coord.Snapshot().LastError)

	// the user may resubmit right away
	b.signInErr = nil
	require.Equal(t, OutcomeSucceeded, s.Submit(context.Background(), Form{Email: "a@b.c", Password: "good"}))
	require.Empty(t, coord.Snapshot().LastError)
	require.Equal(t, int32(2), b.signInCalls.Load())
}

func TestCredentialSubmitter_BlankRejectionUsesFallback(t *testing.T) {
	b := &fakeBackend{signInErr: rejection{msg: "  "}}
	coord := NewCoordinator()

	NewCredentialSubmitter(coord, b).Submit(context.Background(), Form{})
	require.Equal(t, FallbackMessage, coord.Snapshot().LastError)
}

func TestCredentialSubmitter_PanicReleasesGate(t *testing.T) {
	b := &fakeBackend{panicWith: "boom"}
	coord := NewCoordinator()

	out := NewCredentialSubmitter(coord, b).Submit(context.Background(), Form{Email: "a@b.c", Password: "x"})
	require.Equal(t, OutcomeFailed, out)

	st := coord.Snapshot()
	require.False(t, st.AnyInFlight)
	require.Equal(t, FallbackMessage, st.LastError)
}

func TestCredentialSubmitter_RejectedWhileInFlight(t *testing.T) {
	b := &fakeBackend{}
	coord := NewCoordinator()
	_, err := coord.TryStart(ProviderOrigin("google"))
	require.NoError(t, err)

	out := NewCredentialSubmitter(coord, b).Submit(context.Background(), Form{Email: "a@b.c", Password: "x"})
	require.Equal(t, OutcomeRejected, out)
	require.Zero(t, b.signInCalls.Load())
	require.Equal(t, ProviderOrigin("google"), coord.Snapshot().ActiveOrigin)
}

func TestCredentialSubmitter_ContextCanceled(t *testing.T) {
	b := &fakeBackend{gate: make(chan struct{})}
	coord := NewCoordinator()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := NewCredentialSubmitter(coord, b).Submit(ctx, Form{Email: "a@b.c", Password: "x"})
	require.Equal(t, OutcomeFailed, out)
	require.Equal(t, FallbackMessage, coord.Snapshot().LastError)
}

func TestForm_TogglePasswordVisibility(t *testing.T) {
	var f Form
	require.False(t, f.RevealPassword)
	f.TogglePasswordVisibility()
	require.True(t, f.RevealPassword)
	f.TogglePasswordVisibility()
	require.False(t, f.RevealPassword)
}

func TestForm_Clear(t *testing.T) {
	f := Form{Email: "a@b.c", Password: "secret", RevealPassword: true, RememberMe: true}
	f.Clear()
	require.Empty(t, f.Email)
	require.Empty(t, f.Password)
}
