package loginflow

import (
	"errors"
	"strings"
)

var (
	// ErrAlreadyInFlight is returned by TryStart while another attempt holds the gate.
	// Initiators swallow it: the UI is expected to have disabled its controls already.
	ErrAlreadyInFlight = errors.New("loginflow: an attempt is already in flight")

	// ErrNotInFlight is returned by the report operations when the origin does not own
	// the in-flight attempt (already resolved, never admitted, or someone else's).
	ErrNotInFlight = errors.New("loginflow: origin has no attempt in flight")

	// ErrInvalidOrigin is returned by TryStart for OriginNone.
	ErrInvalidOrigin = errors.New("loginflow: invalid origin")
)

const (
	// FallbackMessage is shown for credential failures the backend did not describe.
	FallbackMessage = "An unexpected error occurred. Please try again."

	// ProviderFallbackMessage is shown when a provider handshake fails without a message.
	ProviderFallbackMessage = "Authentication failed. Please try again."
)

// Rejection is implemented by errors the identity backend reported itself
// (wrong password, locked account, provider disabled, ...). Its message is
// shown to the user verbatim.
type Rejection interface {
	error
	RejectionMessage() string
}

// ErrorKind classifies a failed attempt.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindInvalidCredentials
	KindProviderHandshake
	KindUnclassified
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindProviderHandshake:
		return "provider_handshake"
	case KindUnclassified:
		return "unclassified"
	default:
		return "none"
	}
}

// classify maps a backend error to the message that reaches FlowState.LastError.
// Backend rejections keep their text; everything else gets the fixed fallback so
// the user never sees a blank or a transport error.
func classify(err error, rejected ErrorKind, fallback string) (ErrorKind, string) {
	var rej Rejection
	if errors.As(err, &rej) {
		if msg := strings.TrimSpace(rej.RejectionMessage()); msg != "" {
			return rejected, msg
		}
	}
	return KindUnclassified, fallback
}
