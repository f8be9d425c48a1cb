package loginflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Origin identifies the initiator that owns an attempt. The zero value means "nobody".
type Origin string

const (
	OriginNone       Origin = ""
	OriginCredential Origin = "password"
)

const providerOriginPrefix = "provider:"

// ProviderOrigin returns the origin used by the launcher of the given provider.
func ProviderOrigin(providerID string) Origin {
	id := strings.ToLower(strings.TrimSpace(providerID))
	if id == "" {
		return OriginNone
	}
	return Origin(providerOriginPrefix + id)
}

// IsProvider reports whether the origin belongs to a provider launcher.
func (o Origin) IsProvider() bool {
	return strings.HasPrefix(string(o), providerOriginPrefix)
}

// Provider returns the provider id of a launcher origin, or "".
func (o Origin) Provider() string {
	if !o.IsProvider() {
		return ""
	}
	return strings.TrimPrefix(string(o), providerOriginPrefix)
}

func (o Origin) String() string {
	if o == OriginNone {
		return "none"
	}
	return string(o)
}

// Status is the lifecycle position of an attempt.
type Status int

const (
	StatusIdle Status = iota
	StatusInFlight
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusInFlight:
		return "in_flight"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Terminal reports whether s ends an attempt.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*s = StatusIdle
	case "in_flight":
		*s = StatusInFlight
	case "succeeded":
		*s = StatusSucceeded
	case "failed":
		*s = StatusFailed
	default:
		return fmt.Errorf("loginflow: unknown status %q", b)
	}
	return nil
}

// Attempt is one admitted authentication operation.
// ErrorMessage is only set when Status is StatusFailed.
type Attempt struct {
	ID           uuid.UUID  `json:"id"`
	Origin       Origin     `json:"origin"`
	Status       Status     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
}

// FlowState is the presentation-facing projection of the coordinator.
type FlowState struct {
	AnyInFlight  bool     `json:"any_in_flight"`
	ActiveOrigin Origin   `json:"active_origin,omitempty"`
	LastError    string   `json:"last_error,omitempty"`
	Attempt      *Attempt `json:"attempt,omitempty"`
}

// Busy reports whether the given origin is the one currently in flight.
// Used by presentation code to pick which control shows a spinner.
func (s FlowState) Busy(o Origin) bool {
	return s.AnyInFlight && s.ActiveOrigin == o
}
