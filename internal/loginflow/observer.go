package loginflow

// Observer receives coordinator transitions. Calls happen after the coordinator
// released its lock, so implementations may call Snapshot.
type Observer interface {
	Admitted(a Attempt)
	Rejected(origin, owner Origin)
	Resolved(a Attempt)
	// Abandoned: the in-flight attempt was dropped with its controller and will
	// never be resolved.
	Abandoned(a Attempt)
}

// Observers fans out to several observers in order.
type Observers []Observer

func (m Observers) Admitted(a Attempt) {
	for _, o := range m {
		o.Admitted(a)
	}
}

func (m Observers) Rejected(origin, owner Origin) {
	for _, o := range m {
		o.Rejected(origin, owner)
	}
}

func (m Observers) Resolved(a Attempt) {
	for _, o := range m {
		o.Resolved(a)
	}
}

func (m Observers) Abandoned(a Attempt) {
	for _, o := range m {
		o.Abandoned(a)
	}
}

type nopObserver struct{}

func (nopObserver) Admitted(Attempt)        {}
func (nopObserver) Rejected(Origin, Origin) {}
func (nopObserver) Resolved(Attempt)        {}
func (nopObserver) Abandoned(Attempt)       {}

// Navigator consumes the "authentication completed" signal emitted after a
// successful credential sign-in. It carries no payload beyond the origin.
type Navigator interface {
	Proceed(origin Origin)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(origin Origin)

func (f NavigatorFunc) Proceed(origin Origin) { f(origin) }

// ProceedSignal is a Navigator backed by a buffered channel. Signals that nobody
// consumed are dropped instead of blocking the coordinator.
type ProceedSignal struct {
	ch chan Origin
}

// NewProceedSignal creates an empty signal.
func NewProceedSignal() *ProceedSignal {
	return &ProceedSignal{ch: make(chan Origin, 1)}
}

func (s *ProceedSignal) Proceed(origin Origin) {
	select {
	case s.ch <- origin:
	default:
	}
}

// Fired reports, without blocking, whether a signal is pending and consumes it.
func (s *ProceedSignal) Fired() (Origin, bool) {
	select {
	case o := <-s.ch:
		return o, true
	default:
		return OriginNone, false
	}
}
