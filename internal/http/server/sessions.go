package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/dropDatabas3/hellojohn-login/internal/loginflow"
)

// ControllerFactory crea el controller de una sesión de login. nav recibe la señal
// de "autenticación completa" de esa sesión.
type ControllerFactory func(nav loginflow.Navigator) *loginflow.Controller

// loginSession es una vista de la pantalla de login: un controller y su señal.
type loginSession struct {
	id      string
	ctrl    *loginflow.Controller
	proceed *loginflow.ProceedSignal
}

// sessionStore guarda una sesión por cookie con TTL de inactividad. Una sesión que
// sale del store (discard o expiración) abandona su intento en vuelo.
type sessionStore struct {
	mu      sync.Mutex
	items   *gocache.Cache
	ttl     time.Duration
	factory ControllerFactory
}

func newSessionStore(ttl time.Duration, factory ControllerFactory) *sessionStore {
	items := gocache.New(ttl, ttl)
	items.OnEvicted(func(_ string, v any) {
		if sess, ok := v.(*loginSession); ok {
			sess.ctrl.Abandon()
		}
	})
	return &sessionStore{
		items:   items,
		ttl:     ttl,
		factory: factory,
	}
}

// get devuelve la sesión y renueva su TTL.
func (s *sessionStore) get(id string) (*loginSession, bool) {
	if id == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.items.Get(id)
	if !ok {
		return nil, false
	}
	sess := v.(*loginSession)
	s.items.Set(id, sess, s.ttl)
	return sess, true
}

func (s *sessionStore) create() *loginSession {
	sig := loginflow.NewProceedSignal()
	sess := &loginSession{
		id:      uuid.NewString(),
		ctrl:    s.factory(sig),
		proceed: sig,
	}
	s.mu.Lock()
	s.items.Set(sess.id, sess, s.ttl)
	s.mu.Unlock()
	return sess
}

// discard olvida la sesión (p.ej. después del redirect a un provider).
func (s *sessionStore) discard(id string) {
	s.mu.Lock()
	s.items.Delete(id)
	s.mu.Unlock()
}

func (s *sessionStore) count() int {
	return s.items.ItemCount()
}
