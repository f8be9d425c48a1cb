package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/hellojohn-login/internal/http/errors"
	"github.com/dropDatabas3/hellojohn-login/internal/http/middlewares"
	"github.com/dropDatabas3/hellojohn-login/internal/loginflow"
	"github.com/dropDatabas3/hellojohn-login/internal/observability/logger"
)

// session obtiene la sesión de la cookie o crea una nueva.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *loginSession {
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		if sess, ok := s.sessions.get(c.Value); ok {
			return sess
		}
	}
	sess := s.sessions.create()
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    sess.id,
		Path:     "/",
		MaxAge:   int(s.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	writeJSON(w, http.StatusOK, stateResponse{State: sess.ctrl.Snapshot()})
}

func (s *Server) handlePassword(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	var req passwordRequest
	if err := readJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	ctx := logger.ToContext(r.Context(), logger.From(r.Context()).With(logger.SessionID(sess.id)))
	outcome := sess.ctrl.Credentials().Submit(ctx, loginflow.Form{
		Email:      req.Email,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	})

	switch outcome {
	case loginflow.OutcomeRejected:
		httperrors.WriteError(w, httperrors.ErrAlreadyInFlight)
		return
	case loginflow.OutcomeSucceeded:
		resp := stateResponse{State: sess.ctrl.Snapshot()}
		if _, ok := sess.proceed.Fired(); ok {
			resp.ProceedTo = s.cfg.ProceedTo
		}
		writeJSON(w, http.StatusOK, resp)
	default:
		writeJSON(w, http.StatusOK, stateResponse{State: sess.ctrl.Snapshot()})
	}
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	state := sess.ctrl.Snapshot()
	origin := pageOrigin(r)

	launchers := sess.ctrl.Launchers()
	items := make([]providerItem, 0, len(launchers))
	for _, l := range launchers {
		d := l.Provider()
		items = append(items, providerItem{
			ID:          d.ID,
			DisplayName: d.DisplayName,
			Icon:        d.Icon,
			Busy:        state.Busy(l.Origin()),
		})
	}

	if s.cfg.Directory != nil && len(launchers) > 0 {
		// Todos los launchers comparten redirect path: un solo discovery alcanza.
		infos, err := s.cfg.Directory.Providers(r.Context(), launchers[0].RedirectTarget(origin))
		if err != nil {
			logger.From(r.Context()).Warn("provider discovery failed", logger.Err(err))
		} else {
			for i := range items {
				for _, info := range infos {
					if strings.EqualFold(info.Name, items[i].ID) {
						ready := info.Enabled && info.Ready
						items[i].Ready = &ready
						items[i].Reason = info.Reason
						break
					}
				}
			}
		}
	}

	writeJSON(w, http.StatusOK, providersResponse{Providers: items, State: state})
}

func (s *Server) handleProviderLaunch(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	id := chi.URLParam(r, "provider")

	l, ok := sess.ctrl.Launcher(id)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrProviderNotFound.WithDetail(id))
		return
	}

	ctx := logger.ToContext(r.Context(), logger.From(r.Context()).With(logger.SessionID(sess.id)))
	redirect, outcome := l.Launch(ctx, pageOrigin(r))

	switch outcome {
	case loginflow.OutcomeRejected:
		httperrors.WriteError(w, httperrors.ErrAlreadyInFlight)
	case loginflow.OutcomeRedirected:
		// La página se va al provider: esta sesión de login no vuelve a usarse.
		s.sessions.discard(sess.id)
		http.SetCookie(w, &http.Cookie{
			Name:     s.cfg.CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.cfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, redirect)
	default:
		writeJSON(w, http.StatusOK, stateResponse{State: sess.ctrl.Snapshot()})
	}
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.ctrl.Coordinator().Reset()
	writeJSON(w, http.StatusOK, stateResponse{State: sess.ctrl.Snapshot()})
}

// pageOrigin es el origin de la página de login: header Origin si el navegador lo
// mandó, si no esquema + Host del request.
func pageOrigin(r *http.Request) string {
	if o := strings.TrimSpace(r.Header.Get("Origin")); o != "" && o != "null" {
		return strings.TrimRight(o, "/")
	}
	scheme := "http"
	if middlewares.IsHTTPS(r) {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
