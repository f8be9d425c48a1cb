package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dropDatabas3/hellojohn-login/internal/identity"
	"github.com/dropDatabas3/hellojohn-login/internal/loginflow"
)

// printer escribe resultados en text o json (--out).
type printer struct {
	w    io.Writer
	json bool
}

func newPrinter(w io.Writer, format string) *printer {
	return &printer{w: w, json: strings.EqualFold(format, "json")}
}

func (p *printer) emit(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(p.w, string(b))
}

func (p *printer) state(st loginflow.FlowState) {
	if p.json {
		p.emit(map[string]any{"state": st})
		return
	}
	switch {
	case st.AnyInFlight:
		fmt.Fprintf(p.w, "en curso: %s\n", st.ActiveOrigin)
	case st.LastError != "":
		fmt.Fprintf(p.w, "error: %s\n", st.LastError)
	default:
		fmt.Fprintln(p.w, "ok")
	}
}

func (p *printer) success(st loginflow.FlowState, proceedTo string, s *identity.Session, withTokens bool) {
	if p.json {
		out := map[string]any{"state": st, "proceed_to": proceedTo}
		if s != nil {
			sess := map[string]any{"sub": s.Subject, "token_type": s.TokenType, "expires_at": s.ExpiresAt}
			if withTokens {
				sess["access_token"] = s.AccessToken
				sess["refresh_token"] = s.RefreshToken
			}
			out["session"] = sess
		}
		p.emit(out)
		return
	}
	fmt.Fprintf(p.w, "ok: autenticado, continuar en %s\n", proceedTo)
	if s == nil {
		return
	}
	if s.Subject != "" {
		fmt.Fprintf(p.w, "sub: %s\n", s.Subject)
	}
	if !s.ExpiresAt.IsZero() {
		fmt.Fprintf(p.w, "expira: %s\n", s.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
	}
	if withTokens {
		fmt.Fprintf(p.w, "access_token: %s\n", s.AccessToken)
		if s.RefreshToken != "" {
			fmt.Fprintf(p.w, "refresh_token: %s\n", s.RefreshToken)
		}
	}
}

func (p *printer) redirect(r loginflow.Redirect) {
	if p.json {
		p.emit(r)
		return
	}
	fmt.Fprintf(p.w, "abrí en el navegador para continuar con %s:\n%s\n", r.Provider, r.URL)
}

func (p *printer) providers(ls []*loginflow.ProviderLauncher, infos []identity.ProviderInfo) {
	type row struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		Ready       *bool  `json:"ready,omitempty"`
		Reason      string `json:"reason,omitempty"`
	}
	rows := make([]row, 0, len(ls))
	for _, l := range ls {
		d := l.Provider()
		r := row{ID: d.ID, DisplayName: d.DisplayName}
		if info, ok := identity.FindProvider(infos, d.ID); ok {
			ready := info.Enabled && info.Ready
			r.Ready = &ready
			r.Reason = info.Reason
		}
		rows = append(rows, r)
	}

	if p.json {
		p.emit(map[string]any{"providers": rows})
		return
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PROVIDER\tNOMBRE\tLISTO\tMOTIVO")
	for _, r := range rows {
		ready := "?"
		if r.Ready != nil {
			ready = fmt.Sprintf("%t", *r.Ready)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.DisplayName, ready, r.Reason)
	}
	_ = tw.Flush()
}
