package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/hellojohn-login/internal/app"
	"github.com/dropDatabas3/hellojohn-login/internal/identity"
	"github.com/dropDatabas3/hellojohn-login/internal/loginflow"
	"github.com/dropDatabas3/hellojohn-login/internal/observability/logger"
)

var errLoginFailed = errors.New("login fallido")

func (c *cli) passwordCmd() *cobra.Command {
	var (
		email        string
		showPassword bool
		rememberMe   bool
		printTokens  bool
	)
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Login con email y password",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p := newPrompter(os.Stdin, cmd.ErrOrStderr())

			var session *identity.Session
			cont, err := c.container(ctx, app.WithSessionHandler(func(_ context.Context, s *identity.Session) {
				session = s
			}))
			if err != nil {
				return err
			}
			defer cont.Close()

			form := loginflow.Form{Email: email, RememberMe: rememberMe}
			if showPassword {
				form.TogglePasswordVisibility()
			}
			if form.Email == "" {
				if form.Email, err = p.line("Email: "); err != nil {
					return err
				}
			}
			if form.Password, err = p.secret("Password: ", form.RevealPassword); err != nil {
				return err
			}

			proceed := loginflow.NewProceedSignal()
			ctrl := cont.NewController(proceed)
			outcome := ctrl.Credentials().Submit(ctx, form)
			form.Clear()

			w := newPrinter(cmd.OutOrStdout(), c.out)
			state := ctrl.Snapshot()
			if _, ok := proceed.Fired(); ok {
				w.success(state, cont.Config.Login.ProceedTo, session, printTokens)
				return nil
			}
			w.state(state)
			if outcome != loginflow.OutcomeSucceeded {
				return errLoginFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email (si falta se pide por terminal)")
	cmd.Flags().BoolVar(&showPassword, "show-password", false, "Mostrar el password mientras se escribe")
	cmd.Flags().BoolVar(&rememberMe, "remember-me", false, "Recordarme (lo interpreta la capa de sesión)")
	cmd.Flags().BoolVar(&printTokens, "print-tokens", false, "Imprimir access/refresh token emitidos")
	return cmd
}

func (c *cli) oauthCmd() *cobra.Command {
	var origin string
	cmd := &cobra.Command{
		Use:   "oauth <provider>",
		Short: "Inicia el login con un provider y muestra la URL de autorización",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cont, err := c.container(ctx)
			if err != nil {
				return err
			}
			defer cont.Close()

			ctrl := cont.NewController(nil)
			l, ok := ctrl.Launcher(args[0])
			if !ok {
				return fmt.Errorf("provider %q no configurado (login.providers)", args[0])
			}
			if origin == "" {
				origin = cont.Config.Login.PageOrigin
			}

			redirect, outcome := l.Launch(ctx, origin)
			w := newPrinter(cmd.OutOrStdout(), c.out)
			if outcome != loginflow.OutcomeRedirected {
				w.state(ctrl.Snapshot())
				return errLoginFailed
			}
			w.redirect(redirect)
			return nil
		},
	}
	cmd.Flags().StringVar(&origin, "origin", "", "Origin de la página de login (default login.page_origin)")
	return cmd
}

func (c *cli) providersCmd() *cobra.Command {
	var origin string
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "Lista los providers configurados y su estado en el backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cont, err := c.container(ctx)
			if err != nil {
				return err
			}
			defer cont.Close()

			if origin == "" {
				origin = cont.Config.Login.PageOrigin
			}
			ctrl := cont.NewController(nil)

			var infos []identity.ProviderInfo
			if ls := ctrl.Launchers(); len(ls) > 0 {
				infos, err = cont.Identity.Providers(ctx, ls[0].RedirectTarget(origin))
				if err != nil {
					logger.From(ctx).Warn("provider discovery failed", logger.Err(err))
				}
			}
			newPrinter(cmd.OutOrStdout(), c.out).providers(ctrl.Launchers(), infos)
			return nil
		},
	}
	cmd.Flags().StringVar(&origin, "origin", "", "Origin de la página de login (default login.page_origin)")
	return cmd
}

func (c *cli) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Sirve la pantalla de login como API JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.Server.Addr = addr
			}
			cont, err := c.container(cmd.Context())
			if err != nil {
				return err
			}
			defer cont.Close()

			srv, err := cont.Server()
			if err != nil {
				return err
			}

			g, gctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return srv.ListenAndServe(gctx) })
			g.Go(func() error {
				// health del cache: solo loguea
				t := time.NewTicker(30 * time.Second)
				defer t.Stop()
				for {
					select {
					case <-gctx.Done():
						return nil
					case <-t.C:
						pctx, cancel := context.WithTimeout(gctx, 2*time.Second)
						if err := cont.Cache.Ping(pctx); err != nil {
							logger.L().Warn("cache ping failed", logger.Component("cache"), logger.Err(err))
						}
						cancel()
					}
				}
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Dirección de escucha (pisa server.addr)")
	return cmd
}
