// hjlogin es la pantalla de login de HelloJohn fuera del navegador: el mismo flujo
// (password + providers OAuth, un intento a la vez) desde la terminal, o servido
// como API JSON para un front-end con `hjlogin serve`.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellojohn-login/internal/app"
	"github.com/dropDatabas3/hellojohn-login/internal/config"
	"github.com/dropDatabas3/hellojohn-login/internal/observability/logger"
)

var version = "dev"

// cli guarda los flags globales y la config ya cargada.
type cli struct {
	configPath string
	envFile    string
	out        string
	logLevel   string

	cfg *config.Config
}

func main() {
	c := &cli{}

	root := &cobra.Command{
		Use:           "hjlogin",
		Short:         "Login de HelloJohn: password o provider OAuth, un intento a la vez",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", envOr("HJLOGIN_CONFIG", "hjlogin.yaml"), "ruta a hjlogin.yaml (env HJLOGIN_CONFIG; si no existe se usan defaults + env)")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "ruta a .env (si existe, se carga)")
	root.PersistentFlags().StringVar(&c.out, "out", "text", "Formato de salida: json|text")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Nivel de log (pisa app.log_level)")

	root.AddCommand(
		c.passwordCmd(),
		c.oauthCmd(),
		c.providersCmd(),
		c.serveCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		stop()
		os.Exit(1)
	}
}

func (c *cli) init() error {
	if c.envFile != "" {
		if _, err := os.Stat(c.envFile); err == nil {
			if err := godotenv.Load(c.envFile); err != nil {
				return fmt.Errorf("dotenv %s: %w", c.envFile, err)
			}
		}
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.App.LogLevel = c.logLevel
	}
	c.cfg = cfg

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: "hjlogin",
		Version:     version,
	})
	return nil
}

func (c *cli) container(ctx context.Context, opts ...app.Option) (*app.Container, error) {
	return app.Build(ctx, c.cfg, opts...)
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
