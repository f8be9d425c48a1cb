// Package logger provee un logger Zap singleton con scoping por contexto.
//
// # Decisiones
//
//   - Singleton: una sola instancia global, inicializada con Init() desde main.
//   - Context scoping: cada request o intento de login lleva su propio logger con
//     campos extra (request_id, session_id, attempt_id, origin) sin crear un core nuevo.
//   - Entornos: "dev" usa consola con colores, "prod" usa JSON.
//
// # Uso
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
//	defer logger.Sync()
//
//	log := logger.From(ctx).With(logger.Op("CredentialSubmitter.Submit"))
//	log.Warn("credential sign-in failed", logger.Origin("password"), logger.Err(err))
package logger
