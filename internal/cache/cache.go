// Package cache provee un cache clave/valor con soporte multi-backend.
//
// Soporta:
//   - memory: in-process sobre go-cache (CLI, dev, un solo nodo)
//   - redis: compartido entre réplicas del servidor de login
//
// Se usa para el discovery de providers del backend de identidad y para los
// contadores del rate limit de login; nunca guarda credenciales ni tokens.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Client define las operaciones de cache.
type Client interface {
	// Get obtiene un valor. Retorna ErrNotFound si no existe o expiró.
	Get(ctx context.Context, key string) (string, error)

	// Set guarda un valor. ttl == 0 usa el TTL por defecto del cliente.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete elimina una key. No falla si no existe.
	Delete(ctx context.Context, key string) error

	// Incr suma 1 al contador key. El primer hit fija la expiración en window.
	// Devuelve el valor nuevo y el TTL restante.
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)

	// Ping verifica la conexión.
	Ping(ctx context.Context) error

	// Close libera recursos.
	Close() error
}

// Config para crear un cliente de cache.
type Config struct {
	Driver     string // "memory" | "redis"
	Addr       string // host:port (redis)
	Password   string
	DB         int
	Prefix     string        // prefijo para todas las keys
	DefaultTTL time.Duration // TTL cuando Set recibe 0
}

// ErrNotFound indica que la key no existe.
var ErrNotFound = errors.New("cache: key not found")

// IsNotFound verifica si el error es porque la key no existe.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// New crea un cliente de cache según la configuración.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "memory", "":
		return NewMemory(cfg), nil
	case "redis":
		return NewRedis(ctx, cfg)
	default:
		return nil, fmt.Errorf("cache: unknown driver %q", cfg.Driver)
	}
}

// prefixed une prefijo y key con un solo ":" ("hjlogin" y "hjlogin:" dan lo mismo).
func prefixed(prefix, k string) string {
	prefix = strings.TrimRight(prefix, ":")
	if prefix == "" {
		return k
	}
	return prefix + ":" + k
}
