package logger

import "go.uber.org/zap"

// =================================================================================
// CAMPOS - HTTP
// =================================================================================

func RequestID(v string) zap.Field   { return zap.String("request_id", v) }
func Method(v string) zap.Field      { return zap.String("method", v) }
func Path(v string) zap.Field        { return zap.String("path", v) }
func Status(v int) zap.Field         { return zap.Int("status", v) }
func Bytes(v int) zap.Field          { return zap.Int("bytes", v) }
func DurationMs(v int64) zap.Field   { return zap.Int64("duration_ms", v) }
func ClientIP(v string) zap.Field    { return zap.String("client_ip", v) }
func UpstreamURL(v string) zap.Field { return zap.String("upstream_url", v) }

// =================================================================================
// CAMPOS - LOGIN
// =================================================================================

// SessionID identifica la sesión de login (cookie), no la sesión autenticada.
func SessionID(v string) zap.Field { return zap.String("session_id", v) }

// AttemptID identifica un intento admitido por el coordinador.
func AttemptID(v string) zap.Field { return zap.String("attempt_id", v) }

// Origin es el iniciador del intento: "password" o "provider:<id>".
func Origin(v string) zap.Field { return zap.String("origin", v) }

func Provider(v string) zap.Field { return zap.String("provider", v) }
func Outcome(v string) zap.Field  { return zap.String("outcome", v) }
func TenantID(v string) zap.Field { return zap.String("tenant_id", v) }
func ClientID(v string) zap.Field { return zap.String("client_id", v) }

// Subject es el sub del access token emitido (nunca el token).
func Subject(v string) zap.Field { return zap.String("sub", v) }

// Email loguea el email enmascarado (a…@e….com).
func Email(v string) zap.Field { return zap.String("email", MaskEmail(v)) }

// =================================================================================
// CAMPOS - SISTEMA
// =================================================================================

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Err(err error) zap.Field      { return zap.Error(err) }

func String(key, v string) zap.Field    { return zap.String(key, v) }
func Int(key string, v int) zap.Field   { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
func Any(key string, v any) zap.Field   { return zap.Any(key, v) }
