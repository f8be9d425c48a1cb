package identity

// Contratos del API v2 de HelloJohn que consume el login.

// loginRequest es el body de POST /v2/auth/login.
type loginRequest struct {
	TenantID string `json:"tenant_id"`
	ClientID string `json:"client_id"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse cubre ambas respuestas 200 de login: tokens o MFA requerido.
type loginResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`

	MFARequired bool     `json:"mfa_required"`
	MFAToken    string   `json:"mfa_token"`
	AMR         []string `json:"amr"`
}

// errorResponse es el cuerpo de error estándar del backend.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	// v1 y algunos helpers devuelven {"error": "..."}
	Error string `json:"error,omitempty"`
}

// ProviderInfo es una entrada de GET /v2/auth/providers.
type ProviderInfo struct {
	Name     string  `json:"name"`
	Enabled  bool    `json:"enabled"`
	Ready    bool    `json:"ready"`
	Popup    bool    `json:"popup"`
	StartURL *string `json:"start_url,omitempty"`
	Reason   string  `json:"reason,omitempty"`
}

type providersResponse struct {
	Providers []ProviderInfo `json:"providers"`
}
