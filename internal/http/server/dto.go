package server

import "github.com/dropDatabas3/hellojohn-login/internal/loginflow"

type passwordRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

type stateResponse struct {
	State     loginflow.FlowState `json:"state"`
	ProceedTo string              `json:"proceed_to,omitempty"`
}

type providerItem struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Icon        string `json:"icon,omitempty"`
	// Busy: este provider tiene el lock (spinner en su botón).
	Busy bool `json:"busy"`
	// Ready/Reason vienen del discovery del backend; nil si no se pudo consultar.
	Ready  *bool  `json:"ready,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type providersResponse struct {
	Providers []providerItem      `json:"providers"`
	State     loginflow.FlowState `json:"state"`
}
