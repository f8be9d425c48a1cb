package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// CodeMFARequired lo genera el cliente cuando el login pide segundo factor,
// que esta superficie no implementa.
const CodeMFARequired = "MFA_REQUIRED"

// ErrMissingLocation se devuelve cuando el start social respondió sin Location.
var ErrMissingLocation = errors.New("identity: social start returned no location")

// APIError es un fallo reportado por el backend de identidad.
// Implementa loginflow.Rejection: Message se muestra tal cual al usuario.
type APIError struct {
	Status  int
	Code    string
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("identity: [%d %s] %s: %s", e.Status, e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("identity: [%d %s] %s", e.Status, e.Code, e.Message)
}

// RejectionMessage devuelve el texto para el usuario. Si el backend no mandó
// message, usa detail; si tampoco, queda vacío y el flujo usa su fallback.
func (e *APIError) RejectionMessage() string {
	if m := strings.TrimSpace(e.Message); m != "" {
		return m
	}
	return strings.TrimSpace(e.Detail)
}

// IsCode verifica si err es un APIError con el código dado.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// decodeError arma un APIError a partir de una respuesta no exitosa.
// 5xx no se considera rechazo del backend: se devuelve un error común para que
// el usuario vea el mensaje genérico y no un detalle interno.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("identity: backend status %d", resp.StatusCode)
	}

	var er errorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return fmt.Errorf("identity: unexpected status %d", resp.StatusCode)
	}
	msg := er.Message
	if msg == "" {
		msg = er.Error
	}
	return &APIError{
		Status:  resp.StatusCode,
		Code:    er.Code,
		Message: msg,
		Detail:  er.Detail,
	}
}
