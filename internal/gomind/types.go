// Package gomind wraps the GoMind platform REST API: identity verification,
// lab results, company products, health providers, and appointments.
package gomind

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Product is a bookable service offered by the user's company.
type Product struct {
	ID          int     `json:"id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price,omitempty"`
}

// Clinic is a health provider where appointments can be scheduled.
type Clinic struct {
	Name             string `json:"name"`
	HealthProviderID int    `json:"health_provider_id"`
}

// AuthResult is the outcome of verification-code authentication.
type AuthResult struct {
	Token     string
	CompanyID int
	UserID    string
	UserName  string
}

// AppointmentRequest is the booking payload for the appointments endpoint.
// UserID is a json.Number so numeric identifiers stay unquoted on the wire.
type AppointmentRequest struct {
	UserID           json.Number `json:"user_id"`
	ProductID        int         `json:"product_id"`
	HealthProviderID int         `json:"health_provider_id"`
	DateTime         string      `json:"date_time"`
}

// ErrNoResults indicates the backend returned an empty result set for the
// authenticated user.
var ErrNoResults = errors.New("gomind: paciente no identificado o sin resultados disponibles")

// APIError is a non-2xx response from any GoMind endpoint.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gomind: %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// UserNotFoundError indicates the identity service does not know the email.
type UserNotFoundError struct {
	Message string
}

func (e *UserNotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "Usuario no encontrado"
}

// InvalidCodeError indicates the backend rejected a verification code.
type InvalidCodeError struct {
	Message string
}

func (e *InvalidCodeError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gomind: código inválido: %s", e.Message)
	}
	return "gomind: código de verificación incorrecto"
}
