package paymentprovider

import (
	"fmt"
	"net/http"
)

// Категории ошибок шлюза.
const (
	CategoryAuth           = "auth"
	CategoryInvalidRequest = "invalid_request"
	CategoryTransient      = "transient"
)

// APIError представляет ошибку, возвращенную платежным шлюзом.
type APIError struct {
	StatusCode int    `json:"-"`
	Type       string `json:"type"`
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("payment gateway: status %d, type %s: %s", e.StatusCode, e.Type, e.Message)
}

// Category относит ошибку к одной из категорий для выбора реакции вызывающего кода.
func (e *APIError) Category() string {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return CategoryAuth
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return CategoryInvalidRequest
	default:
		return CategoryTransient
	}
}
