package paymentprovider

import "time"

// Customer представляет клиента платежного шлюза.
type Customer struct {
	ID        string            `json:"id"`
	Email     string            `json:"email"`
	Name      string            `json:"name"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// CreateCustomerRequest представляет запрос на создание клиента.
type CreateCustomerRequest struct {
	Email    string            `json:"email"`
	Name     string            `json:"name"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// PaymentIntent представляет намерение платежа.
type PaymentIntent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Status       string            `json:"status"` // например "succeeded" или "requires_payment_method"
	Amount       int64             `json:"amount"` // сумма в минимальных единицах валюты
	Currency     string            `json:"currency"`
	Customer     string            `json:"customer"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// CreatePaymentIntentRequest представляет запрос на создание намерения платежа.
type CreatePaymentIntentRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Customer string            `json:"customer"`
	Metadata map[string]string `json:"metadata,omitempty"` // user_uid, plan_type
}

// Subscription представляет подписку на стороне шлюза.
type Subscription struct {
	ID         string `json:"id"`
	Status     string `json:"status"` // active, past_due, canceled и т.д.
	CustomerID string `json:"customer"`
}

// IsActive сообщает, считается ли подписка действующей на стороне шлюза.
func (s *Subscription) IsActive() bool {
	return s.Status == "active" || s.Status == "trialing"
}
