// Package paymentprovider содержит HTTP-клиент платежного шлюза.
package paymentprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

type Client struct {
	secretKey  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создает новый клиент платежного шлюза.
func NewClient(apiURL, secretKey string) *Client {
	return &Client{
		secretKey:  secretKey,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	url := c.apiURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Error APIError `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
			apiErr.Type = envelope.Error.Type
			apiErr.Message = envelope.Error.Message
			apiErr.Code = envelope.Error.Code
		}
		if apiErr.Message == "" {
			apiErr.Message = resp.Status
		}
		return apiErr
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

// CreateCustomer регистрирует клиента на стороне шлюза.
func (c *Client) CreateCustomer(ctx context.Context, reqParams CreateCustomerRequest) (*Customer, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/customers", reqParams)
	if err != nil {
		return nil, err
	}

	var customer Customer
	if err := c.do(req, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// CreatePaymentIntent создает намерение платежа за подписку.
func (c *Client) CreatePaymentIntent(ctx context.Context, reqParams CreatePaymentIntentRequest) (*PaymentIntent, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/payment_intents", reqParams)
	if err != nil {
		return nil, err
	}

	var intent PaymentIntent
	if err := c.do(req, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// GetSubscription запрашивает текущее состояние подписки на стороне шлюза.
func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/subscriptions/"+subscriptionID, nil)
	if err != nil {
		return nil, err
	}

	var subscription Subscription
	if err := c.do(req, &subscription); err != nil {
		return nil, err
	}
	return &subscription, nil
}
