// Package exchange submits orders to the OKX v5 REST API.
package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// DefaultBaseURL is the production REST endpoint.
const DefaultBaseURL = "https://www.okx.com"

const orderPath = "/api/v5/trade/order"

// Credentials hold one API key set.
type Credentials struct {
	APIKey     string
	SecretKey  string
	Passphrase string
}

// OrderRequest is the wire form of a market order. Field order matches the
// serialized body, which is part of the signed payload.
type OrderRequest struct {
	InstID  string `json:"instId"`
	TdMode  string `json:"tdMode"`
	Side    string `json:"side"`
	OrdType string `json:"ordType"`
	Sz      string `json:"sz"`
}

// Client signs and submits orders through a Transport.
type Client struct {
	creds     Credentials
	transport Transport
	simulated bool
	now       func() time.Time
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithSimulatedTrading routes orders to the exchange's demo environment.
func WithSimulatedTrading() ClientOption {
	return func(c *Client) {
		c.simulated = true
	}
}

// WithClock overrides the signing clock.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates an order client.
func NewClient(creds Credentials, transport Transport, opts ...ClientOption) *Client {
	c := &Client{
		creds:     creds,
		transport: transport,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateOrder signs and submits the order, returning the raw exchange
// response.
func (c *Client) CreateOrder(ctx context.Context, order OrderRequest) (json.RawMessage, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	headers := map[string]string{
		"Content-Type":         "application/json",
		"OK-ACCESS-KEY":        c.creds.APIKey,
		"OK-ACCESS-PASSPHRASE": c.creds.Passphrase,
		"OK-ACCESS-SIGN":       sign(c.creds.SecretKey, timestamp, http.MethodPost, orderPath, string(body)),
		"OK-ACCESS-TIMESTAMP":  timestamp,
	}
	if c.simulated {
		headers["x-simulated-trading"] = "1"
	}

	resp, err := c.transport.Post(ctx, orderPath, headers, body)
	if err != nil {
		return nil, fmt.Errorf("submit order: %w", err)
	}
	return resp, nil
}

// sign computes the OKX v5 request signature:
// base64(HMAC-SHA256(secret, timestamp + method + path + body)).
func sign(secret, timestamp, method, path, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + method + path + body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
