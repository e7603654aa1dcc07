// Package client is the HTTP/JSON client for the hosted invoice API. It is
// what guest mode migrates into and what authenticated sessions route their
// CRUD through.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/openbill/openbill/models"
	"github.com/openbill/openbill/utils"
)

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	c := NewClient(baseURL)
	c.httpClient = httpClient
	return c
}

// SetToken installs the bearer token used on authenticated routes.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Register(ctx context.Context, req *models.RegisterRequest) (*models.UserResponse, error) {
	var out models.UserResponse
	if err := c.do(ctx, http.MethodPost, "/users/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	var out models.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/users/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateInvoice(ctx context.Context, req *models.CreateInvoiceRequest) (*models.Invoice, error) {
	var out models.Invoice
	if err := c.do(ctx, http.MethodPost, "/invoices/create", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateInvoice(ctx context.Context, invoiceNumber string, req *models.UpdateInvoiceRequest) (*models.Invoice, error) {
	var out models.Invoice
	if err := c.do(ctx, http.MethodPut, "/invoices/edit/"+invoiceNumber, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteInvoice rides a PUT, matching the hosted API's soft-delete route.
func (c *Client) DeleteInvoice(ctx context.Context, invoiceNumber string) (*models.DeleteInvoiceResponse, error) {
	var out models.DeleteInvoiceResponse
	if err := c.do(ctx, http.MethodPut, "/invoices/delete/"+invoiceNumber, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListByUser(ctx context.Context, username string) ([]models.Invoice, error) {
	return c.list(ctx, "/invoices/user/"+username)
}

func (c *Client) ListBusiness(ctx context.Context, username string) ([]models.Invoice, error) {
	return c.list(ctx, "/invoices/business/"+username)
}

func (c *Client) ListCustomer(ctx context.Context, username string) ([]models.Invoice, error) {
	return c.list(ctx, "/invoices/customer/"+username)
}

func (c *Client) list(ctx context.Context, path string) ([]models.Invoice, error) {
	var out []models.Invoice
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return utils.WrapError(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.errorFromResponse(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return utils.WrapError(err, "decoding response")
	}
	return nil
}

func (c *Client) errorFromResponse(resp *http.Response) error {
	var apiErr struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error != "" {
		return utils.NewAPIError(resp.StatusCode, apiErr.Error)
	}
	return utils.NewAPIError(resp.StatusCode, fmt.Sprintf("server error: %d", resp.StatusCode))
}
