package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openbill/openbill/models"
	"github.com/openbill/openbill/utils"
)

func TestCreateInvoice(t *testing.T) {
	var gotAuth string
	var gotBody models.CreateInvoiceRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/invoices/create" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatal(err)
		}
		items, total := models.MaterializeLineItems(gotBody.LineItems)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.Invoice{
			InvoiceNumber: "INV-7-00001",
			BusinessName:  gotBody.BusinessName,
			LineItems:     items,
			TotalAmount:   total,
		})
	}))
	defer server.Close()

	c := NewClient(server.URL)
	c.SetToken("tok123")

	invoice, err := c.CreateInvoice(context.Background(), &models.CreateInvoiceRequest{
		Username:     "janedoe",
		BusinessName: "Acme",
		LineItems: []models.LineItemInput{
			{ProductName: "Widget", UnitPrice: 100, Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("CreateInvoice() error = %v", err)
	}

	if gotAuth != "Bearer tok123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody.Username != "janedoe" {
		t.Errorf("request username = %q", gotBody.Username)
	}
	if invoice.InvoiceNumber != "INV-7-00001" {
		t.Errorf("InvoiceNumber = %q", invoice.InvoiceNumber)
	}
	if invoice.TotalAmount != 300 {
		t.Errorf("TotalAmount = %v", invoice.TotalAmount)
	}
}

func TestUpdateInvoice_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invoice not found"})
	}))
	defer server.Close()

	c := NewClient(server.URL)
	_, err := c.UpdateInvoice(context.Background(), "INV-7-00099", &models.UpdateInvoiceRequest{})
	if err == nil {
		t.Fatal("UpdateInvoice() error = nil")
	}

	var apiErr *utils.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *utils.APIError", err)
	}
	if apiErr.Code != http.StatusNotFound {
		t.Errorf("Code = %d, want 404", apiErr.Code)
	}
	if apiErr.Message != "Invoice not found" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestDeleteInvoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/invoices/delete/INV-7-00001" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(models.DeleteInvoiceResponse{
			InvoiceNumber: "INV-7-00001",
			Status:        "deleted",
		})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).DeleteInvoice(context.Background(), "INV-7-00001")
	if err != nil {
		t.Fatalf("DeleteInvoice() error = %v", err)
	}
	if resp.Status != "deleted" {
		t.Errorf("Status = %q", resp.Status)
	}
}

func TestListByUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/invoices/user/janedoe" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]models.Invoice{
			{InvoiceNumber: "INV-7-00001"},
			{InvoiceNumber: "INV-7-00002"},
		})
	}))
	defer server.Close()

	invoices, err := NewClient(server.URL).ListByUser(context.Background(), "janedoe")
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(invoices) != 2 {
		t.Errorf("len = %d, want 2", len(invoices))
	}
}

func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.PhoneNumber != "0712345678" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(models.LoginResponse{
			AccessToken: "tok123",
			TokenType:   "bearer",
			Username:    "janedoe",
			PhoneNumber: req.PhoneNumber,
		})
	}))
	defer server.Close()

	c := NewClient(server.URL)
	resp, err := c.Login(context.Background(), &models.LoginRequest{PhoneNumber: "0712345678", Password: "pw"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.AccessToken != "tok123" || resp.Username != "janedoe" {
		t.Errorf("resp = %+v", resp)
	}

	_, err = c.Login(context.Background(), &models.LoginRequest{PhoneNumber: "bad", Password: "pw"})
	if err == nil {
		t.Error("Login() with bad credentials returned nil error")
	}
}
