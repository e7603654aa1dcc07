package services

import (
	"context"
	"errors"
	"testing"

	"github.com/openbill/openbill/models"
	"github.com/openbill/openbill/utils"
)

func setupInvoiceService(t *testing.T) (*InvoiceService, *fakeUserStore, *fakeInvoiceStore, *fakeCache) {
	t.Helper()
	users := newFakeUserStore()
	invoices := newFakeInvoiceStore()
	listCache := newFakeCache()

	users.Create(context.Background(), &models.User{
		Username:    "acme",
		FullName:    "Acme Ltd",
		PhoneNumber: "0700000001",
	})
	return CreateInvoiceService(invoices, users, listCache), users, invoices, listCache
}

func createReq(customerPhone string) *models.CreateInvoiceRequest {
	var phone *string
	if customerPhone != "" {
		phone = &customerPhone
	}
	return &models.CreateInvoiceRequest{
		Username:     "acme",
		BusinessName: "Acme",
		Customer:     models.Customer{FullName: "Jane Doe", PhoneNumber: phone},
		LineItems: []models.LineItemInput{
			{ProductName: "Widget", UnitPrice: 100, Quantity: 3, Type: models.LineItemTypeProduct},
		},
		TotalAmount: 999, // deliberately wrong; the service derives the real total
		Status:      models.InvoiceStatusSent,
	}
}

func TestInvoiceService_Create(t *testing.T) {
	svc, users, _, _ := setupInvoiceService(t)
	ctx := context.Background()

	invoice, err := svc.Create(ctx, "acme", createReq("0712345678"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if invoice.InvoiceNumber != "INV-1-00001" {
		t.Errorf("InvoiceNumber = %q, want INV-1-00001", invoice.InvoiceNumber)
	}
	if invoice.TotalAmount != 300 {
		t.Errorf("TotalAmount = %v, want derived 300, not the submitted value", invoice.TotalAmount)
	}
	if invoice.LineItems[0].TransactionValue != 300 {
		t.Errorf("TransactionValue = %v, want 300", invoice.LineItems[0].TransactionValue)
	}

	// The unknown customer phone provisions an account.
	customer, err := users.GetByPhone(ctx, "0712345678")
	if err != nil {
		t.Fatalf("customer not provisioned: %v", err)
	}
	if customer.Username != "janedoe" {
		t.Errorf("customer username = %q", customer.Username)
	}
	if invoice.CustomerID != customer.ID {
		t.Errorf("CustomerID = %d, want %d", invoice.CustomerID, customer.ID)
	}

	stats, _ := users.GetStats(ctx, 1)
	if stats.TotalInvoicesSent != 1 {
		t.Errorf("business TotalInvoicesSent = %d, want 1", stats.TotalInvoicesSent)
	}
	customerStats, _ := users.GetStats(ctx, customer.ID)
	if customerStats.TotalInvoicesReceived != 1 {
		t.Errorf("customer TotalInvoicesReceived = %d, want 1", customerStats.TotalInvoicesReceived)
	}
}

func TestInvoiceService_Create_SequentialNumbers(t *testing.T) {
	svc, _, _, _ := setupInvoiceService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, "acme", createReq("0712345678"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Create(ctx, "acme", createReq("0712345678"))
	if err != nil {
		t.Fatal(err)
	}

	if first.InvoiceNumber != "INV-1-00001" || second.InvoiceNumber != "INV-1-00002" {
		t.Errorf("numbers = %q, %q", first.InvoiceNumber, second.InvoiceNumber)
	}
}

func TestInvoiceService_Create_UsernameMismatch(t *testing.T) {
	svc, _, _, _ := setupInvoiceService(t)

	req := createReq("0712345678")
	req.Username = "someoneelse"
	_, err := svc.Create(context.Background(), "acme", req)
	if !errors.Is(err, utils.ErrUsernameMismatch) {
		t.Errorf("Create() error = %v, want ErrUsernameMismatch", err)
	}
}

func TestInvoiceService_Create_UnknownCustomerNeedsName(t *testing.T) {
	svc, _, _, _ := setupInvoiceService(t)

	req := createReq("0712345678")
	req.Customer.FullName = ""
	_, err := svc.Create(context.Background(), "acme", req)
	if !errors.Is(err, utils.ErrCustomerNameMissing) {
		t.Errorf("Create() error = %v, want ErrCustomerNameMissing", err)
	}
}

func TestInvoiceService_Create_PaidUpdatesAmounts(t *testing.T) {
	svc, users, _, _ := setupInvoiceService(t)
	ctx := context.Background()

	req := createReq("0712345678")
	req.Status = models.InvoiceStatusPaid
	if _, err := svc.Create(ctx, "acme", req); err != nil {
		t.Fatal(err)
	}

	stats, _ := users.GetStats(ctx, 1)
	if stats.TotalAmountPaidIn != 300 {
		t.Errorf("business TotalAmountPaidIn = %v, want 300", stats.TotalAmountPaidIn)
	}
	customer, _ := users.GetByPhone(ctx, "0712345678")
	customerStats, _ := users.GetStats(ctx, customer.ID)
	if customerStats.TotalAmountPaidOut != 300 {
		t.Errorf("customer TotalAmountPaidOut = %v, want 300", customerStats.TotalAmountPaidOut)
	}
}

func TestInvoiceService_Update(t *testing.T) {
	svc, users, _, _ := setupInvoiceService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "acme", createReq("0712345678"))
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.Update(ctx, "acme", created.InvoiceNumber, &models.UpdateInvoiceRequest{
		LineItems: []models.LineItemInput{
			{ProductName: "Gadget", UnitPrice: 50, Quantity: 2},
		},
		Status:  models.InvoiceStatusPaid,
		DueDate: "2026-10-31",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.InvoiceNumber != created.InvoiceNumber {
		t.Error("invoice number changed on update")
	}
	if updated.TotalAmount != 100 {
		t.Errorf("TotalAmount = %v, want 100", updated.TotalAmount)
	}
	if len(updated.LineItems) != 1 || updated.LineItems[0].ProductName != "Gadget" {
		t.Errorf("line items not replaced: %+v", updated.LineItems)
	}

	// Transition to paid moves the amounts.
	stats, _ := users.GetStats(ctx, 1)
	if stats.TotalAmountPaidIn != 100 {
		t.Errorf("TotalAmountPaidIn = %v, want 100", stats.TotalAmountPaidIn)
	}
}

func TestInvoiceService_Update_NotOwner(t *testing.T) {
	svc, users, _, _ := setupInvoiceService(t)
	ctx := context.Background()

	users.Create(ctx, &models.User{Username: "rival", FullName: "Rival", PhoneNumber: "0700000002"})
	created, err := svc.Create(ctx, "acme", createReq("0712345678"))
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Update(ctx, "rival", created.InvoiceNumber, &models.UpdateInvoiceRequest{
		LineItems: []models.LineItemInput{{ProductName: "X", UnitPrice: 1, Quantity: 1}},
	})
	if !errors.Is(err, utils.ErrUsernameMismatch) {
		t.Errorf("Update() error = %v, want ErrUsernameMismatch", err)
	}
}

func TestInvoiceService_Update_NotFound(t *testing.T) {
	svc, _, _, _ := setupInvoiceService(t)

	_, err := svc.Update(context.Background(), "acme", "INV-1-99999", &models.UpdateInvoiceRequest{
		LineItems: []models.LineItemInput{{ProductName: "X", UnitPrice: 1, Quantity: 1}},
	})
	if !errors.Is(err, utils.ErrInvoiceNotFound) {
		t.Errorf("Update() error = %v, want ErrInvoiceNotFound", err)
	}
}

func TestInvoiceService_Delete(t *testing.T) {
	svc, _, invoices, _ := setupInvoiceService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "acme", createReq("0712345678"))
	if err != nil {
		t.Fatal(err)
	}

	resp, err := svc.Delete(ctx, "acme", created.InvoiceNumber)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if resp.InvoiceNumber != created.InvoiceNumber || resp.Status != "deleted" {
		t.Errorf("resp = %+v", resp)
	}
	if _, err := invoices.GetByNumber(ctx, created.InvoiceNumber); !errors.Is(err, utils.ErrInvoiceNotFound) {
		t.Error("invoice still present after delete")
	}
}

func TestInvoiceService_Lists(t *testing.T) {
	svc, _, _, listCache := setupInvoiceService(t)
	ctx := context.Background()

	req := createReq("0712345678")
	req.Status = models.InvoiceStatusSent
	if _, err := svc.Create(ctx, "acme", req); err != nil {
		t.Fatal(err)
	}

	t.Run("Business view", func(t *testing.T) {
		list, err := svc.ListForBusiness(ctx, "acme")
		if err != nil {
			t.Fatalf("ListForBusiness() error = %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("len = %d, want 1", len(list))
		}
		if list[0].Type != models.InvoiceViewBusiness {
			t.Errorf("Type = %q, want business", list[0].Type)
		}
		if list[0].Status != models.InvoiceStatusSent {
			t.Errorf("Status = %q, want sent for the issuer", list[0].Status)
		}
	})

	t.Run("Customer view substitutes received", func(t *testing.T) {
		list, err := svc.ListForCustomer(ctx, "janedoe")
		if err != nil {
			t.Fatalf("ListForCustomer() error = %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("len = %d, want 1", len(list))
		}
		if list[0].Type != models.InvoiceViewPersonal {
			t.Errorf("Type = %q, want personal", list[0].Type)
		}
		if list[0].Status != models.InvoiceStatusReceived {
			t.Errorf("Status = %q, want received substitution", list[0].Status)
		}
	})

	t.Run("Cached after first read", func(t *testing.T) {
		if _, ok := listCache.GetInvoiceList(ctx, "business", "acme"); !ok {
			t.Error("business list not cached")
		}
	})

	t.Run("Mutation invalidates", func(t *testing.T) {
		if _, err := svc.Create(ctx, "acme", createReq("0712345678")); err != nil {
			t.Fatal(err)
		}
		if _, ok := listCache.GetInvoiceList(ctx, "business", "acme"); ok {
			t.Error("business list still cached after create")
		}
		list, err := svc.ListForBusiness(ctx, "acme")
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 2 {
			t.Errorf("len = %d, want 2", len(list))
		}
	})
}
