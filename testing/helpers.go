package testing

import (
	"context"
	"time"

	"github.com/openbill/openbill/models"
)

func MockCustomerPhone() string {
	return "0712345678"
}

func MockCreateInvoiceRequest() *models.CreateInvoiceRequest {
	phone := MockCustomerPhone()
	return &models.CreateInvoiceRequest{
		Username:     "acme",
		BusinessName: "Acme Ltd",
		Customer: models.Customer{
			FullName:    "Jane Doe",
			PhoneNumber: &phone,
		},
		LineItems: []models.LineItemInput{
			{ProductName: "Widget", UnitPrice: 100, Quantity: 3, Type: models.LineItemTypeProduct},
			{ProductName: "Installation", UnitPrice: 50, Quantity: 1, Type: models.LineItemTypeService},
		},
		Status:  models.InvoiceStatusDraft,
		DueDate: "2026-09-30",
	}
}

func MockInvoice() *models.Invoice {
	phone := MockCustomerPhone()
	items, total := models.MaterializeLineItems(MockCreateInvoiceRequest().LineItems)
	return &models.Invoice{
		InvoiceNumber: "INV-1-00001",
		BusinessName:  "Acme Ltd",
		CustomerName:  "Jane Doe",
		CustomerPhone: &phone,
		Customer: models.Customer{
			FullName:    "Jane Doe",
			PhoneNumber: &phone,
		},
		LineItems:   items,
		TotalAmount: total,
		Status:      models.InvoiceStatusDraft,
		DueDate:     "2026-09-30",
		CreatedAt:   time.Now(),
	}
}

func MockRegisterRequest() *models.RegisterRequest {
	return &models.RegisterRequest{
		FullName:    "Jane Doe",
		PhoneNumber: MockCustomerPhone(),
		Password:    "s3cret",
	}
}

func MockContext() context.Context {
	return context.Background()
}

func MockContextWithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}
