package stores

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/openbill/openbill/models"
	"github.com/openbill/openbill/utils"
)

type InvoiceStore struct {
	BaseStore
}

func CreateInvoiceStore(db *gorm.DB) *InvoiceStore {
	return &InvoiceStore{BaseStore{db: db}}
}

func (s *InvoiceStore) Create(ctx context.Context, invoice *models.Invoice) error {
	return s.GetDB(ctx).Create(invoice).Error
}

func (s *InvoiceStore) GetByNumber(ctx context.Context, invoiceNumber string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.GetDB(ctx).Preload("LineItems").First(&invoice, "invoice_number = ?", invoiceNumber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrInvoiceNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// Update persists the mutable fields and replaces the line items wholesale.
func (s *InvoiceStore) Update(ctx context.Context, invoice *models.Invoice) error {
	return s.WithTransaction(ctx, func(txCtx context.Context) error {
		db := s.GetDB(txCtx)
		if err := db.Delete(&models.LineItem{}, "invoice_id = ?", invoice.ID).Error; err != nil {
			return err
		}
		return db.Session(&gorm.Session{FullSaveAssociations: true}).Save(invoice).Error
	})
}

func (s *InvoiceStore) Delete(ctx context.Context, id uint) error {
	return s.WithTransaction(ctx, func(txCtx context.Context) error {
		db := s.GetDB(txCtx)
		if err := db.Delete(&models.LineItem{}, "invoice_id = ?", id).Error; err != nil {
			return err
		}
		return db.Delete(&models.Invoice{}, "id = ?", id).Error
	})
}

func (s *InvoiceStore) ListByBusiness(ctx context.Context, businessID uint) ([]models.Invoice, error) {
	return s.list(ctx, "business_id = ?", businessID)
}

func (s *InvoiceStore) ListByCustomer(ctx context.Context, customerID uint) ([]models.Invoice, error) {
	return s.list(ctx, "customer_id = ?", customerID)
}

// ListByUser returns invoices where the user is either side of the exchange.
func (s *InvoiceStore) ListByUser(ctx context.Context, userID uint) ([]models.Invoice, error) {
	return s.list(ctx, "business_id = ? OR customer_id = ?", userID, userID)
}

func (s *InvoiceStore) list(ctx context.Context, query string, args ...interface{}) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := s.GetDB(ctx).Preload("LineItems").
		Where(query, args...).
		Order("created_at DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}
