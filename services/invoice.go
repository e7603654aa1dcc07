package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/openbill/openbill/models"
	"github.com/openbill/openbill/security"
	"github.com/openbill/openbill/utils"
)

// InvoiceStore is the persistence surface the invoice service needs.
type InvoiceStore interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByNumber(ctx context.Context, invoiceNumber string) (*models.Invoice, error)
	Update(ctx context.Context, invoice *models.Invoice) error
	Delete(ctx context.Context, id uint) error
	ListByBusiness(ctx context.Context, businessID uint) ([]models.Invoice, error)
	ListByCustomer(ctx context.Context, customerID uint) ([]models.Invoice, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Invoice, error)
}

// ListCache holds rendered invoice lists keyed by view and username.
// *cache.RedisCache satisfies it; a nil cache disables caching.
type ListCache interface {
	GetInvoiceList(ctx context.Context, scope, username string) ([]models.InvoiceWithType, bool)
	SetInvoiceList(ctx context.Context, scope, username string, invoices []models.InvoiceWithType) error
	InvalidateInvoiceLists(ctx context.Context, username string) error
}

type InvoiceService struct {
	invoiceStore InvoiceStore
	userStore    UserStore
	cache        ListCache
	log          zerolog.Logger
}

func CreateInvoiceService(invoiceStore InvoiceStore, userStore UserStore, cache ListCache) *InvoiceService {
	return &InvoiceService{
		invoiceStore: invoiceStore,
		userStore:    userStore,
		cache:        cache,
		log:          utils.WithComponent("invoice_service"),
	}
}

// Create issues an invoice on behalf of the authenticated business user.
// Customers identified by an unknown phone number are provisioned as users on
// the spot so the invoice shows up on their side once they register through
// that number.
func (s *InvoiceService) Create(ctx context.Context, authUsername string, req *models.CreateInvoiceRequest) (*models.Invoice, error) {
	if req.Username != "" && req.Username != authUsername {
		return nil, utils.ErrUsernameMismatch
	}

	business, err := s.userStore.GetByUsername(ctx, authUsername)
	if err != nil {
		return nil, err
	}

	if err := models.ValidateLineItems(req.LineItems); err != nil {
		return nil, utils.NewAPIErrorWithDetails(400, "Invalid line items", err.Error())
	}
	items, total := models.MaterializeLineItems(req.LineItems)

	customerName, customerPhone := resolveCustomer(req)
	customer, err := s.findOrProvisionCustomer(ctx, customerName, customerPhone)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.InvoiceStatusDraft
	}

	stats, err := s.userStore.GetStats(ctx, business.ID)
	if err != nil {
		return nil, err
	}

	invoice := &models.Invoice{
		InvoiceNumber: fmt.Sprintf("INV-%d-%05d", business.ID, stats.TotalInvoicesSent+1),
		BusinessID:    business.ID,
		BusinessName:  req.BusinessName,
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
		LineItems:     items,
		TotalAmount:   total,
		Status:        status,
		DueDate:       req.DueDate,
		Notes:         req.Notes,
	}
	if invoice.BusinessName == "" {
		invoice.BusinessName = business.FullName
	}
	if customer != nil {
		invoice.CustomerID = customer.ID
	}

	if err := s.invoiceStore.Create(ctx, invoice); err != nil {
		return nil, err
	}

	stats.TotalInvoicesSent++
	if status == models.InvoiceStatusPaid {
		stats.TotalAmountPaidIn += total
	}
	if err := s.userStore.UpdateStats(ctx, stats); err != nil {
		return nil, err
	}
	if customer != nil {
		if err := s.bumpCustomerStats(ctx, customer.ID, func(stats *models.UserStats) {
			stats.TotalInvoicesReceived++
			if status == models.InvoiceStatusPaid {
				stats.TotalAmountPaidOut += total
			}
		}); err != nil {
			return nil, err
		}
	}

	s.invalidate(ctx, business.Username, customer)

	s.log.Info().
		Str("invoice_number", invoice.InvoiceNumber).
		Str("business", business.Username).
		Float64("total", total).
		Msg("invoice created")

	hydrate(invoice, business.Username)
	return invoice, nil
}

// Update replaces the mutable fields of an invoice. Only the issuing business
// can edit; the invoice number and creation time never change.
func (s *InvoiceService) Update(ctx context.Context, authUsername, invoiceNumber string, req *models.UpdateInvoiceRequest) (*models.Invoice, error) {
	invoice, business, err := s.getOwned(ctx, authUsername, invoiceNumber)
	if err != nil {
		return nil, err
	}

	if err := models.ValidateLineItems(req.LineItems); err != nil {
		return nil, utils.NewAPIErrorWithDetails(400, "Invalid line items", err.Error())
	}
	items, total := models.MaterializeLineItems(req.LineItems)

	wasPaid := invoice.Status == models.InvoiceStatusPaid

	invoice.LineItems = items
	invoice.TotalAmount = total
	invoice.Status = req.Status
	invoice.DueDate = req.DueDate
	invoice.Notes = req.Notes

	if err := s.invoiceStore.Update(ctx, invoice); err != nil {
		return nil, err
	}

	if !wasPaid && invoice.Status == models.InvoiceStatusPaid {
		stats, err := s.userStore.GetStats(ctx, business.ID)
		if err != nil {
			return nil, err
		}
		stats.TotalAmountPaidIn += total
		if err := s.userStore.UpdateStats(ctx, stats); err != nil {
			return nil, err
		}
		if invoice.CustomerID != 0 {
			if err := s.bumpCustomerStats(ctx, invoice.CustomerID, func(stats *models.UserStats) {
				stats.TotalAmountPaidOut += total
			}); err != nil {
				return nil, err
			}
		}
	}

	s.invalidateByID(ctx, business.Username, invoice.CustomerID)

	hydrate(invoice, business.Username)
	return invoice, nil
}

func (s *InvoiceService) Delete(ctx context.Context, authUsername, invoiceNumber string) (*models.DeleteInvoiceResponse, error) {
	invoice, business, err := s.getOwned(ctx, authUsername, invoiceNumber)
	if err != nil {
		return nil, err
	}

	if err := s.invoiceStore.Delete(ctx, invoice.ID); err != nil {
		return nil, err
	}

	s.invalidateByID(ctx, business.Username, invoice.CustomerID)

	s.log.Info().
		Str("invoice_number", invoiceNumber).
		Str("business", business.Username).
		Msg("invoice deleted")

	return &models.DeleteInvoiceResponse{
		InvoiceNumber: invoiceNumber,
		Status:        "deleted",
	}, nil
}

// ListForUser returns every invoice the user is a party to, tagged business or
// personal from their point of view.
func (s *InvoiceService) ListForUser(ctx context.Context, username string) ([]models.InvoiceWithType, error) {
	return s.listCached(ctx, "user", username, s.invoiceStore.ListByUser)
}

func (s *InvoiceService) ListForBusiness(ctx context.Context, username string) ([]models.InvoiceWithType, error) {
	return s.listCached(ctx, "business", username, s.invoiceStore.ListByBusiness)
}

func (s *InvoiceService) ListForCustomer(ctx context.Context, username string) ([]models.InvoiceWithType, error) {
	return s.listCached(ctx, "customer", username, s.invoiceStore.ListByCustomer)
}

func (s *InvoiceService) listCached(ctx context.Context, scope, username string, fetch func(context.Context, uint) ([]models.Invoice, error)) ([]models.InvoiceWithType, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetInvoiceList(ctx, scope, username); ok {
			return cached, nil
		}
	}

	user, err := s.userStore.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	invoices, err := fetch(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		hydrateOwner(&invoices[i], user)
	}

	tagged := models.ClassifyForViewer(invoices, user.PhoneNumber)
	if s.cache != nil {
		if err := s.cache.SetInvoiceList(ctx, scope, username, tagged); err != nil {
			s.log.Warn().Err(err).Str("scope", scope).Msg("caching invoice list failed")
		}
	}
	return tagged, nil
}

func (s *InvoiceService) getOwned(ctx context.Context, authUsername, invoiceNumber string) (*models.Invoice, *models.User, error) {
	invoice, err := s.invoiceStore.GetByNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, nil, err
	}
	business, err := s.userStore.GetByUsername(ctx, authUsername)
	if err != nil {
		return nil, nil, err
	}
	if invoice.BusinessID != business.ID {
		return nil, nil, utils.ErrUsernameMismatch
	}
	return invoice, business, nil
}

func (s *InvoiceService) findOrProvisionCustomer(ctx context.Context, name string, phone *string) (*models.User, error) {
	if phone == nil || *phone == "" {
		return nil, nil
	}

	customer, err := s.userStore.GetByPhone(ctx, *phone)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, utils.ErrUserNotFound) {
		return nil, err
	}

	if name == "" {
		return nil, utils.ErrCustomerNameMissing
	}

	username, err := uniqueUsername(ctx, s.userStore, name)
	if err != nil {
		return nil, err
	}
	hash, err := security.HashPassword(utils.GenerateRandomPassword(12))
	if err != nil {
		return nil, utils.WrapError(err, "hashing generated password")
	}

	customer = &models.User{
		Username:    username,
		FullName:    name,
		PhoneNumber: *phone,
		Password:    hash,
	}
	if err := s.userStore.Create(ctx, customer); err != nil {
		return nil, err
	}

	s.log.Info().Str("username", username).Msg("customer account provisioned")
	return customer, nil
}

func (s *InvoiceService) bumpCustomerStats(ctx context.Context, customerID uint, apply func(*models.UserStats)) error {
	stats, err := s.userStore.GetStats(ctx, customerID)
	if err != nil {
		return err
	}
	apply(stats)
	return s.userStore.UpdateStats(ctx, stats)
}

func (s *InvoiceService) invalidate(ctx context.Context, businessUsername string, customer *models.User) {
	if s.cache == nil {
		return
	}
	s.cache.InvalidateInvoiceLists(ctx, businessUsername)
	if customer != nil {
		s.cache.InvalidateInvoiceLists(ctx, customer.Username)
	}
}

func (s *InvoiceService) invalidateByID(ctx context.Context, businessUsername string, customerID uint) {
	if s.cache == nil {
		return
	}
	s.cache.InvalidateInvoiceLists(ctx, businessUsername)
	if customerID != 0 {
		if customer, err := s.userStore.GetByID(ctx, customerID); err == nil {
			s.cache.InvalidateInvoiceLists(ctx, customer.Username)
		}
	}
}

// resolveCustomer accepts both the nested customer object and the flat
// projection fields, preferring the nested form.
func resolveCustomer(req *models.CreateInvoiceRequest) (string, *string) {
	name := req.Customer.FullName
	if name == "" {
		name = req.CustomerName
	}
	phone := req.Customer.PhoneNumber
	if phone == nil {
		phone = req.CustomerPhone
	}
	return name, phone
}

func hydrate(invoice *models.Invoice, businessUsername string) {
	invoice.Username = businessUsername
	invoice.Customer = models.Customer{
		FullName:    invoice.CustomerName,
		PhoneNumber: invoice.CustomerPhone,
	}
}

func hydrateOwner(invoice *models.Invoice, viewer *models.User) {
	if invoice.BusinessID == viewer.ID {
		invoice.Username = viewer.Username
	}
	invoice.Customer = models.Customer{
		FullName:    invoice.CustomerName,
		PhoneNumber: invoice.CustomerPhone,
	}
}
