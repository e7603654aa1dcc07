// Package guest implements invoice CRUD for users without an account. All
// records live in a single JSON array under one local store key; every
// mutation is a full read-modify-write of that array.
package guest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/openbill/openbill/localstore"
	"github.com/openbill/openbill/models"
	"github.com/openbill/openbill/utils"
)

// StorageKey is the single local store key holding guest invoices.
const StorageKey = "guest_invoices"

const numberPrefix = "GUEST-"

type Repository struct {
	store localstore.Store
	log   zerolog.Logger
	now   func() time.Time

	mu  sync.Mutex
	seq uint64
}

func NewRepository(store localstore.Store) *Repository {
	return &Repository{
		store: store,
		log:   utils.WithComponent("guest"),
		now:   time.Now,
	}
}

// List returns all guest invoices. A missing or unparsable store value means
// "no invoices yet", never an error.
func (r *Repository) List(ctx context.Context) ([]models.Invoice, error) {
	return r.load(), nil
}

// Create materializes the draft and appends it to the stored array. The
// returned record is fully derived: identifier, timestamp, per-item
// transaction values, total, and the customer projections.
func (r *Repository) Create(ctx context.Context, req *models.CreateInvoiceRequest) (*models.Invoice, error) {
	if err := models.ValidateLineItems(req.LineItems); err != nil {
		return nil, utils.WrapError(err, utils.ErrInvalidLineItems.Message)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	invoices := r.load()
	items, total := models.MaterializeLineItems(req.LineItems)

	invoice := models.Invoice{
		InvoiceNumber: r.nextNumber(invoices),
		Username:      req.Username,
		BusinessName:  req.BusinessName,
		Customer:      req.Customer,
		CustomerName:  req.Customer.FullName,
		CustomerPhone: req.Customer.PhoneNumber,
		LineItems:     items,
		TotalAmount:   total,
		Status:        req.Status,
		DueDate:       req.DueDate,
		Notes:         req.Notes,
		CreatedAt:     r.now(),
	}

	invoices = append(invoices, invoice)
	if err := r.save(invoices); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// Update merges the patch over the matching record. Line items are replaced
// wholesale and re-materialized; the invoice number and creation timestamp
// never change.
func (r *Repository) Update(ctx context.Context, invoiceNumber string, req *models.UpdateInvoiceRequest) (*models.Invoice, error) {
	if err := models.ValidateLineItems(req.LineItems); err != nil {
		return nil, utils.WrapError(err, utils.ErrInvalidLineItems.Message)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	invoices := r.load()
	index := -1
	for i := range invoices {
		if invoices[i].InvoiceNumber == invoiceNumber {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, utils.ErrInvoiceNotFound
	}

	items, total := models.MaterializeLineItems(req.LineItems)
	invoice := invoices[index]
	invoice.LineItems = items
	invoice.TotalAmount = total
	invoice.Status = req.Status
	invoice.DueDate = req.DueDate
	invoice.Notes = req.Notes
	invoices[index] = invoice

	if err := r.save(invoices); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// Delete removes the matching record. Deleting an absent invoice number is a
// no-op, so a second delete of the same invoice never fails.
func (r *Repository) Delete(ctx context.Context, invoiceNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	invoices := r.load()
	filtered := invoices[:0]
	for _, inv := range invoices {
		if inv.InvoiceNumber != invoiceNumber {
			filtered = append(filtered, inv)
		}
	}
	return r.save(filtered)
}

// ClearAll drops the storage key. Used for the explicit "clear my data"
// action and for post-migration cleanup.
func (r *Repository) ClearAll(ctx context.Context) error {
	return r.store.Remove(StorageKey)
}

func (r *Repository) load() []models.Invoice {
	raw, ok, err := r.store.Get(StorageKey)
	if err != nil || !ok {
		if err != nil {
			r.log.Warn().Err(err).Msg("reading guest store failed, treating as empty")
		}
		return []models.Invoice{}
	}

	var invoices []models.Invoice
	if err := json.Unmarshal([]byte(raw), &invoices); err != nil {
		r.log.Warn().Err(err).Msg("guest store is unparsable, treating as empty")
		return []models.Invoice{}
	}
	return invoices
}

func (r *Repository) save(invoices []models.Invoice) error {
	data, err := json.Marshal(invoices)
	if err != nil {
		return err
	}
	return r.store.Set(StorageKey, string(data))
}

// nextNumber hands out GUEST-<n> identifiers from a counter seeded once per
// process, skipping any number already present in the stored array.
func (r *Repository) nextNumber(existing []models.Invoice) string {
	if r.seq == 0 {
		r.seq = uint64(r.now().UnixNano() % 1_000_000)
		if r.seq == 0 {
			r.seq = 1
		}
	}

	taken := make(map[string]bool, len(existing))
	for _, inv := range existing {
		taken[inv.InvoiceNumber] = true
	}

	for {
		candidate := fmt.Sprintf("%s%d", numberPrefix, r.seq)
		r.seq++
		if !taken[candidate] {
			return candidate
		}
	}
}
