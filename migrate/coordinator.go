// Package migrate moves guest-mode invoices into a freshly authenticated
// account. One shot, best effort: every invoice is submitted, every outcome
// is collected, and guest storage is cleared no matter how many failed.
package migrate

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/openbill/openbill/models"
	"github.com/openbill/openbill/utils"
)

// RemoteCreator is the one Remote Invoice Service call the coordinator uses.
type RemoteCreator interface {
	CreateInvoice(ctx context.Context, req *models.CreateInvoiceRequest) (*models.Invoice, error)
}

// GuestSource is the slice of the guest repository the coordinator needs.
type GuestSource interface {
	List(ctx context.Context) ([]models.Invoice, error)
	ClearAll(ctx context.Context) error
}

type Failure struct {
	// Index is the invoice's position in the guest array at dispatch time.
	Index         int
	InvoiceNumber string
	Err           error
}

type Report struct {
	Attempted int
	Succeeded int
	Failures  []Failure
}

type Coordinator struct {
	guest  GuestSource
	remote RemoteCreator
	log    zerolog.Logger
}

func NewCoordinator(guest GuestSource, remote RemoteCreator) *Coordinator {
	return &Coordinator{
		guest:  guest,
		remote: remote,
		log:    utils.WithComponent("migrate"),
	}
}

// Run migrates everything currently in guest storage to the account named by
// username. Submissions are dispatched concurrently and joined settle-all:
// failures are reported per index but never block other submissions or the
// final cleanup. Failed invoices are not retried and not preserved.
//
// With no resolved username the migration aborts before any network call and
// guest data is left untouched.
func (c *Coordinator) Run(ctx context.Context, username string) (*Report, error) {
	if username == "" {
		c.log.Warn().Msg("migration skipped: no username resolved")
		return nil, utils.ErrNoUsername
	}

	invoices, err := c.guest.List(ctx)
	if err != nil {
		return nil, utils.WrapError(err, "reading guest invoices")
	}

	report := &Report{Attempted: len(invoices)}
	results := make([]error, len(invoices))

	var wg sync.WaitGroup
	for i := range invoices {
		wg.Add(1)
		go func(index int, invoice models.Invoice) {
			defer wg.Done()
			_, err := c.remote.CreateInvoice(ctx, Transform(invoice, username))
			results[index] = err
		}(i, invoices[i])
	}
	wg.Wait()

	for i, err := range results {
		if err == nil {
			report.Succeeded++
			continue
		}
		report.Failures = append(report.Failures, Failure{
			Index:         i,
			InvoiceNumber: invoices[i].InvoiceNumber,
			Err:           err,
		})
		c.log.Error().
			Err(err).
			Int("index", i).
			Str("invoice_number", invoices[i].InvoiceNumber).
			Msg("invoice migration failed")
	}

	c.log.Info().
		Int("attempted", report.Attempted).
		Int("succeeded", report.Succeeded).
		Int("failed", len(report.Failures)).
		Msg("migration settled")

	if err := c.guest.ClearAll(ctx); err != nil {
		return report, utils.WrapError(err, "clearing guest storage")
	}
	return report, nil
}

// Transform maps a guest invoice to the hosted create-request shape. Server
// assigned and derived fields are stripped: the invoice number, the creation
// timestamp, and per-item transaction values. Customer projections are
// re-derived from the nested customer so the two can never disagree.
func Transform(invoice models.Invoice, username string) *models.CreateInvoiceRequest {
	return &models.CreateInvoiceRequest{
		Username:      username,
		BusinessName:  invoice.BusinessName,
		Customer:      invoice.Customer,
		CustomerName:  invoice.Customer.FullName,
		CustomerPhone: invoice.Customer.PhoneNumber,
		LineItems:     models.LineItemInputs(invoice.LineItems),
		TotalAmount:   invoice.TotalAmount,
		Status:        invoice.Status,
		DueDate:       invoice.DueDate,
		Notes:         invoice.Notes,
	}
}
