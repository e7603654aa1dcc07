// Package session carries the guest/authenticated mode as an explicit value
// instead of a hidden global flag, and routes invoice CRUD accordingly.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/openbill/openbill/guest"
	"github.com/openbill/openbill/migrate"
	"github.com/openbill/openbill/models"
	"github.com/openbill/openbill/utils"
)

type Mode string

const (
	ModeGuest         Mode = "guest"
	ModeAuthenticated Mode = "authenticated"
)

// Session is an immutable snapshot of who is operating. It is read once at
// dispatch time; a mode change never affects an operation already in flight.
type Session struct {
	Mode        Mode   `json:"mode"`
	Username    string `json:"username,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Token       string `json:"token,omitempty"`
}

func GuestSession() Session {
	return Session{Mode: ModeGuest}
}

// RemoteService is the hosted-API surface the session layer depends on.
// *client.Client satisfies it.
type RemoteService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	Register(ctx context.Context, req *models.RegisterRequest) (*models.UserResponse, error)
	CreateInvoice(ctx context.Context, req *models.CreateInvoiceRequest) (*models.Invoice, error)
	UpdateInvoice(ctx context.Context, invoiceNumber string, req *models.UpdateInvoiceRequest) (*models.Invoice, error)
	DeleteInvoice(ctx context.Context, invoiceNumber string) (*models.DeleteInvoiceResponse, error)
	ListByUser(ctx context.Context, username string) ([]models.Invoice, error)
	SetToken(token string)
}

// Migrator runs the one-shot guest-to-account transfer.
type Migrator interface {
	Run(ctx context.Context, username string) (*migrate.Report, error)
}

// Dispatcher routes every CRUD call to the guest repository or the remote
// service based on the session passed in. Guest and hosted invoices never
// share a persisted collection.
type Dispatcher struct {
	guest  *guest.Repository
	remote RemoteService
}

func NewDispatcher(guestRepo *guest.Repository, remote RemoteService) *Dispatcher {
	return &Dispatcher{guest: guestRepo, remote: remote}
}

func (d *Dispatcher) List(ctx context.Context, s Session) ([]models.Invoice, error) {
	if s.Mode == ModeGuest {
		return d.guest.List(ctx)
	}
	if s.Username == "" {
		return nil, utils.ErrNoUsername
	}
	return d.remote.ListByUser(ctx, s.Username)
}

func (d *Dispatcher) Create(ctx context.Context, s Session, req *models.CreateInvoiceRequest) (*models.Invoice, error) {
	if s.Mode == ModeGuest {
		return d.guest.Create(ctx, req)
	}
	return d.remote.CreateInvoice(ctx, req)
}

func (d *Dispatcher) Update(ctx context.Context, s Session, invoiceNumber string, req *models.UpdateInvoiceRequest) (*models.Invoice, error) {
	if s.Mode == ModeGuest {
		return d.guest.Update(ctx, invoiceNumber, req)
	}
	return d.remote.UpdateInvoice(ctx, invoiceNumber, req)
}

func (d *Dispatcher) Delete(ctx context.Context, s Session, invoiceNumber string) (*models.DeleteInvoiceResponse, error) {
	if s.Mode == ModeGuest {
		if err := d.guest.Delete(ctx, invoiceNumber); err != nil {
			return nil, err
		}
		return &models.DeleteInvoiceResponse{InvoiceNumber: invoiceNumber, Status: "deleted"}, nil
	}
	return d.remote.DeleteInvoice(ctx, invoiceNumber)
}

// Manager owns the current session and its transitions.
type Manager struct {
	remote   RemoteService
	guest    *guest.Repository
	migrator Migrator
	log      zerolog.Logger

	mu      sync.Mutex
	current Session
}

func NewManager(guestRepo *guest.Repository, remote RemoteService, migrator Migrator) *Manager {
	return &Manager{
		remote:   remote,
		guest:    guestRepo,
		migrator: migrator,
		log:      utils.WithComponent("session"),
		current:  GuestSession(),
	}
}

func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Manager) SetCurrent(s Session) {
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
}

// ContinueAsGuest switches to guest mode without touching stored data.
func (m *Manager) ContinueAsGuest() Session {
	s := GuestSession()
	m.SetCurrent(s)
	return s
}

// Login authenticates against the hosted service. When the user was in guest
// mode the migration coordinator fires exactly once before the mode flips;
// migration failures are reported but never block the login.
func (m *Manager) Login(ctx context.Context, req *models.LoginRequest) (Session, *migrate.Report, error) {
	wasGuest := m.Current().Mode == ModeGuest

	resp, err := m.remote.Login(ctx, req)
	if err != nil {
		return m.Current(), nil, err
	}
	m.remote.SetToken(resp.AccessToken)

	var report *migrate.Report
	if wasGuest {
		report, err = m.migrator.Run(ctx, resp.Username)
		if err != nil && !errors.Is(err, utils.ErrNoUsername) {
			m.log.Error().Err(err).Msg("guest migration did not settle cleanly")
		}
	}

	s := Session{
		Mode:        ModeAuthenticated,
		Username:    resp.Username,
		PhoneNumber: resp.PhoneNumber,
		Token:       resp.AccessToken,
	}
	m.SetCurrent(s)
	return s, report, nil
}

// Register creates an account and then logs into it, which also migrates any
// guest data.
func (m *Manager) Register(ctx context.Context, req *models.RegisterRequest) (Session, *migrate.Report, error) {
	if _, err := m.remote.Register(ctx, req); err != nil {
		return m.Current(), nil, err
	}
	return m.Login(ctx, &models.LoginRequest{
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	})
}

// Logout drops credentials and returns to guest mode.
func (m *Manager) Logout() Session {
	m.remote.SetToken("")
	return m.ContinueAsGuest()
}
