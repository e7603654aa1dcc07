package session

import (
	"context"
	"errors"
	"testing"

	"github.com/openbill/openbill/guest"
	"github.com/openbill/openbill/localstore"
	"github.com/openbill/openbill/migrate"
	"github.com/openbill/openbill/models"
)

type fakeRemote struct {
	token       string
	loginErr    error
	createCalls int
	listCalls   int
}

func (f *fakeRemote) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.LoginResponse{
		AccessToken: "tok123",
		TokenType:   "bearer",
		Username:    "janedoe",
		PhoneNumber: req.PhoneNumber,
	}, nil
}

func (f *fakeRemote) Register(ctx context.Context, req *models.RegisterRequest) (*models.UserResponse, error) {
	return &models.UserResponse{Username: "janedoe", PhoneNumber: req.PhoneNumber}, nil
}

func (f *fakeRemote) CreateInvoice(ctx context.Context, req *models.CreateInvoiceRequest) (*models.Invoice, error) {
	f.createCalls++
	items, total := models.MaterializeLineItems(req.LineItems)
	return &models.Invoice{InvoiceNumber: "INV-1-00001", LineItems: items, TotalAmount: total}, nil
}

func (f *fakeRemote) UpdateInvoice(ctx context.Context, invoiceNumber string, req *models.UpdateInvoiceRequest) (*models.Invoice, error) {
	return &models.Invoice{InvoiceNumber: invoiceNumber}, nil
}

func (f *fakeRemote) DeleteInvoice(ctx context.Context, invoiceNumber string) (*models.DeleteInvoiceResponse, error) {
	return &models.DeleteInvoiceResponse{InvoiceNumber: invoiceNumber, Status: "deleted"}, nil
}

func (f *fakeRemote) ListByUser(ctx context.Context, username string) ([]models.Invoice, error) {
	f.listCalls++
	return []models.Invoice{}, nil
}

func (f *fakeRemote) SetToken(token string) { f.token = token }

func guestDraft() *models.CreateInvoiceRequest {
	phone := "0712345678"
	return &models.CreateInvoiceRequest{
		Username:     "guest",
		BusinessName: "Acme",
		Customer:     models.Customer{FullName: "Jane Doe", PhoneNumber: &phone},
		LineItems: []models.LineItemInput{
			{ProductName: "Widget", UnitPrice: 100, Quantity: 3},
		},
		Status: models.InvoiceStatusDraft,
	}
}

func newFixture() (*Manager, *Dispatcher, *fakeRemote, localstore.Store) {
	store := localstore.NewMemStore()
	repo := guest.NewRepository(store)
	remote := &fakeRemote{}
	manager := NewManager(repo, remote, migrate.NewCoordinator(repo, remote))
	return manager, NewDispatcher(repo, remote), remote, store
}

func TestDispatcher_GuestRouting(t *testing.T) {
	_, dispatcher, remote, _ := newFixture()
	ctx := context.Background()
	s := GuestSession()

	created, err := dispatcher.Create(ctx, s, guestDraft())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if remote.createCalls != 0 {
		t.Error("guest create reached the remote service")
	}

	invoices, err := dispatcher.List(ctx, s)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(invoices) != 1 {
		t.Errorf("len(invoices) = %d, want 1", len(invoices))
	}
	if remote.listCalls != 0 {
		t.Error("guest list reached the remote service")
	}

	resp, err := dispatcher.Delete(ctx, s, created.InvoiceNumber)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if resp.Status != "deleted" {
		t.Errorf("Status = %q", resp.Status)
	}
}

func TestDispatcher_AuthenticatedRouting(t *testing.T) {
	_, dispatcher, remote, _ := newFixture()
	ctx := context.Background()
	s := Session{Mode: ModeAuthenticated, Username: "janedoe"}

	if _, err := dispatcher.Create(ctx, s, guestDraft()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if remote.createCalls != 1 {
		t.Errorf("remote create calls = %d, want 1", remote.createCalls)
	}

	if _, err := dispatcher.List(ctx, s); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if remote.listCalls != 1 {
		t.Errorf("remote list calls = %d, want 1", remote.listCalls)
	}
}

func TestLogin_MigratesGuestData(t *testing.T) {
	manager, _, remote, store := newFixture()
	ctx := context.Background()

	repo := guest.NewRepository(store)
	if _, err := repo.Create(ctx, guestDraft()); err != nil {
		t.Fatal(err)
	}

	manager.ContinueAsGuest()
	s, report, err := manager.Login(ctx, &models.LoginRequest{PhoneNumber: "0712345678", Password: "pw"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if s.Mode != ModeAuthenticated || s.Username != "janedoe" {
		t.Errorf("session = %+v", s)
	}
	if remote.token != "tok123" {
		t.Errorf("token = %q, want installed before migration", remote.token)
	}
	if report == nil || report.Attempted != 1 || report.Succeeded != 1 {
		t.Errorf("report = %+v, want 1 attempted and succeeded", report)
	}
	if _, ok, _ := store.Get(guest.StorageKey); ok {
		t.Error("guest storage not cleared after login")
	}
}

func TestLogin_FromAuthenticatedDoesNotMigrate(t *testing.T) {
	manager, _, remote, _ := newFixture()
	ctx := context.Background()

	manager.SetCurrent(Session{Mode: ModeAuthenticated, Username: "janedoe"})
	_, report, err := manager.Login(ctx, &models.LoginRequest{PhoneNumber: "0712345678", Password: "pw"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if report != nil {
		t.Errorf("report = %+v, want no migration", report)
	}
	if remote.createCalls != 0 {
		t.Errorf("create calls = %d, want 0", remote.createCalls)
	}
}

func TestLogin_FailureKeepsGuestMode(t *testing.T) {
	manager, _, remote, store := newFixture()
	remote.loginErr = errors.New("invalid credentials")
	ctx := context.Background()

	repo := guest.NewRepository(store)
	if _, err := repo.Create(ctx, guestDraft()); err != nil {
		t.Fatal(err)
	}

	manager.ContinueAsGuest()
	if _, _, err := manager.Login(ctx, &models.LoginRequest{PhoneNumber: "x", Password: "y"}); err == nil {
		t.Fatal("Login() error = nil, want failure")
	}

	if manager.Current().Mode != ModeGuest {
		t.Error("mode flipped despite failed login")
	}
	if _, ok, _ := store.Get(guest.StorageKey); !ok {
		t.Error("guest data lost on failed login")
	}
}

func TestLogout_ReturnsToGuest(t *testing.T) {
	manager, _, remote, _ := newFixture()

	manager.SetCurrent(Session{Mode: ModeAuthenticated, Username: "janedoe", Token: "tok123"})
	s := manager.Logout()

	if s.Mode != ModeGuest || s.Username != "" {
		t.Errorf("session after logout = %+v", s)
	}
	if remote.token != "" {
		t.Errorf("token = %q, want cleared", remote.token)
	}
}
