package services

import (
	"context"
	"sort"

	"github.com/openbill/openbill/models"
	"github.com/openbill/openbill/utils"
)

type fakeUserStore struct {
	users  map[uint]*models.User
	stats  map[uint]*models.UserStats
	nextID uint
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users: make(map[uint]*models.User),
		stats: make(map[uint]*models.UserStats),
	}
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = user
	f.stats[user.ID] = &models.UserStats{UserID: user.ID}
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, utils.ErrUserNotFound
}

func (f *fakeUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, utils.ErrUserNotFound
}

func (f *fakeUserStore) GetByPhone(ctx context.Context, phoneNumber string) (*models.User, error) {
	for _, user := range f.users {
		if user.PhoneNumber == phoneNumber {
			return user, nil
		}
	}
	return nil, utils.ErrUserNotFound
}

func (f *fakeUserStore) UsernameTaken(ctx context.Context, username string) (bool, error) {
	_, err := f.GetByUsername(ctx, username)
	return err == nil, nil
}

func (f *fakeUserStore) GetStats(ctx context.Context, userID uint) (*models.UserStats, error) {
	if stats, ok := f.stats[userID]; ok {
		return stats, nil
	}
	return nil, utils.ErrUserNotFound
}

func (f *fakeUserStore) UpdateStats(ctx context.Context, stats *models.UserStats) error {
	f.stats[stats.UserID] = stats
	return nil
}

type fakeInvoiceStore struct {
	invoices map[uint]*models.Invoice
	nextID   uint
}

func newFakeInvoiceStore() *fakeInvoiceStore {
	return &fakeInvoiceStore{invoices: make(map[uint]*models.Invoice)}
}

func (f *fakeInvoiceStore) Create(ctx context.Context, invoice *models.Invoice) error {
	f.nextID++
	invoice.ID = f.nextID
	stored := *invoice
	f.invoices[invoice.ID] = &stored
	return nil
}

func (f *fakeInvoiceStore) GetByNumber(ctx context.Context, invoiceNumber string) (*models.Invoice, error) {
	for _, invoice := range f.invoices {
		if invoice.InvoiceNumber == invoiceNumber {
			copied := *invoice
			return &copied, nil
		}
	}
	return nil, utils.ErrInvoiceNotFound
}

func (f *fakeInvoiceStore) Update(ctx context.Context, invoice *models.Invoice) error {
	if _, ok := f.invoices[invoice.ID]; !ok {
		return utils.ErrInvoiceNotFound
	}
	stored := *invoice
	f.invoices[invoice.ID] = &stored
	return nil
}

func (f *fakeInvoiceStore) Delete(ctx context.Context, id uint) error {
	delete(f.invoices, id)
	return nil
}

func (f *fakeInvoiceStore) ListByBusiness(ctx context.Context, businessID uint) ([]models.Invoice, error) {
	return f.list(func(inv *models.Invoice) bool { return inv.BusinessID == businessID }), nil
}

func (f *fakeInvoiceStore) ListByCustomer(ctx context.Context, customerID uint) ([]models.Invoice, error) {
	return f.list(func(inv *models.Invoice) bool { return inv.CustomerID == customerID }), nil
}

func (f *fakeInvoiceStore) ListByUser(ctx context.Context, userID uint) ([]models.Invoice, error) {
	return f.list(func(inv *models.Invoice) bool {
		return inv.BusinessID == userID || inv.CustomerID == userID
	}), nil
}

func (f *fakeInvoiceStore) list(match func(*models.Invoice) bool) []models.Invoice {
	var out []models.Invoice
	for _, invoice := range f.invoices {
		if match(invoice) {
			out = append(out, *invoice)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeCache struct {
	lists         map[string][]models.InvoiceWithType
	invalidations []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{lists: make(map[string][]models.InvoiceWithType)}
}

func (f *fakeCache) GetInvoiceList(ctx context.Context, scope, username string) ([]models.InvoiceWithType, bool) {
	list, ok := f.lists[scope+":"+username]
	return list, ok
}

func (f *fakeCache) SetInvoiceList(ctx context.Context, scope, username string, invoices []models.InvoiceWithType) error {
	f.lists[scope+":"+username] = invoices
	return nil
}

func (f *fakeCache) InvalidateInvoiceLists(ctx context.Context, username string) error {
	for _, scope := range []string{"user", "business", "customer"} {
		delete(f.lists, scope+":"+username)
	}
	f.invalidations = append(f.invalidations, username)
	return nil
}
