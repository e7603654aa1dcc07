package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/openbill/openbill/client"
	"github.com/openbill/openbill/guest"
	"github.com/openbill/openbill/localstore"
	"github.com/openbill/openbill/migrate"
	"github.com/openbill/openbill/models"
	"github.com/openbill/openbill/session"
)

const sessionKey = "session"

// app wires the client-side stack for one CLI invocation: local guest
// storage, the HTTP client, the migration coordinator and the session
// manager, with the previous session restored from disk.
type app struct {
	store      localstore.Store
	guest      *guest.Repository
	remote     *client.Client
	manager    *session.Manager
	dispatcher *session.Dispatcher
}

func newApp() (*app, error) {
	dir := os.Getenv("OPENBILL_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".openbill")
	}

	store, err := localstore.NewFileStore(dir)
	if err != nil {
		return nil, err
	}

	repo := guest.NewRepository(store)
	remote := client.NewClient(apiURL)
	manager := session.NewManager(repo, remote, migrate.NewCoordinator(repo, remote))

	a := &app{
		store:      store,
		guest:      repo,
		remote:     remote,
		manager:    manager,
		dispatcher: session.NewDispatcher(repo, remote),
	}

	if raw, ok, err := store.Get(sessionKey); err == nil && ok {
		var s session.Session
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			manager.SetCurrent(s)
			if s.Token != "" {
				remote.SetToken(s.Token)
			}
		}
	}

	return a, nil
}

func (a *app) saveSession(s session.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return a.store.Set(sessionKey, string(data))
}

func (a *app) printInvoice(invoice *models.Invoice) {
	fmt.Printf("%s  %s  %.2f  %s\n", invoice.InvoiceNumber, invoice.Status, invoice.TotalAmount, invoice.BusinessName)
	for _, item := range invoice.LineItems {
		fmt.Printf("    %s  %d x %.2f = %.2f\n", item.ProductName, item.Quantity, item.UnitPrice, item.TransactionValue)
	}
}

// parseLineItem turns "name:price:qty" or "name:price:qty:type" into a line
// item input.
func parseLineItem(spec string) (models.LineItemInput, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return models.LineItemInput{}, fmt.Errorf("invalid line item %q, want name:price:qty[:type]", spec)
	}

	price, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return models.LineItemInput{}, fmt.Errorf("invalid price in %q: %v", spec, err)
	}
	qty, err := strconv.Atoi(parts[2])
	if err != nil {
		return models.LineItemInput{}, fmt.Errorf("invalid quantity in %q: %v", spec, err)
	}

	item := models.LineItemInput{
		ProductName: parts[0],
		UnitPrice:   price,
		Quantity:    qty,
		Type:        models.LineItemTypeProduct,
	}
	if len(parts) == 4 {
		item.Type = models.LineItemType(parts[3])
	}
	return item, nil
}

func parseLineItems(specs []string) ([]models.LineItemInput, error) {
	items := make([]models.LineItemInput, 0, len(specs))
	for _, spec := range specs {
		item, err := parseLineItem(spec)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
