package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/openbill/openbill/middleware"
	"github.com/openbill/openbill/models"
	"github.com/openbill/openbill/services"
	"github.com/openbill/openbill/utils"
)

type InvoiceHandler struct {
	invoiceService *services.InvoiceService
}

func CreateInvoiceHandler(invoiceService *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

func (h *InvoiceHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	invoice, err := h.invoiceService.Create(r.Context(), middleware.UsernameFromContext(r.Context()), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, invoice)
}

func (h *InvoiceHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	invoiceNumber := mux.Vars(r)["invoice_number"]

	var req models.UpdateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	invoice, err := h.invoiceService.Update(r.Context(), middleware.UsernameFromContext(r.Context()), invoiceNumber, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, invoice)
}

func (h *InvoiceHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	invoiceNumber := mux.Vars(r)["invoice_number"]

	resp, err := h.invoiceService.Delete(r.Context(), middleware.UsernameFromContext(r.Context()), invoiceNumber)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// List routes carry the username in the path; a caller may only read their
// own lists.
func (h *InvoiceHandler) HandleListUser(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.invoiceService.ListForUser)
}

func (h *InvoiceHandler) HandleListBusiness(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.invoiceService.ListForBusiness)
}

func (h *InvoiceHandler) HandleListCustomer(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.invoiceService.ListForCustomer)
}

func (h *InvoiceHandler) list(w http.ResponseWriter, r *http.Request, fetch func(context.Context, string) ([]models.InvoiceWithType, error)) {
	username := mux.Vars(r)["username"]
	if username != middleware.UsernameFromContext(r.Context()) {
		writeError(w, utils.ErrUsernameMismatch)
		return
	}

	invoices, err := fetch(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, invoices)
}
