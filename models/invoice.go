package models

import (
	"time"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"

	// InvoiceStatusReceived is a view-only status shown to the customer in
	// place of "sent". It is never persisted.
	InvoiceStatusReceived InvoiceStatus = "received"
)

type LineItemType string

const (
	LineItemTypeProduct LineItemType = "product"
	LineItemTypeService LineItemType = "service"
)

// Customer is the nested party an invoice is issued to.
type Customer struct {
	FullName    string  `json:"full_name"`
	PhoneNumber *string `json:"phone_number"`
}

type LineItem struct {
	ID               uint         `json:"-" gorm:"primaryKey"`
	InvoiceID        uint         `json:"-" gorm:"index"`
	ProductName      string       `json:"product_name" gorm:"not null"`
	UnitPrice        float64      `json:"unit_price" gorm:"not null"`
	Quantity         int          `json:"quantity" gorm:"not null"`
	Type             LineItemType `json:"type"`
	Description      string       `json:"description,omitempty"`
	TransactionValue float64      `json:"transaction_value" gorm:"not null"`
}

// Invoice is both the persisted entity and the wire shape. Guest-mode
// invoices use the same struct serialized into the local store; the
// database-only fields carry zero values there.
type Invoice struct {
	ID            uint          `json:"-" gorm:"primaryKey"`
	InvoiceNumber string        `json:"invoice_number" gorm:"uniqueIndex;not null"`
	BusinessID    uint          `json:"-" gorm:"index"`
	CustomerID    uint          `json:"-" gorm:"index"`
	Username      string        `json:"username" gorm:"-"`
	BusinessName  string        `json:"business_name" gorm:"not null"`
	Customer      Customer      `json:"customer" gorm:"-"`
	CustomerName  string        `json:"customer_name"`
	CustomerPhone *string       `json:"customer_phone"`
	LineItems     []LineItem    `json:"line_items" gorm:"constraint:OnDelete:CASCADE"`
	TotalAmount   float64       `json:"total_amount" gorm:"not null"`
	Status        InvoiceStatus `json:"status" gorm:"not null;default:'draft'"`
	DueDate       string        `json:"due_date"`
	Notes         string        `json:"notes"`
	CreatedAt     time.Time     `json:"created_at" gorm:"autoCreateTime"`
}

// LineItemInput is a line item as submitted by a caller, before its
// transaction value is derived.
type LineItemInput struct {
	ProductName string       `json:"product_name"`
	UnitPrice   float64      `json:"unit_price"`
	Quantity    int          `json:"quantity"`
	Type        LineItemType `json:"type"`
	Description string       `json:"description,omitempty"`
}

type CreateInvoiceRequest struct {
	Username      string          `json:"username"`
	BusinessName  string          `json:"business_name"`
	Customer      Customer        `json:"customer"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone *string         `json:"customer_phone,omitempty"`
	LineItems     []LineItemInput `json:"line_items"`
	TotalAmount   float64         `json:"total_amount"`
	Status        InvoiceStatus   `json:"status"`
	DueDate       string          `json:"due_date"`
	Notes         string          `json:"notes"`
}

// UpdateInvoiceRequest replaces the mutable invoice fields. LineItems is a
// full replacement, never a merge.
type UpdateInvoiceRequest struct {
	LineItems   []LineItemInput `json:"line_items"`
	TotalAmount float64         `json:"total_amount"`
	Status      InvoiceStatus   `json:"status"`
	DueDate     string          `json:"due_date"`
	Notes       string          `json:"notes"`
}

type DeleteInvoiceResponse struct {
	InvoiceNumber string `json:"invoice_number"`
	Status        string `json:"status"`
}

type InvoiceListResponse struct {
	Invoices []Invoice `json:"invoices"`
	Total    int       `json:"total"`
}
