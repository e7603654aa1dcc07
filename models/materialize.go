package models

import (
	"fmt"
)

// MaterializeLineItems derives each line item's transaction value and the
// invoice total. Every path that persists or returns an invoice goes through
// here, so the total invariant holds by construction.
func MaterializeLineItems(items []LineItemInput) ([]LineItem, float64) {
	out := make([]LineItem, 0, len(items))
	var total float64
	for _, item := range items {
		value := item.UnitPrice * float64(item.Quantity)
		out = append(out, LineItem{
			ProductName:      item.ProductName,
			UnitPrice:        item.UnitPrice,
			Quantity:         item.Quantity,
			Type:             item.Type,
			Description:      item.Description,
			TransactionValue: value,
		})
		total += value
	}
	return out, total
}

// ValidateLineItems rejects line items that could never be accepted by the
// hosted service: empty product names, negative prices, quantities below one.
func ValidateLineItems(items []LineItemInput) error {
	if len(items) == 0 {
		return fmt.Errorf("at least one line item is required")
	}
	for i, item := range items {
		if item.ProductName == "" {
			return fmt.Errorf("line item %d: product name is required", i)
		}
		if item.UnitPrice < 0 {
			return fmt.Errorf("line item %d: unit price must not be negative", i)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("line item %d: quantity must be at least 1", i)
		}
		if item.Type != "" && item.Type != LineItemTypeProduct && item.Type != LineItemTypeService {
			return fmt.Errorf("line item %d: unknown type %q", i, item.Type)
		}
	}
	return nil
}

// LineItemInputs converts materialized line items back into the submission
// shape, dropping the derived transaction value.
func LineItemInputs(items []LineItem) []LineItemInput {
	out := make([]LineItemInput, 0, len(items))
	for _, item := range items {
		out = append(out, LineItemInput{
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Type:        item.Type,
			Description: item.Description,
		})
	}
	return out
}
