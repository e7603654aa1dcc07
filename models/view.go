package models

type InvoiceViewType string

const (
	InvoiceViewBusiness InvoiceViewType = "business"
	InvoiceViewPersonal InvoiceViewType = "personal"
)

type InvoiceWithType struct {
	Invoice
	Type InvoiceViewType `json:"type"`
}

// ClassifyForViewer tags each invoice as business (issued by the viewer) or
// personal (issued to the viewer, matched by phone). Personal invoices that
// are "sent" show as "received"; the substitution is display-only and the
// stored status is untouched.
func ClassifyForViewer(invoices []Invoice, viewerPhone string) []InvoiceWithType {
	out := make([]InvoiceWithType, 0, len(invoices))
	for _, inv := range invoices {
		tagged := InvoiceWithType{Invoice: inv, Type: InvoiceViewBusiness}
		if inv.CustomerPhone != nil && *inv.CustomerPhone == viewerPhone {
			tagged.Type = InvoiceViewPersonal
			if tagged.Status == InvoiceStatusSent {
				tagged.Status = InvoiceStatusReceived
			}
		}
		out = append(out, tagged)
	}
	return out
}
