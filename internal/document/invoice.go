// Package document renders printable invoices.
package document

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/billbook/billbook/internal/bank"
	"github.com/billbook/billbook/internal/customer"
	"github.com/billbook/billbook/internal/invoice"
	"github.com/billbook/billbook/internal/project"
)

//go:embed templates/*.html
var templates embed.FS

var two = decimal.NewFromInt(2)

type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Issuer is the business printed in the From block.
type Issuer struct {
	Name    string
	Address string
	State   string
	GSTIN   string
}

// InvoiceDocument is everything printed on one invoice.
type InvoiceDocument struct {
	Issuer       Issuer
	Invoice      *invoice.Invoice
	Customer     *customer.Customer
	Project      *project.Project
	CompanyBank  *bank.Account
	CustomerBank *bank.Account
}

type Renderer struct {
	pdf PDFRenderer
	tpl *template.Template
}

func NewRenderer(pdf PDFRenderer) (*Renderer, error) {
	tpl, err := template.New("invoice.html").Funcs(template.FuncMap{
		"rupees":  Rupees,
		"percent": Percent,
		"half":    func(d decimal.Decimal) decimal.Decimal { return d.Div(two) },
		"date":    func(t time.Time) string { return t.Format("02 Jan 2006") },
		"address": formatAddress,
	}).ParseFS(templates, "templates/invoice.html")
	if err != nil {
		return nil, fmt.Errorf("parsing invoice template: %w", err)
	}

	return &Renderer{pdf: pdf, tpl: tpl}, nil
}

// Title is the document heading for the invoice type.
func Title(t invoice.Type) string {
	switch t {
	case invoice.TypeTaxInvoice:
		return "TAX INVOICE"
	case invoice.TypeProforma:
		return "PROFORMA INVOICE"
	default:
		return "INVOICE"
	}
}

// HTML renders the invoice page without converting it.
func (r *Renderer) HTML(doc InvoiceDocument) (string, error) {
	if doc.Invoice == nil {
		return "", fmt.Errorf("rendering invoice: no invoice")
	}

	var buf bytes.Buffer

	data := struct {
		InvoiceDocument
		Title string
	}{doc, Title(doc.Invoice.Type)}

	if err := r.tpl.ExecuteTemplate(&buf, "invoice.html", data); err != nil {
		return "", fmt.Errorf("rendering invoice: %w", err)
	}

	return buf.String(), nil
}

func (r *Renderer) PDF(ctx context.Context, doc InvoiceDocument) ([]byte, error) {
	html, err := r.HTML(doc)
	if err != nil {
		return nil, err
	}

	pdf, err := r.pdf.RenderHTML(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("converting invoice %s: %w", doc.Invoice.Number, err)
	}

	return pdf, nil
}

// Filename is the download name for an invoice PDF.
func Filename(inv *invoice.Invoice) string {
	return "invoice-" + inv.Number + ".pdf"
}

func formatAddress(a customer.Address) string {
	var parts []string

	for _, p := range []string{a.Street, a.City, a.State} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	s := strings.Join(parts, ", ")
	if a.Pincode != "" {
		s += " - " + a.Pincode
	}

	return s
}
