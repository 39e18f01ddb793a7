package document_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billbook/billbook/internal/bank"
	"github.com/billbook/billbook/internal/customer"
	"github.com/billbook/billbook/internal/document"
	"github.com/billbook/billbook/internal/invoice"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleInvoice() *invoice.Invoice {
	return &invoice.Invoice{
		ID:     uuid.New(),
		Number: "INV-2024-0007",
		Date:   time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Type:   invoice.TypeTaxInvoice,
		Items: []invoice.LineItem{
			{Description: "Site survey", Quantity: dec("1"), Rate: dec("1000"), Amount: dec("1000")},
		},
		Subtotal:      dec("1000"),
		GSTApplicable: true,
		GSTRate:       dec("18"),
		CGST:          dec("90"),
		SGST:          dec("90"),
		IGST:          decimal.Zero,
		Total:         dec("1180"),
		Notes:         "<b>pay within 15 days</b>",
	}
}

func TestRupees(t *testing.T) {
	assert.Equal(t, "₹1,180.50", document.Rupees(dec("1180.5")))
	assert.Equal(t, "₹0.00", document.Rupees(decimal.Zero))
	assert.Equal(t, "₹90.00", document.Rupees(dec("89.999")))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "TAX INVOICE", document.Title(invoice.TypeTaxInvoice))
	assert.Equal(t, "PROFORMA INVOICE", document.Title(invoice.TypeProforma))
	assert.Equal(t, "INVOICE", document.Title(invoice.TypeNonTaxInvoice))
}

func TestRenderer_HTML(t *testing.T) {
	r, err := document.NewRenderer(nil)
	require.NoError(t, err)

	doc := document.InvoiceDocument{
		Issuer: document.Issuer{Name: "Billbook Services", State: "Maharashtra", GSTIN: "27AAACB1234C1Z5"},
		Invoice: sampleInvoice(),
		Customer: &customer.Customer{
			Name:    "Ramesh Gupta",
			GSTIN:   "27AAPFU0939F1ZV",
			Address: customer.Address{City: "Pune", State: "Maharashtra", Pincode: "411001"},
		},
		CompanyBank: &bank.Account{AccountHolderName: "Billbook Services", AccountNumber: "001234567890", IFSC: "HDFC0000123", BankName: "HDFC Bank", Branch: "Baner"},
	}

	html, err := r.HTML(doc)
	require.NoError(t, err)

	for _, want := range []string{
		"TAX INVOICE",
		"INV-2024-0007",
		"03 Jun 2024",
		"Pune, Maharashtra - 411001",
		"GSTIN: 27AAPFU0939F1ZV",
		"CGST (9%)",
		"SGST (9%)",
		"₹1,180.00",
		"HDFC Bank, Baner",
		"&lt;b&gt;pay within 15 days&lt;/b&gt;",
	} {
		assert.Contains(t, html, want)
	}

	assert.NotContains(t, html, "IGST")
	assert.NotContains(t, html, "Customer Bank")
}

func TestRenderer_HTML_InterState(t *testing.T) {
	r, err := document.NewRenderer(nil)
	require.NoError(t, err)

	inv := sampleInvoice()
	inv.CGST, inv.SGST, inv.IGST = decimal.Zero, decimal.Zero, dec("180")

	html, err := r.HTML(document.InvoiceDocument{Invoice: inv})
	require.NoError(t, err)

	assert.Contains(t, html, "IGST (18%)")
	assert.NotContains(t, html, "CGST")
	assert.NotContains(t, html, "Bill To")
}

func TestRenderer_PDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forms/chromium/convert/html", r.URL.Path)

		file, header, err := r.FormFile("files")
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		assert.Equal(t, "index.html", header.Filename)
		assert.Equal(t, "true", r.FormValue("printBackground"))

		body, _ := io.ReadAll(file)
		assert.Contains(t, string(body), "INV-2024-0007")

		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7 fake"))
	}))
	defer srv.Close()

	r, err := document.NewRenderer(document.NewClient(srv.URL + "/"))
	require.NoError(t, err)

	pdf, err := r.PDF(context.Background(), document.InvoiceDocument{Invoice: sampleInvoice()})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))
}

func TestClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		http.Error(w, "chromium crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := document.NewClient(srv.URL)

	err := c.Ping(context.Background())
	assert.ErrorContains(t, err, "503")

	_, err = c.RenderHTML(context.Background(), "<html></html>")
	assert.ErrorContains(t, err, "chromium crashed")
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "invoice-INV-2024-0007.pdf", document.Filename(sampleInvoice()))
}
