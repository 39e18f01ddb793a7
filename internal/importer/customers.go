// Package importer reads customer spreadsheets exported from other billing tools.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/billbook/billbook/internal/apperr"
	"github.com/billbook/billbook/internal/customer"
	enc "github.com/billbook/billbook/internal/encoding"
)

type field int

const (
	fieldName field = iota
	fieldCompany
	fieldEmail
	fieldPhone
	fieldGSTIN
	fieldStreet
	fieldCity
	fieldState
	fieldPincode
	fieldCountry
)

// headers maps normalised header text to a customer field.
var headers = map[string]field{
	"name":          fieldName,
	"customer name": fieldName,
	"contact name":  fieldName,
	"company_name":  fieldCompany,
	"company name":  fieldCompany,
	"company":       fieldCompany,
	"email":         fieldEmail,
	"email address": fieldEmail,
	"phone":         fieldPhone,
	"mobile":        fieldPhone,
	"gstin":         fieldGSTIN,
	"gst number":    fieldGSTIN,
	"gst no":        fieldGSTIN,
	"street":        fieldStreet,
	"address":       fieldStreet,
	"city":          fieldCity,
	"state":         fieldState,
	"pincode":       fieldPincode,
	"pin code":      fieldPincode,
	"pin":           fieldPincode,
	"zip":           fieldPincode,
	"country":       fieldCountry,
}

var ErrNoNameColumn = errors.New("no name column in header")

type columns map[field]int

func (c columns) value(row []string, f field) string {
	idx, ok := c[f]
	if !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

// Result is a parsed upload.
type Result struct {
	Customers []customer.CreateParams
	Charset   string
}

// ParseCustomers reads a header-led CSV in any common charset. Comma and
// semicolon delimiters are both accepted. Blank rows are skipped; a row with
// data but no name fails the whole file with its line number.
func ParseCustomers(r io.Reader) (*Result, error) {
	utf8r, charset, err := enc.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	raw, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(string(raw)))
	reader.Comma = sniffDelimiter(string(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperr.Invalid("file", "unreadable csv: %v", err)
	}

	if len(rows) == 0 {
		return nil, apperr.Invalid("file", "is empty")
	}

	cols := mapHeader(rows[0])
	if _, ok := cols[fieldName]; !ok {
		return nil, apperr.Invalid("file", "%v", ErrNoNameColumn)
	}

	res := &Result{Charset: charset, Customers: []customer.CreateParams{}}

	for i, row := range rows[1:] {
		line := i + 2

		if blank(row) {
			continue
		}

		name := cols.value(row, fieldName)
		if name == "" {
			return nil, apperr.Invalid("row "+strconv.Itoa(line), "name is required")
		}

		res.Customers = append(res.Customers, customer.CreateParams{
			Name:        name,
			CompanyName: cols.value(row, fieldCompany),
			Email:       cols.value(row, fieldEmail),
			Phone:       cols.value(row, fieldPhone),
			GSTIN:       cols.value(row, fieldGSTIN),
			Address: customer.Address{
				Street:  cols.value(row, fieldStreet),
				City:    cols.value(row, fieldCity),
				State:   cols.value(row, fieldState),
				Pincode: cols.value(row, fieldPincode),
				Country: cols.value(row, fieldCountry),
			},
		})
	}

	return res, nil
}

func mapHeader(row []string) columns {
	cols := make(columns)

	for i, cell := range row {
		key := strings.ToLower(strings.TrimSpace(cell))
		key = strings.Join(strings.Fields(key), " ")

		f, ok := headers[key]
		if !ok {
			continue
		}

		if _, dup := cols[f]; !dup {
			cols[f] = i
		}
	}

	return cols
}

// sniffDelimiter picks ';' when the header line has more semicolons than commas.
func sniffDelimiter(s string) rune {
	header, _, _ := strings.Cut(s, "\n")
	if strings.Count(header, ";") > strings.Count(header, ",") {
		return ';'
	}

	return ','
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
