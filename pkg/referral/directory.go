package referral

import (
	"context"
	"strings"
	"time"

	"github.com/jlcstudio/site-backend/pkg/models"
	"github.com/jlcstudio/site-backend/pkg/sheetstore"
)

// ReferrersSheet is the workbook tab holding referrer records
const ReferrersSheet = "Referrers"

// ReferrersHeader is the column layout of the Referrers sheet
var ReferrersHeader = []string{
	"Code", "Name", "Email", "Phone", "PaymentMethod", "PaymentDetails", "Created", "Status",
}

// Directory is the append-only referrer record store, keyed by referral
// code and by email. It does not enforce uniqueness itself: callers must
// check Exists/FindByEmail before Append, and the check-then-append
// sequence is not atomic against other writers of the workbook.
type Directory struct {
	store sheetstore.Store
}

// NewDirectory creates a referrer directory over the given store
func NewDirectory(store sheetstore.Store) *Directory {
	return &Directory{store: store}
}

// Exists reports whether any referrer record carries the exact code
func (d *Directory) Exists(ctx context.Context, code string) (bool, error) {
	rows, err := d.store.Rows(ctx, ReferrersSheet)
	if err != nil {
		return false, err
	}

	for _, row := range dataRows(rows) {
		if len(row) > 0 && row[0] == code {
			return true, nil
		}
	}
	return false, nil
}

// FindByEmail returns the referrer registered under the email, matching
// case-insensitively, or nil when no record exists.
func (d *Directory) FindByEmail(ctx context.Context, email string) (*models.Referrer, error) {
	rows, err := d.store.Rows(ctx, ReferrersSheet)
	if err != nil {
		return nil, err
	}

	for _, row := range dataRows(rows) {
		if len(row) > 2 && strings.EqualFold(row[2], email) {
			return referrerFromRow(row), nil
		}
	}
	return nil, nil
}

// Lookup returns the full referrer record for a code, or nil when the
// code is unknown.
func (d *Directory) Lookup(ctx context.Context, code string) (*models.Referrer, error) {
	rows, err := d.store.Rows(ctx, ReferrersSheet)
	if err != nil {
		return nil, err
	}

	for _, row := range dataRows(rows) {
		if len(row) > 0 && row[0] == code {
			return referrerFromRow(row), nil
		}
	}
	return nil, nil
}

// Append adds a new referrer record. Uniqueness of code and email is the
// caller's responsibility.
func (d *Directory) Append(ctx context.Context, r models.Referrer) error {
	return d.store.AppendRow(ctx, ReferrersSheet, []string{
		r.Code,
		r.Name,
		r.Email,
		r.Phone,
		r.PaymentMethod,
		r.PaymentDetails,
		r.CreatedAt.UTC().Format(time.RFC3339),
		r.Status,
	})
}

// dataRows strips the header row
func dataRows(rows [][]string) [][]string {
	if len(rows) <= 1 {
		return nil
	}
	return rows[1:]
}

func referrerFromRow(row []string) *models.Referrer {
	r := &models.Referrer{}
	get := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	r.Code = get(0)
	r.Name = get(1)
	r.Email = get(2)
	r.Phone = get(3)
	r.PaymentMethod = get(4)
	r.PaymentDetails = get(5)
	if t, err := time.Parse(time.RFC3339, get(6)); err == nil {
		r.CreatedAt = t
	}
	r.Status = get(7)
	return r
}
