package referral

import (
	"context"
	"time"

	"github.com/jlcstudio/site-backend/pkg/models"
	"github.com/jlcstudio/site-backend/pkg/sheetstore"
)

// ConversionsSheet is the workbook tab holding conversion records
const ConversionsSheet = "Conversions"

// ConversionsHeader is the column layout of the Conversions sheet
var ConversionsHeader = []string{
	"ReferralCode", "CustomerName", "CustomerEmail", "Service", "Amount", "Date", "PayoutStatus", "EventID",
}

// Ledger is the append-only log of purchases attributed to referral
// codes. The referral code column is not validated against the
// directory at storage time; rows with retired codes are possible.
type Ledger struct {
	store sheetstore.Store
}

// NewLedger creates a conversion ledger over the given store
func NewLedger(store sheetstore.Store) *Ledger {
	return &Ledger{store: store}
}

// Append records a conversion. PayoutStatus defaults to Pending and the
// amount is stored as a formatted dollar value, the way the operator
// reads the sheet.
func (l *Ledger) Append(ctx context.Context, c models.Conversion) error {
	status := c.PayoutStatus
	if status == "" {
		status = models.PayoutStatusPending
	}
	amount := c.Amount
	if amount == "" {
		amount = models.FormatUSD(c.AmountCents)
	}
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return l.store.AppendRow(ctx, ConversionsSheet, []string{
		c.ReferralCode,
		c.CustomerName,
		c.CustomerEmail,
		c.Service,
		amount,
		createdAt.UTC().Format(time.RFC3339),
		status,
		c.EventID,
	})
}

// HasEvent reports whether a conversion for the given upstream event ID
// was already recorded. Used to short-circuit webhook redeliveries.
func (l *Ledger) HasEvent(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, nil
	}

	rows, err := l.store.Rows(ctx, ConversionsSheet)
	if err != nil {
		return false, err
	}

	for _, row := range dataRows(rows) {
		if len(row) > 7 && row[7] == eventID {
			return true, nil
		}
	}
	return false, nil
}

// ListPending returns all conversions still awaiting payout
func (l *Ledger) ListPending(ctx context.Context) ([]models.Conversion, error) {
	rows, err := l.store.Rows(ctx, ConversionsSheet)
	if err != nil {
		return nil, err
	}

	var pending []models.Conversion
	for _, row := range dataRows(rows) {
		c := conversionFromRow(row)
		if c.PayoutStatus == models.PayoutStatusPending {
			pending = append(pending, c)
		}
	}
	return pending, nil
}

func conversionFromRow(row []string) models.Conversion {
	get := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	c := models.Conversion{
		ReferralCode:  get(0),
		CustomerName:  get(1),
		CustomerEmail: get(2),
		Service:       get(3),
		Amount:        get(4),
		PayoutStatus:  get(6),
		EventID:       get(7),
	}
	c.AmountCents = models.ParseUSD(c.Amount)
	if t, err := time.Parse(time.RFC3339, get(5)); err == nil {
		c.CreatedAt = t
	}
	return c
}
