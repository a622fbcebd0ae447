package referral

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlcstudio/site-backend/pkg/models"
	"github.com/jlcstudio/site-backend/pkg/sheetstore"
)

// newTestWorkbook creates a fresh workbook with both program sheets
func newTestWorkbook(t *testing.T) *sheetstore.Workbook {
	t.Helper()
	path := filepath.Join(t.TempDir(), "referrals.xlsx")
	wb, err := sheetstore.Open(path,
		sheetstore.Sheet{Name: ReferrersSheet, Header: ReferrersHeader},
		sheetstore.Sheet{Name: ConversionsSheet, Header: ConversionsHeader},
	)
	require.NoError(t, err)
	return wb
}

func testReferrer(code, email string) models.Referrer {
	return models.Referrer{
		Code:           code,
		Name:           "Sarah Mitchell",
		Email:          email,
		Phone:          "555-0142",
		PaymentMethod:  "venmo",
		PaymentDetails: "@sarah-m",
		CreatedAt:      time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		Status:         models.ReferrerStatusActive,
	}
}

func TestDirectory_AppendAndLookup(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory(newTestWorkbook(t))

	require.NoError(t, dir.Append(ctx, testReferrer("JLC-SM-A2B3", "sarah@example.com")))

	t.Run("Success - lookup by code", func(t *testing.T) {
		r, err := dir.Lookup(ctx, "JLC-SM-A2B3")
		require.NoError(t, err)
		require.NotNil(t, r)
		assert.Equal(t, "Sarah Mitchell", r.Name)
		assert.Equal(t, "sarah@example.com", r.Email)
		assert.Equal(t, "venmo", r.PaymentMethod)
		assert.Equal(t, "@sarah-m", r.PaymentDetails)
		assert.Equal(t, models.ReferrerStatusActive, r.Status)
		assert.Equal(t, time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC), r.CreatedAt)
	})

	t.Run("Success - unknown code returns nil", func(t *testing.T) {
		r, err := dir.Lookup(ctx, "JLC-XX-9999")
		require.NoError(t, err)
		assert.Nil(t, r)
	})
}

func TestDirectory_Exists(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory(newTestWorkbook(t))

	require.NoError(t, dir.Append(ctx, testReferrer("JLC-SM-A2B3", "sarah@example.com")))

	t.Run("Success - existing code", func(t *testing.T) {
		exists, err := dir.Exists(ctx, "JLC-SM-A2B3")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Success - code match is exact", func(t *testing.T) {
		exists, err := dir.Exists(ctx, "jlc-sm-a2b3")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Success - empty directory", func(t *testing.T) {
		empty := NewDirectory(newTestWorkbook(t))
		exists, err := empty.Exists(ctx, "JLC-SM-A2B3")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestDirectory_FindByEmail(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory(newTestWorkbook(t))

	require.NoError(t, dir.Append(ctx, testReferrer("JLC-SM-A2B3", "Sarah@Example.com")))

	t.Run("Success - case-insensitive match", func(t *testing.T) {
		r, err := dir.FindByEmail(ctx, "sarah@example.COM")
		require.NoError(t, err)
		require.NotNil(t, r)
		assert.Equal(t, "JLC-SM-A2B3", r.Code)
	})

	t.Run("Success - unknown email returns nil", func(t *testing.T) {
		r, err := dir.FindByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, r)
	})
}
