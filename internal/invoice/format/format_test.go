package format

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRupiah(t *testing.T) {
	cases := []struct {
		amount int64
		want   string
	}{
		{0, "Rp0"},
		{999, "Rp999"},
		{1000, "Rp1.000"},
		{52800, "Rp52.800"},
		{252800, "Rp252.800"},
		{1000000, "Rp1.000.000"},
		{1234567890, "Rp1.234.567.890"},
	}

	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			got := FormatRupiah(tc.amount)
			assert.Equal(t, tc.want, got)
			assert.NotContains(t, got, ",")
		})
	}
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "0", FormatQuantity(0))
	assert.Equal(t, "1500", FormatQuantity(1500))
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", 20) + strings.Repeat("b", 10)
	require.Len(t, long, 30)

	got := Truncate(long, 25)
	assert.Equal(t, strings.Repeat("a", 20)+"bb...", got)
	assert.Len(t, []rune(got), 25)

	short := "Bingkai 3D"
	assert.Equal(t, short, Truncate(short, 25))

	exact := strings.Repeat("x", 25)
	assert.Equal(t, exact, Truncate(exact, 25))
}

func TestTruncateCountsRunes(t *testing.T) {
	name := strings.Repeat("é", 30)
	got := Truncate(name, 25)
	assert.Equal(t, strings.Repeat("é", 22)+"...", got)
}

func TestTruncateTinyLimit(t *testing.T) {
	assert.Equal(t, "ab", Truncate("abcdef", 2))
	assert.Equal(t, "", Truncate("abcdef", 0))
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "-", Placeholder(""))
	assert.Equal(t, "-", Placeholder("   "))
	assert.Equal(t, "PT Maju", Placeholder("  PT Maju "))
}

func TestFormatInvoiceNumber(t *testing.T) {
	issuedAt := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

	got, err := FormatInvoiceNumber(DefaultInvoiceNumberTemplate, issuedAt, 7)
	require.NoError(t, err)
	assert.Equal(t, "INV/20240309/0007", got)

	got, err = FormatInvoiceNumber("BK-{YY}{MM}-{SEQ}", issuedAt, 42)
	require.NoError(t, err)
	assert.Equal(t, "BK-2403-42", got)
}

func TestFormatInvoiceNumberRejectsBadInput(t *testing.T) {
	issuedAt := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	_, err := FormatInvoiceNumber("", issuedAt, 1)
	assert.Error(t, err)

	_, err = FormatInvoiceNumber(DefaultInvoiceNumberTemplate, issuedAt, 0)
	assert.Error(t, err)

	_, err = FormatInvoiceNumber("INV-{HH}-{SEQ}", issuedAt, 1)
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	issuedAt := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "invoice-pt-maju-jaya-20240309.pdf", Filename("PT Maju Jaya", issuedAt))
	assert.Equal(t, "invoice-pelanggan-20240309.pdf", Filename("  ", issuedAt))
}
