package shop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMoney(t *testing.T) {
	f := DefaultFormat()
	assert.Equal(t, "$1,234.50", f.Money(1234.5))
	assert.Equal(t, "$0.00", f.Money(0))

	f = FormatFor(Settings{CurrencySymbol: "€"})
	assert.Equal(t, "€9.99", f.Money(9.99))
}

func TestPercentAndStars(t *testing.T) {
	assert.Equal(t, "15%", Percent(15))
	assert.Equal(t, "12.5%", Percent(12.5))
	assert.Equal(t, "★★★", Stars(3))
	assert.Equal(t, "★★★★★", Stars(9))
	assert.Equal(t, "", Stars(-1))
}

func TestAgo(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	f := Format{Currency: "$", Now: func() time.Time { return now }}

	assert.Equal(t, "2 days ago", f.Ago(now.Add(-48*time.Hour)))
	assert.Equal(t, "", f.Ago(time.Time{}))
}

func TestTimestampScan(t *testing.T) {
	var ts Timestamp
	assert.NoError(t, ts.Scan("2024-03-01T10:20:30Z"))
	assert.Equal(t, 2024, ts.Year())

	assert.NoError(t, ts.Scan([]byte("2024-03-02")))
	assert.Equal(t, 2, ts.Day())

	assert.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	assert.Error(t, ts.Scan("yesterday"))
	assert.Error(t, ts.Scan(3.5))

	v, err := Timestamp{time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}.Value()
	assert.NoError(t, err)
	assert.Equal(t, "2024-01-02T03:04:05Z", v)
}
