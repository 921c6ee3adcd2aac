package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	testCases := []struct {
		input string
		ok    bool
	}{
		{"2025-10-01", true},
		{"2024-02-29", true},
		{"2025-1-05", false},
		{"2025-10-1", false},
		{"2025-02-30", false},
		{"2025/10/01", false},
		{"2025-10-01T00:00:00Z", false},
		{"", false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			d, err := ParseDate(tc.input)
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, tc.input, d.String())
			} else {
				assert.ErrorIs(t, err, ErrInvalidDate)
			}
		})
	}
}

func TestDateUnmarshalJSON(t *testing.T) {
	var body struct {
		Date Date `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2025-11-28"}`), &body))
	assert.Equal(t, Date("2025-11-28"), body.Date)

	err := json.Unmarshal([]byte(`{"date":"2025-11-8"}`), &body)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDateOrdersAsString(t *testing.T) {
	a := MustParseDate("2025-09-30")
	b := MustParseDate("2025-10-01")
	assert.True(t, a < b)
	assert.True(t, a.Time().Before(b.Time()))
}

func TestPeriod(t *testing.T) {
	p, err := NewPeriod(2024, 2)
	require.NoError(t, err)
	assert.Equal(t, Date("2024-02-01"), p.First())
	assert.Equal(t, Date("2024-02-29"), p.Last())
	assert.Equal(t, Period{Year: 2024, Month: time.January}, p.Prev())
	assert.Equal(t, Period{Year: 2023, Month: time.December}, Period{Year: 2024, Month: time.January}.Prev())
	assert.Equal(t, "2024-02", p.String())
	assert.True(t, Date("2024-02-15").In(p))
	assert.False(t, Date("2024-03-01").In(p))

	_, err = NewPeriod(2024, 13)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestParseAmount(t *testing.T) {
	testCases := map[string]float64{
		"1250.75":  1250.75,
		"1,250.75": 1250.75,
		"$-30":     -30,
		"-$30":     -30,
		"(12.50)":  -12.5,
		" 0 ":      0,
	}
	for input, expected := range testCases {
		got, err := ParseAmount(input)
		require.NoError(t, err, input)
		assert.InDelta(t, expected, got, 1e-9, input)
	}

	_, err := ParseAmount("ten")
	assert.Error(t, err)

	got, err := ParseAmount("9,999,999,999,999.99")
	require.NoError(t, err)
	assert.Equal(t, MaxAmount, got)
	_, err = ParseAmount("10000000000000")
	assert.Error(t, err)
	_, err = ParseAmount("-1e14")
	assert.Error(t, err)
}

func TestRoundCents(t *testing.T) {
	assert.Equal(t, 1045.0, RoundCents(1044.999999))
	assert.Equal(t, 10.13, RoundCents(10.125))
	assert.Equal(t, -10.13, RoundCents(-10.125))
}
