package valuation

import (
	"testing"
	"time"

	"apartmentqueue/internal/types"
	"apartmentqueue/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func testSeries(t *testing.T) Series {
	t.Helper()
	series, err := NewSeries([]Point{
		{ValidFrom: utils.Date(2022, time.November, 25), Value: d("200")},
		{ValidFrom: utils.Date(2022, time.November, 23), Value: d("100")},
		{ValidFrom: utils.Date(2022, time.November, 24), Value: d("50")},
	})
	require.NoError(t, err)
	return series
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, d(expected).Equal(actual), "expected %s, got %s", expected, actual)
	assert.Equal(t, expected, actual.StringFixed(2))
}

func TestSeries_ValueAsOf(t *testing.T) {
	series := testSeries(t)

	tests := []struct {
		name     string
		date     time.Time
		expected string
		missing  bool
	}{
		{name: "exact first entry", date: utils.Date(2022, time.November, 23), expected: "100"},
		{name: "exact middle entry", date: utils.Date(2022, time.November, 24), expected: "50"},
		{name: "after last entry", date: utils.Date(2023, time.March, 1), expected: "200"},
		{name: "time of day ignored", date: time.Date(2022, time.November, 24, 23, 59, 0, 0, time.UTC), expected: "50"},
		{name: "before coverage", date: utils.Date(2022, time.November, 22), missing: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := series.ValueAsOf(tt.date)
			if tt.missing {
				var missing *types.MissingCostIndexError
				require.ErrorAs(t, err, &missing)
				assert.ErrorIs(t, err, types.ErrDomain)
				assert.Equal(t, utils.NormalizeDate(tt.date), missing.Date)
				return
			}
			require.NoError(t, err)
			assert.True(t, d(tt.expected).Equal(value))
		})
	}
}

func TestSeries_EmptyHasNoCoverage(t *testing.T) {
	series, err := NewSeries(nil)
	require.NoError(t, err)

	_, err = series.ValueAsOf(utils.Date(2022, time.November, 23))
	assert.ErrorIs(t, err, types.ErrDomain)
}

func TestNewSeries_Rejects(t *testing.T) {
	t.Run("duplicate dates", func(t *testing.T) {
		_, err := NewSeries([]Point{
			{ValidFrom: utils.Date(2022, time.November, 23), Value: d("100")},
			{ValidFrom: time.Date(2022, time.November, 23, 12, 0, 0, 0, time.UTC), Value: d("101")},
		})
		assert.ErrorIs(t, err, types.ErrDomain)
	})

	t.Run("zero value", func(t *testing.T) {
		_, err := NewSeries([]Point{{ValidFrom: utils.Date(2022, time.November, 23), Value: d("0")}})
		assert.ErrorIs(t, err, types.ErrDomain)
	})
}

func TestSeries_CalculateEndValue(t *testing.T) {
	series := testSeries(t)
	nov23 := utils.Date(2022, time.November, 23)
	nov24 := utils.Date(2022, time.November, 24)
	nov25 := utils.Date(2022, time.November, 25)

	tests := []struct {
		name       string
		startValue string
		start      time.Time
		end        time.Time
		adjustment string
		expected   string
	}{
		{name: "identity", startValue: "100.00", start: nov23, end: nov23, adjustment: "0", expected: "100.00"},
		{name: "doubling index", startValue: "100.00", start: nov23, end: nov25, adjustment: "0", expected: "200.00"},
		{name: "quadrupling index", startValue: "100.00", start: nov24, end: nov25, adjustment: "0", expected: "400.00"},
		{name: "floor not round", startValue: "100.01", start: nov23, end: nov24, adjustment: "0", expected: "50.00"},
		{name: "backward in time", startValue: "400.00", start: nov25, end: nov24, adjustment: "0", expected: "100.00"},
		{name: "adjustment added before floor", startValue: "100.01", start: nov23, end: nov24, adjustment: "0.009", expected: "50.01"},
		{name: "negative adjustment", startValue: "100.00", start: nov23, end: nov25, adjustment: "-25.50", expected: "174.50"},
		{name: "identity truncates sub-cent input", startValue: "100.019", start: nov23, end: nov23, adjustment: "0", expected: "100.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := series.CalculateEndValue(d(tt.startValue), tt.start, tt.end, d(tt.adjustment))
			require.NoError(t, err)
			assertDecimal(t, tt.expected, result.EndValue)
		})
	}
}

func TestSeries_CalculateEndValue_FreezesIndices(t *testing.T) {
	series := testSeries(t)

	result, err := series.CalculateEndValue(
		d("100.00"),
		utils.Date(2022, time.November, 24),
		utils.Date(2022, time.December, 31),
		decimal.Zero,
	)
	require.NoError(t, err)
	assert.True(t, d("50").Equal(result.StartIndex))
	assert.True(t, d("200").Equal(result.EndIndex))
}

func TestSeries_CalculateEndValue_OutOfCoverage(t *testing.T) {
	series := testSeries(t)
	before := utils.Date(2022, time.November, 1)
	inside := utils.Date(2022, time.November, 24)

	_, err := series.CalculateEndValue(d("100.00"), before, inside, decimal.Zero)
	assert.ErrorIs(t, err, types.ErrDomain)
	assert.Contains(t, err.Error(), "start date")

	_, err = series.CalculateEndValue(d("100.00"), inside, before, decimal.Zero)
	assert.ErrorIs(t, err, types.ErrDomain)
	assert.Contains(t, err.Error(), "end date")
}

func TestScale_NoThirdsDrift(t *testing.T) {
	tests := []struct {
		name       string
		startIndex string
		endIndex   string
		expected   string
	}{
		{name: "same non terminating index", startIndex: "3", endIndex: "3", expected: "100.00"},
		{name: "one third", startIndex: "3", endIndex: "1", expected: "33.33"},
		{name: "two thirds", startIndex: "3", endIndex: "2", expected: "66.66"},
		{name: "realistic index", startIndex: "1763.41", endIndex: "1899.12", expected: "107.69"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := Scale(d("100.00"), d(tt.startIndex), d(tt.endIndex), decimal.Zero)
			require.NoError(t, err)
			assertDecimal(t, tt.expected, value)
		})
	}
}

func TestScale_ZeroStartIndex(t *testing.T) {
	_, err := Scale(d("100.00"), decimal.Zero, d("1"), decimal.Zero)
	assert.ErrorIs(t, err, types.ErrDomain)
}

func TestFloorCents(t *testing.T) {
	assertDecimal(t, "50.00", FloorCents(d("50.009")))
	assertDecimal(t, "-50.01", FloorCents(d("-50.001")))
	assertDecimal(t, "12.34", FloorCents(d("12.34")))
}
