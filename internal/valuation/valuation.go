// Package valuation scales right of occupancy payments along the cost index
// series using exact decimal arithmetic.
package valuation

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"apartmentqueue/internal/types"
	"apartmentqueue/internal/utils"

	"github.com/shopspring/decimal"
)

// divisionPrecision keeps the intermediate quotient far below cent level
// before flooring.
const divisionPrecision = 20

// Point is one cost index entry.
type Point struct {
	ValidFrom time.Time
	Value     decimal.Decimal
}

// Series is an ascending, date-unique cost index series.
type Series struct {
	points []Point
}

// NewSeries sorts the points by date. Duplicate dates and non-positive
// values are rejected.
func NewSeries(points []Point) (Series, error) {
	sorted := make([]Point, len(points))
	for i, p := range points {
		if !p.Value.IsPositive() {
			return Series{}, types.Domainf(
				"cost index value %s on %s must be positive",
				p.Value,
				utils.FormatDate(p.ValidFrom),
			)
		}
		sorted[i] = Point{ValidFrom: utils.NormalizeDate(p.ValidFrom), Value: p.Value}
	}

	slices.SortFunc(sorted, func(a, b Point) int {
		return a.ValidFrom.Compare(b.ValidFrom)
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].ValidFrom.Equal(sorted[i-1].ValidFrom) {
			return Series{}, types.Domainf(
				"duplicate cost index for %s",
				utils.FormatDate(sorted[i].ValidFrom),
			)
		}
	}

	return Series{points: sorted}, nil
}

func (s Series) Len() int {
	return len(s.points)
}

func (s Series) Points() []Point {
	return slices.Clone(s.points)
}

// ValueAsOf returns the value of the latest entry valid on the given date.
// A date before the first entry is a MissingCostIndexError.
func (s Series) ValueAsOf(date time.Time) (decimal.Decimal, error) {
	date = utils.NormalizeDate(date)

	// index of the first entry strictly after date
	i := sort.Search(len(s.points), func(i int) bool {
		return s.points[i].ValidFrom.After(date)
	})
	if i == 0 {
		return decimal.Decimal{}, &types.MissingCostIndexError{Date: date}
	}
	return s.points[i-1].Value, nil
}

// Scale computes startValue * endIndex / startIndex + adjustment, floored to
// whole cents. The floor is applied after the adjustment.
func Scale(startValue, startIndex, endIndex, adjustment decimal.Decimal) (decimal.Decimal, error) {
	if !startIndex.IsPositive() {
		return decimal.Decimal{}, types.Domainf("start cost index %s must be positive", startIndex)
	}

	endValue := startValue.Mul(endIndex).DivRound(startIndex, divisionPrecision)
	endValue = endValue.Add(adjustment)
	return FloorCents(endValue), nil
}

// FloorCents truncates toward negative infinity at two decimals.
func FloorCents(value decimal.Decimal) decimal.Decimal {
	return value.Shift(2).Floor().Shift(-2)
}

// Result carries the index values used for a calculation so callers can
// freeze them alongside the computed payment.
type Result struct {
	StartIndex decimal.Decimal
	EndIndex   decimal.Decimal
	EndValue   decimal.Decimal
}

// CalculateEndValue scales startValue from startDate to endDate. endDate may
// precede startDate.
func (s Series) CalculateEndValue(
	startValue decimal.Decimal,
	startDate time.Time,
	endDate time.Time,
	adjustment decimal.Decimal,
) (Result, error) {
	startIndex, err := s.ValueAsOf(startDate)
	if err != nil {
		return Result{}, fmt.Errorf("start date: %w", err)
	}

	endIndex, err := s.ValueAsOf(endDate)
	if err != nil {
		return Result{}, fmt.Errorf("end date: %w", err)
	}

	endValue, err := Scale(startValue, startIndex, endIndex, adjustment)
	if err != nil {
		return Result{}, err
	}

	return Result{StartIndex: startIndex, EndIndex: endIndex, EndValue: endValue}, nil
}
