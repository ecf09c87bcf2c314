package types

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMissingCostIndexError(t *testing.T) {
	date := time.Date(2022, 11, 22, 0, 0, 0, 0, time.UTC)
	var err error = &MissingCostIndexError{Date: date}

	assert.True(t, errors.Is(err, ErrDomain))
	assert.Contains(t, err.Error(), "2022-11-22")

	var missing *MissingCostIndexError
	assert.True(t, errors.As(err, &missing))
	assert.Equal(t, date, missing.Date)
}

func TestWrappedSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{
			name:     "validation",
			err:      Validationf("application %d is rejected", 7),
			sentinel: ErrValidation,
			message:  "validation error: application 7 is rejected",
		},
		{
			name:     "not found",
			err:      NotFoundf("apartment %s", "abc"),
			sentinel: ErrNotFound,
			message:  "not found: apartment abc",
		},
		{
			name:     "domain",
			err:      Domainf("missing payment"),
			sentinel: ErrDomain,
			message:  "domain error: missing payment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}
