package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduleValidator(t *testing.T) {
	validator := NewScheduleValidator()
	assert.NotNil(t, validator)
}

func TestValidateDate(t *testing.T) {
	validator := NewScheduleValidator()

	t.Run("Valid dates", func(t *testing.T) {
		for _, date := range []string{"2024-05-01", "2024-02-29", " 2023-12-31 "} {
			got, err := validator.ValidateDate(date)
			require.NoError(t, err, date)
			assert.Equal(t, strings.TrimSpace(date), got)
		}
	})

	invalid := []struct {
		input string
		name  string
	}{
		{"", "Empty"},
		{"2024-5-1", "Not zero padded"},
		{"2023-02-29", "Not a leap year"},
		{"2024-13-01", "Month out of range"},
		{"01/05/2024", "Wrong separator"},
		{"2024-05-01T00:00:00Z", "Timestamp"},
		{"all", "Keyword"},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validator.ValidateDate(tc.input)
			assert.ErrorIs(t, err, ErrInvalidDate)
			assert.False(t, validator.IsValidDate(tc.input))
		})
	}
}

func TestValidateTime(t *testing.T) {
	validator := NewScheduleValidator()

	valid := []struct {
		input    string
		expected string
	}{
		{"07:00", "07:00"},
		{"7:05", "07:05"},
		{"23:59", "23:59"},
		{"00:00", "00:00"},
		{"", ""},
		{"  ", ""},
	}
	for _, tc := range valid {
		got, err := validator.ValidateTime(tc.input)
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.expected, got)
	}

	for _, input := range []string{"24:00", "12:60", "noon", "12", "12:5", "1200"} {
		_, err := validator.ValidateTime(input)
		assert.ErrorIs(t, err, ErrInvalidTime, input)
	}
}

func TestValidateName(t *testing.T) {
	validator := NewScheduleValidator()

	got, err := validator.ValidateName("  Ann  ")
	require.NoError(t, err)
	assert.Equal(t, "Ann", got)

	_, err = validator.ValidateName("   ")
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = validator.ValidateName(strings.Repeat("a", MaxNameLength+1))
	assert.ErrorIs(t, err, ErrNameTooLong)

	_, err = validator.ValidateName(strings.Repeat("é", MaxNameLength))
	assert.NoError(t, err)
}
