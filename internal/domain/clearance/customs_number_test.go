package clearance

import (
	"testing"

	"github.com/aduana/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCustomsNumber(t *testing.T) {
	tests := []struct {
		name   string
		number string
		valid  bool
	}{
		{"well formed", "15  48  3009  0001234", true},
		{"empty is allowed", "", true},
		{"another well formed", "99  01  0001  9999999", true},
		{"single spaces", "15 48 3009 0001234", false},
		{"missing separator", "1548  3009  0001234", false},
		{"triple spaces", "15   48  3009  0001234", false},
		{"short serial", "15  48  3009  000123", false},
		{"long serial", "15  48  3009  00012345", false},
		{"letters", "AB  48  3009  0001234", false},
		{"leading space", " 15  48  3009  0001234", false},
		{"trailing space", "15  48  3009  0001234 ", false},
		{"tabs instead of spaces", "15\t\t48\t\t3009\t\t0001234", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCustomsNumber(tt.number)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				var domainErr *shared.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, ErrCodeCustomsNumberFormat, domainErr.Code)
				assert.Contains(t, domainErr.Message, CustomsNumberExample)
			}
		})
	}
}

func TestIsValidCustomsNumber(t *testing.T) {
	assert.True(t, IsValidCustomsNumber("15  48  3009  0001234"))
	assert.False(t, IsValidCustomsNumber(""))
	assert.False(t, IsValidCustomsNumber("15 48 3009 0001234"))
}
