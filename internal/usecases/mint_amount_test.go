package usecases

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tbond.backend/internal/domain/entities"
	domainerrors "tbond.backend/internal/domain/errors"
)

func TestParseMintAmountInput(t *testing.T) {
	tests := []struct {
		name     string
		previous string
		raw      string
		want     entities.MintAmountInput
	}{
		{
			name: "plain value",
			raw:  "3",
			want: entities.MintAmountInput{Value: "3", Amount: 3, Accepted: true, TotalCost: 3000},
		},
		{
			name: "exactly max",
			raw:  "100",
			want: entities.MintAmountInput{Value: "100", Amount: 100, Accepted: true, TotalCost: 100_000},
		},
		{
			name: "clamped to max",
			raw:  "150",
			want: entities.MintAmountInput{
				Value: "100", Amount: 100, Accepted: true, Clamped: true,
				Warning: "Maximum mint amount is 100 tokens per transaction", TotalCost: 100_000,
			},
		},
		{
			name: "overflow clamps",
			raw:  "99999999999999999999999",
			want: entities.MintAmountInput{
				Value: "100", Amount: 100, Accepted: true, Clamped: true,
				Warning: MaxMintWarning(100), TotalCost: 100_000,
			},
		},
		{
			name:     "cleared",
			previous: "5",
			raw:      "",
			want:     entities.MintAmountInput{Value: "", Accepted: true},
		},
		{
			name:     "letters keep previous",
			previous: "5",
			raw:      "5a",
			want:     entities.MintAmountInput{Value: "5", Amount: 5, Accepted: false, TotalCost: 5000},
		},
		{
			name:     "negative keeps previous",
			previous: "2",
			raw:      "-1",
			want:     entities.MintAmountInput{Value: "2", Amount: 2, Accepted: false, TotalCost: 2000},
		},
		{
			name:     "decimal with garbage previous",
			previous: "x",
			raw:      "1.5",
			want:     entities.MintAmountInput{Value: "", Accepted: false},
		},
		{
			name: "zero is accepted as typed",
			raw:  "0",
			want: entities.MintAmountInput{Value: "0", Amount: 0, Accepted: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseMintAmountInput(tt.previous, tt.raw, 100, 1000))
		})
	}
}

func TestParseMintAmount(t *testing.T) {
	n, err := parseMintAmount("", 100)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = parseMintAmount("42", 100)
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	for raw, msg := range map[string]string{
		"abc": "Amount must be a whole number",
		"1.5": "Amount must be a whole number",
		"101": MaxMintWarning(100),
		"0":   "Amount must be greater than 0",
	} {
		_, err := parseMintAmount(raw, 100)
		var appErr *domainerrors.AppError
		require.ErrorAs(t, err, &appErr, raw)
		assert.Equal(t, msg, appErr.Message, raw)
		assert.Equal(t, 400, appErr.Status, raw)
	}
}

func TestTotalCost(t *testing.T) {
	assert.Equal(t, int64(0), totalCost(0, 1000))
	assert.Equal(t, int64(0), totalCost(3, 0))
	assert.Equal(t, int64(7000), totalCost(7, 1000))
	assert.Equal(t, int64(math.MaxInt64), totalCost(math.MaxInt32, math.MaxInt64/2))
}
