package usecases

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"tbond.backend/internal/domain/entities"
	domainerrors "tbond.backend/internal/domain/errors"
)

var digitsOnly = regexp.MustCompile(`^\d*$`)

// MaxMintWarning is shown while an entered amount is being clamped to max.
func MaxMintWarning(maxAmount int) string {
	return fmt.Sprintf("Maximum mint amount is %d tokens per transaction", maxAmount)
}

// ParseMintAmountInput applies one edit of the mint amount field. Input with
// anything but digits is rejected and previous is kept; an empty value is
// accepted as cleared; values above maxAmount are clamped to exactly maxAmount.
func ParseMintAmountInput(previous, raw string, maxAmount int, pricePerToken int64) entities.MintAmountInput {
	if !digitsOnly.MatchString(raw) {
		if !digitsOnly.MatchString(previous) {
			previous = ""
		}
		kept := ParseMintAmountInput("", previous, maxAmount, pricePerToken)
		kept.Accepted = false
		return kept
	}
	if raw == "" {
		return entities.MintAmountInput{Value: "", Accepted: true}
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n > maxAmount {
		// digits only, so Atoi fails only on overflow
		return entities.MintAmountInput{
			Value:     strconv.Itoa(maxAmount),
			Amount:    maxAmount,
			Accepted:  true,
			Clamped:   true,
			Warning:   MaxMintWarning(maxAmount),
			TotalCost: totalCost(maxAmount, pricePerToken),
		}
	}

	return entities.MintAmountInput{
		Value:     raw,
		Amount:    n,
		Accepted:  true,
		TotalCost: totalCost(n, pricePerToken),
	}
}

// parseMintAmount validates the amount submitted for minting. Empty means 1.
func parseMintAmount(raw string, maxAmount int) (int, error) {
	if raw == "" {
		return 1, nil
	}
	if !digitsOnly.MatchString(raw) {
		return 0, domainerrors.BadRequest("Amount must be a whole number")
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n > maxAmount {
		return 0, domainerrors.BadRequest(MaxMintWarning(maxAmount))
	}
	if n <= 0 {
		return 0, domainerrors.BadRequest("Amount must be greater than 0")
	}
	return n, nil
}

// totalCost is the stablecoin price of amount tokens in whole units.
func totalCost(amount int, pricePerToken int64) int64 {
	if amount <= 0 || pricePerToken <= 0 {
		return 0
	}
	if int64(amount) > math.MaxInt64/pricePerToken {
		return math.MaxInt64
	}
	return int64(amount) * pricePerToken
}
