package cart

import (
	"fmt"

	pkgerrors "github.com/ducoin/boucherie-backend/pkg/errors"
)

const (
	// MinQuantityGrams is the smallest weight the shop sells per product.
	MinQuantityGrams = 500
	// QuantityStepGrams is the granularity weights must align to.
	QuantityStepGrams = 100
)

// ValidateQuantity enforces the shop's weight rules: at least 500g, in 100g
// increments.
func ValidateQuantity(grams int) error {
	if grams < MinQuantityGrams {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("quantity must be at least %dg", MinQuantityGrams))
	}
	if grams%QuantityStepGrams != 0 {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("quantity must be a multiple of %dg", QuantityStepGrams))
	}
	return nil
}
