package inventory

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

var maxTotalPrice = decimal.NewFromInt(math.MaxInt64)

// TotalPrice calcula Cantidad × PrecioUnitario. El precio debe ser entero y no negativo,
// y el resultado debe caber en una columna BIGINT.
func TotalPrice(quantity int64, unitPrice decimal.Decimal) (decimal.Decimal, error) {
	if quantity < 0 {
		return decimal.Zero, fmt.Errorf("cantidad negativa: %w", domain.ErrInvalidInput)
	}
	if unitPrice.IsNegative() || !unitPrice.IsInteger() || unitPrice.GreaterThan(maxTotalPrice) {
		return decimal.Zero, fmt.Errorf("precio unitario %s: %w", unitPrice.String(), domain.ErrInvalidInput)
	}
	total := decimal.NewFromInt(quantity).Mul(unitPrice)
	if total.GreaterThan(maxTotalPrice) {
		return decimal.Zero, fmt.Errorf("precio total desborda: %w", domain.ErrInvalidInput)
	}
	return total, nil
}
