package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a fixed-point money value: Units * 10^-Scale in Currency.
type Amount struct {
	Units    int64
	Scale    int32
	Currency string
}

func NewAmount(units int64, scale int32, currency string) Amount {
	return Amount{Units: units, Scale: scale, Currency: strings.ToUpper(strings.TrimSpace(currency))}
}

// Decimal returns the numeric value without currency.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(a.Units, -a.Scale)
}

// String is the canonical rendering used everywhere an amount leaves the
// system: the decimal value with trailing fractional zeros removed, one
// space, then the currency code. The zero amount without currency is "0 ".
func (a Amount) String() string {
	return a.Decimal().String() + " " + a.Currency
}

func (a Amount) IsZero() bool {
	return a.Units == 0
}

// Add sums two amounts of the same currency at the larger scale. An amount
// without currency adopts the other side's currency.
func (a Amount) Add(other Amount) (Amount, error) {
	currency := a.Currency
	switch {
	case currency == "":
		currency = other.Currency
	case other.Currency != "" && other.Currency != currency:
		return Amount{}, fmt.Errorf("core: cannot add %s to %s amount", other.Currency, currency)
	}
	sum := a.Decimal().Add(other.Decimal())
	coefficient := sum.Coefficient()
	if !coefficient.IsInt64() {
		return Amount{}, fmt.Errorf("core: amount overflow")
	}
	return Amount{Units: coefficient.Int64(), Scale: -sum.Exponent(), Currency: currency}, nil
}

// SumTransactions returns the aggregate of the given transactions.
func SumTransactions(transactions []Transaction) (Amount, error) {
	total := Amount{}
	for _, tx := range transactions {
		next, err := total.Add(tx.Amount)
		if err != nil {
			return Amount{}, err
		}
		total = next
	}
	return total, nil
}
