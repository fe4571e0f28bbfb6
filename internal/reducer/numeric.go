package reducer

import (
	"fmt"
	"math/big"
)

// parseNumeric parses a non-negative base-10 integer string, the wire form
// of every uint256 amount. The returned value is normalized (no leading
// zeros) so it can be forwarded to NUMERIC(78,0) columns as-is.
func parseNumeric(field, s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%s: malformed integer %q", field, s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%s: negative amount %q", field, s)
	}
	return v, nil
}

// gasCost multiplies gas units by gas price, both wire strings, into the
// wei cost charged to the user.
func gasCost(gasUsed, gasPrice string) (units, price, cost *big.Int, err error) {
	units, err = parseNumeric("gas_used", gasUsed)
	if err != nil {
		return nil, nil, nil, err
	}
	price, err = parseNumeric("gas_price", gasPrice)
	if err != nil {
		return nil, nil, nil, err
	}
	return units, price, new(big.Int).Mul(units, price), nil
}
