package chain

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// TransferGas is the gas limit of a plain value transfer (21000)
const TransferGas = "0x5208"

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// ProofValue is the symbolic amount sent when anchoring a verdict: 0.001 ETH
var ProofValue = new(big.Int).Exp(big.NewInt(10), big.NewInt(15), nil)

// EtherToWei converts a decimal ether amount such as "0.001" to wei. Digits past
// the 18th decimal place are dropped.
func EtherToWei(amount string) (*big.Int, error) {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(amount))
	if !ok {
		return nil, fmt.Errorf("invalid ether amount %q", amount)
	}
	if r.Sign() < 0 {
		return nil, errors.New("ether amount must not be negative")
	}
	r.Mul(r, new(big.Rat).SetInt(weiPerEther))
	return new(big.Int).Quo(r.Num(), r.Denom()), nil
}

// WeiToEther formats wei as ether rounded to the given number of decimal places
func WeiToEther(wei *big.Int, places int) string {
	if wei == nil {
		wei = new(big.Int)
	}
	return new(big.Rat).SetFrac(wei, weiPerEther).FloatString(places)
}

// ToHex encodes a quantity the way JSON-RPC expects it
func ToHex(v *big.Int) string {
	if v == nil {
		return "0x0"
	}
	return "0x" + v.Text(16)
}

// ParseHex decodes a JSON-RPC quantity
func ParseHex(s string) (*big.Int, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if trimmed == "" {
		return nil, fmt.Errorf("invalid hex quantity %q", s)
	}
	v, ok := new(big.Int).SetString(trimmed, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex quantity %q", s)
	}
	return v, nil
}
