// Package domain provides core domain models and types.
package domain

import (
	"fmt"
	"strings"
)

// OperationType represents the side of a market operation
type OperationType string

const (
	// OperationBuy is a purchase of an instrument
	OperationBuy OperationType = "BUY"
	// OperationSell is a sale of an instrument
	OperationSell OperationType = "SELL"
)

// OperationTypeFromString parses an operation type from its string form.
// Accepts any casing ("buy", "Buy", "BUY").
func OperationTypeFromString(s string) (OperationType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return OperationBuy, nil
	case "SELL":
		return OperationSell, nil
	default:
		return "", fmt.Errorf("invalid operation type: %q", s)
	}
}

// IsValid reports whether the operation type is one of the known values
func (t OperationType) IsValid() bool {
	return t == OperationBuy || t == OperationSell
}
