// Package domain contains the trade evaluation model: directions, priced
// evaluations of exchange pairs and chains of profitable trades.
package domain

import (
	"fmt"
	"strings"
)

// Direction selects which side of a pair a held symbol must occupy.
// It is a bitmask; the zero value applies no filter.
type Direction uint8

const (
	// DirectionFrom keeps pairs the holding can be traded out of.
	DirectionFrom Direction = 1 << iota
	// DirectionTo keeps pairs that trade into the holding.
	DirectionTo

	// DirectionBoth is the union of both flags.
	DirectionBoth = DirectionFrom | DirectionTo
)

// Has reports whether flag is set.
func (d Direction) Has(flag Direction) bool {
	return d&flag != 0
}

func (d Direction) String() string {
	switch d {
	case DirectionFrom:
		return "from"
	case DirectionTo:
		return "to"
	case DirectionBoth:
		return "both"
	case 0:
		return "any"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// DirectionOf builds a direction from the two command flags.
func DirectionOf(from, to bool) Direction {
	var d Direction
	if from {
		d |= DirectionFrom
	}
	if to {
		d |= DirectionTo
	}
	return d
}

// ParseDirection accepts "from", "to", "both" and "any" (or ""), ignoring case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "from":
		return DirectionFrom, nil
	case "to":
		return DirectionTo, nil
	case "both":
		return DirectionBoth, nil
	case "", "any":
		return 0, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}
