// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownStatus     = errors.New("unknown status")
)

// validTransitions maps from-state to allowed to-states
var validTransitions = map[Status]map[Status]bool{
	StatusUnused: {
		StatusSent:    true, // handed to a customer, payment pending
		StatusExpired: true,
	},
	StatusSent: {
		StatusSent: true, // re-sent or customer corrected
		StatusSold: true, // payment received
	},
	StatusSold: {
		StatusUsed: true,
	},
	// Terminal states
	StatusUsed:    {},
	StatusExpired: {},
}

// ValidateTransition checks if a status transition is allowed
func ValidateTransition(from, to Status) error {
	allowed, ok := validTransitions[from]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, from)
	}
	if _, ok := validTransitions[to]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if !allowed[to] {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// ParseStatus normalizes user input ("sold", " SOLD ") into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// IsTerminal returns true if no further transitions are possible
func (s Status) IsTerminal() bool {
	return s.Valid() && len(validTransitions[s]) == 0
}

// IsReadOnly reports whether the voucher content is locked. Sold vouchers
// may still move to USED but can no longer be handed out.
func (s Status) IsReadOnly() bool {
	return s == StatusSold || s == StatusUsed
}

// Valid reports whether t is a known voucher type.
func (t VoucherType) Valid() bool {
	return t == TypeCode || t == TypeImage
}
