// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Field limits
const (
	MaxBrandLength        = 120
	MaxCodeLength         = 500
	MaxNoteLength         = 1000
	MinCustomerNameLength = 2
	MaxCustomerNameLength = 100
)

var (
	ErrBrandRequired        = errors.New("brand is required")
	ErrBrandTooLong         = errors.New("brand is too long")
	ErrValueNotPositive     = errors.New("value must be a positive number")
	ErrInvalidType          = errors.New("type must be CODE or IMAGE")
	ErrCodeRequired         = errors.New("code is required for CODE vouchers")
	ErrCodeTooLong          = errors.New("code is too long")
	ErrImageRequired        = errors.New("image_url is required for IMAGE vouchers")
	ErrNoteTooLong          = errors.New("note is too long")
	ErrCustomerNameRequired = errors.New("customer_name is required")
	ErrCustomerNameShort    = errors.New("customer_name is too short")
	ErrCustomerNameLong     = errors.New("customer_name is too long")
)

// Normalize trims the request and checks it describes a storable voucher.
func (r CreateVoucherRequest) Normalize() (CreateVoucherRequest, error) {
	r.Brand = strings.TrimSpace(r.Brand)
	r.Code = strings.TrimSpace(r.Code)
	r.ImageURL = strings.TrimSpace(r.ImageURL)
	r.Note = strings.TrimSpace(r.Note)
	r.Type = VoucherType(strings.ToUpper(strings.TrimSpace(string(r.Type))))

	if r.Brand == "" {
		return r, ErrBrandRequired
	}
	if utf8.RuneCountInString(r.Brand) > MaxBrandLength {
		return r, ErrBrandTooLong
	}
	if r.Value <= 0 {
		return r, ErrValueNotPositive
	}
	if !r.Type.Valid() {
		return r, ErrInvalidType
	}

	switch r.Type {
	case TypeCode:
		if r.Code == "" {
			return r, ErrCodeRequired
		}
		// Code vouchers never carry an image
		r.ImageURL = ""
	case TypeImage:
		if r.ImageURL == "" {
			return r, ErrImageRequired
		}
	}

	if utf8.RuneCountInString(r.Code) > MaxCodeLength {
		return r, ErrCodeTooLong
	}
	if utf8.RuneCountInString(r.Note) > MaxNoteLength {
		return r, ErrNoteTooLong
	}
	return r, nil
}

// NormalizeCustomerName trims and length-checks a customer name.
func NormalizeCustomerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	switch {
	case n == 0:
		return "", ErrCustomerNameRequired
	case n < MinCustomerNameLength:
		return "", ErrCustomerNameShort
	case n > MaxCustomerNameLength:
		return "", ErrCustomerNameLong
	}
	return name, nil
}

// OptionalString returns nil for an empty string.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
