// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"strings"
	"testing"
)

func TestCreateVoucherRequestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateVoucherRequest
		wantErr error
	}{
		{
			name: "valid code voucher",
			req:  CreateVoucherRequest{Brand: " Traveloka ", Value: 100000, Type: "code", Code: " TRVLK2024 "},
		},
		{
			name: "valid image voucher",
			req:  CreateVoucherRequest{Brand: "Grab", Value: 50000, Type: TypeImage, ImageURL: "http://x/images/a.png"},
		},
		{
			name:    "missing brand",
			req:     CreateVoucherRequest{Brand: "   ", Value: 1, Type: TypeCode, Code: "A"},
			wantErr: ErrBrandRequired,
		},
		{
			name:    "brand too long",
			req:     CreateVoucherRequest{Brand: strings.Repeat("b", MaxBrandLength+1), Value: 1, Type: TypeCode, Code: "A"},
			wantErr: ErrBrandTooLong,
		},
		{
			name:    "zero value",
			req:     CreateVoucherRequest{Brand: "Shopee", Value: 0, Type: TypeCode, Code: "A"},
			wantErr: ErrValueNotPositive,
		},
		{
			name:    "negative value",
			req:     CreateVoucherRequest{Brand: "Shopee", Value: -5, Type: TypeCode, Code: "A"},
			wantErr: ErrValueNotPositive,
		},
		{
			name:    "unknown type",
			req:     CreateVoucherRequest{Brand: "Shopee", Value: 5, Type: "QR", Code: "A"},
			wantErr: ErrInvalidType,
		},
		{
			name:    "code voucher without code",
			req:     CreateVoucherRequest{Brand: "Shopee", Value: 5, Type: TypeCode},
			wantErr: ErrCodeRequired,
		},
		{
			name:    "image voucher without image",
			req:     CreateVoucherRequest{Brand: "Shopee", Value: 5, Type: TypeImage, Code: "A"},
			wantErr: ErrImageRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.req.Normalize()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNormalizeTrimsAndUppercases(t *testing.T) {
	got, err := CreateVoucherRequest{
		Brand:    "  Highlands Coffee ",
		Value:    30000,
		Type:     " code ",
		Code:     " HL30 ",
		ImageURL: "ignored",
	}.Normalize()
	if err != nil {
		t.Fatal(err)
	}

	if got.Brand != "Highlands Coffee" {
		t.Errorf("expected trimmed brand, got %q", got.Brand)
	}
	if got.Type != TypeCode {
		t.Errorf("expected CODE, got %q", got.Type)
	}
	if got.Code != "HL30" {
		t.Errorf("expected trimmed code, got %q", got.Code)
	}
	if got.ImageURL != "" {
		t.Errorf("code vouchers should drop image_url, got %q", got.ImageURL)
	}
}

func TestNormalizeCustomerName(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr error
	}{
		{"  Nguyễn Văn A ", "Nguyễn Văn A", nil},
		{"An", "An", nil},
		{"", "", ErrCustomerNameRequired},
		{"   ", "", ErrCustomerNameRequired},
		{"A", "", ErrCustomerNameShort},
		{"Đ", "", ErrCustomerNameShort},
		{strings.Repeat("x", MaxCustomerNameLength+1), "", ErrCustomerNameLong},
	}

	for _, tt := range tests {
		got, err := NormalizeCustomerName(tt.input)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("NormalizeCustomerName(%q) error = %v, want %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("NormalizeCustomerName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMatchesQuery(t *testing.T) {
	code := "SHOPEE50K"
	customer := "Trần Thị B"
	v := Voucher{Brand: "Shopee", Value: 50000, Code: &code, CustomerName: &customer}

	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"shop", true},
		{"SHOPEE", true},
		{"50k", true},
		{"trần", true},
		{"5000", true},
		{"grab", false},
		{"99", false},
	}

	for _, tt := range tests {
		if got := v.MatchesQuery(tt.query); got != tt.want {
			t.Errorf("MatchesQuery(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestFilterVouchersPreservesOrder(t *testing.T) {
	vouchers := []Voucher{
		{ID: "1", Brand: "Grab", Value: 100000},
		{ID: "2", Brand: "Shopee", Value: 50000},
		{ID: "3", Brand: "GrabFood", Value: 20000},
	}

	got := FilterVouchers(vouchers, "grab")
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Errorf("unexpected filter result: %+v", got)
	}

	if all := FilterVouchers(vouchers, "  "); len(all) != 3 {
		t.Errorf("blank query should keep all vouchers, got %d", len(all))
	}
}
