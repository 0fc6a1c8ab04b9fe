// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Status is the lifecycle state of a voucher.
type Status string

// Voucher status constants
const (
	StatusUnused  Status = "UNUSED"
	StatusSent    Status = "SENT"
	StatusSold    Status = "SOLD"
	StatusUsed    Status = "USED"
	StatusExpired Status = "EXPIRED"
)

// AllStatuses lists every status in display order.
var AllStatuses = []Status{StatusUnused, StatusSent, StatusSold, StatusUsed, StatusExpired}

// VoucherType distinguishes text codes from image vouchers.
type VoucherType string

// Voucher type constants
const (
	TypeCode  VoucherType = "CODE"
	TypeImage VoucherType = "IMAGE"
)

// Transition result codes
const (
	CodeInvalidInput      = "INVALID_INPUT"
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeStatusChanged     = "STATUS_CHANGED"
	CodeTooFast           = "TOO_FAST"
)

// Request types

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateVoucherRequest struct {
	Brand    string      `json:"brand"`
	Value    int64       `json:"value"`
	Type     VoucherType `json:"type"`
	Code     string      `json:"code"`
	ImageURL string      `json:"image_url"`
	Note     string      `json:"note"`
}

// TransitionRequest is shared by the sent/sold/expired/used endpoints.
// CustomerName is only read when marking a voucher as sent.
type TransitionRequest struct {
	CustomerName   string `json:"customer_name,omitempty"`
	ExpectedStatus Status `json:"expected_status"`
}

// Response types

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Owner     Owner     `json:"owner"`
}

type ListVouchersResponse struct {
	Vouchers []Voucher `json:"vouchers"`
	Total    int       `json:"total"`
}

type StatusCountsResponse struct {
	Counts map[Status]int `json:"counts"`
}

// TransitionResult mirrors the structured success/error payload of the
// status transition endpoints.
type TransitionResult struct {
	Success       bool     `json:"success"`
	Code          string   `json:"code,omitempty"`
	Error         string   `json:"error,omitempty"`
	CurrentStatus Status   `json:"current_status,omitempty"`
	Voucher       *Voucher `json:"voucher,omitempty"`
}

type UploadImageResponse struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

type BrandSearchResponse struct {
	Brands []Brand `json:"brands"`
}

// Domain types

type Owner struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Voucher struct {
	ID           string      `json:"id"`
	OwnerID      string      `json:"owner_id"`
	Brand        string      `json:"brand"`
	Value        int64       `json:"value"`
	Type         VoucherType `json:"type"`
	Code         *string     `json:"code"`
	ImageURL     *string     `json:"image_url"`
	Note         *string     `json:"note,omitempty"`
	Status       Status      `json:"status"`
	CustomerName *string     `json:"customer_name"`
	SentAt       *time.Time  `json:"sent_at"`
	SoldAt       *time.Time  `json:"sold_at"`
	ExpiredAt    *time.Time  `json:"expired_at,omitempty"`
	UsedAt       *time.Time  `json:"used_at,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// VoucherEvent is one entry of a voucher's status history.
type VoucherEvent struct {
	ID           string    `json:"id"`
	VoucherID    string    `json:"voucher_id"`
	OwnerID      string    `json:"owner_id"`
	FromStatus   Status    `json:"from_status"`
	ToStatus     Status    `json:"to_status"`
	CustomerName *string   `json:"customer_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Brand is a catalog entry used for autocomplete and logos.
type Brand struct {
	ID    int     `json:"id"`
	Title string  `json:"title"`
	Logo  *string `json:"logo"`
}

// Import types

// ImportRow is one parsed CSV data row. Line is 1-based over data rows.
type ImportRow struct {
	Line     int    `json:"line"`
	Brand    string `json:"brand"`
	ValueRaw string `json:"value"`
	Type     string `json:"type"`
	Code     string `json:"code"`
	Note     string `json:"note,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type ImportResult struct {
	Success    bool     `json:"success"`
	Inserted   int      `json:"inserted"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors"`
	Duplicates []string `json:"duplicates"`
}

// Stats types

type StatusStat struct {
	Count int   `json:"count"`
	Value int64 `json:"value"`
}

type StatsOverview struct {
	Total      int                   `json:"total"`
	TotalValue int64                 `json:"total_value"`
	ByStatus   map[Status]StatusStat `json:"by_status"`
}

type BrandSummary struct {
	Brand      string `json:"brand"`
	Count      int    `json:"count"`
	TotalValue int64  `json:"total_value"`
	Unused     int    `json:"unused"`
	Sent       int    `json:"sent"`
	Sold       int    `json:"sold"`
}

type DenominationStat struct {
	Value      int64 `json:"value"`
	Count      int   `json:"count"`
	Unused     int   `json:"unused"`
	Sold       int   `json:"sold"`
	TotalValue int64 `json:"total_value"`
}

type BrandDetail struct {
	Brand         string             `json:"brand"`
	Count         int                `json:"count"`
	TotalValue    int64              `json:"total_value"`
	Unused        int                `json:"unused"`
	Sold          int                `json:"sold"`
	Denominations []DenominationStat `json:"denominations"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
