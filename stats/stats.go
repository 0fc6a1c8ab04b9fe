// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stats

import (
	"errors"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/voucher-manager/models"
)

var ErrUnknownBrand = errors.New("no vouchers for brand")

// Overview totals the vouchers overall and per status. Every status is
// present in ByStatus, zero or not.
func Overview(vouchers []models.Voucher) models.StatsOverview {
	out := models.StatsOverview{
		ByStatus: make(map[models.Status]models.StatusStat, len(models.AllStatuses)),
	}
	for _, st := range models.AllStatuses {
		out.ByStatus[st] = models.StatusStat{}
	}

	for _, v := range vouchers {
		out.Total++
		out.TotalValue += v.Value

		s := out.ByStatus[v.Status]
		s.Count++
		s.Value += v.Value
		out.ByStatus[v.Status] = s
	}
	return out
}

// brandKey groups brand names that differ only in case or surrounding space
func brandKey(brand string) string {
	return strings.ToLower(strings.TrimSpace(brand))
}

// Brands summarizes vouchers per brand, largest total value first. Names
// that differ only in case share one row, labeled with the first spelling
// seen.
func Brands(vouchers []models.Voucher) []models.BrandSummary {
	index := make(map[string]int)
	out := []models.BrandSummary{}

	for _, v := range vouchers {
		key := brandKey(v.Brand)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, models.BrandSummary{Brand: v.Brand})
		}

		b := &out[i]
		b.Count++
		b.TotalValue += v.Value
		switch v.Status {
		case models.StatusUnused:
			b.Unused++
		case models.StatusSent:
			b.Sent++
		case models.StatusSold:
			b.Sold++
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalValue != out[j].TotalValue {
			return out[i].TotalValue > out[j].TotalValue
		}
		return out[i].Brand < out[j].Brand
	})
	return out
}

// BrandDetail breaks one brand down by denomination, the most valuable
// denomination first. The brand is matched the way Brands groups it and is
// labeled with the same spelling.
func BrandDetail(vouchers []models.Voucher, brand string) (models.BrandDetail, error) {
	key := brandKey(brand)
	detail := models.BrandDetail{Denominations: []models.DenominationStat{}}
	index := make(map[int64]int)

	for _, v := range vouchers {
		if brandKey(v.Brand) != key {
			continue
		}
		if detail.Count == 0 {
			detail.Brand = v.Brand
		}
		detail.Count++
		detail.TotalValue += v.Value

		i, ok := index[v.Value]
		if !ok {
			i = len(detail.Denominations)
			index[v.Value] = i
			detail.Denominations = append(detail.Denominations, models.DenominationStat{Value: v.Value})
		}
		d := &detail.Denominations[i]
		d.Count++
		d.TotalValue += v.Value

		switch v.Status {
		case models.StatusUnused:
			detail.Unused++
			d.Unused++
		case models.StatusSold:
			detail.Sold++
			d.Sold++
		}
	}

	if detail.Count == 0 {
		return models.BrandDetail{}, ErrUnknownBrand
	}

	sort.Slice(detail.Denominations, func(i, j int) bool {
		a, b := detail.Denominations[i], detail.Denominations[j]
		if a.TotalValue != b.TotalValue {
			return a.TotalValue > b.TotalValue
		}
		return a.Value > b.Value
	})
	return detail, nil
}

// FormatVND renders an amount the way Vietnamese sellers write it,
// e.g. 1.250.000đ.
func FormatVND(amount int64) string {
	return humanize.FormatInteger("#.###,", int(amount)) + "đ"
}
