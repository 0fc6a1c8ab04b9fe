// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package brands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/danielhkuo/voucher-manager/models"
)

// partnerDump is the brand listing returned by the partner API,
// {"data": {"data": [...]}}.
type partnerDump struct {
	Data struct {
		Data []partnerBrand `json:"data"`
	} `json:"data"`
}

type partnerBrand struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	// Logo sizes keyed by width; "0" is the original. The API sends an
	// empty array instead of an object when a brand has no logo.
	LogoFM json.RawMessage `json:"logo_fm"`
}

func (b partnerBrand) logo() *string {
	var sizes map[string]any
	if len(b.LogoFM) == 0 || json.Unmarshal(b.LogoFM, &sizes) != nil {
		return nil
	}
	for _, key := range []string{"0", "80"} {
		if s, ok := sizes[key].(string); ok && s != "" {
			return &s
		}
	}
	return nil
}

// ParseDump builds a catalog from a saved partner API response. Titles have
// HTML entities decoded, entries without a title are dropped, and the result
// is sorted by title.
func ParseDump(r io.Reader) ([]models.Brand, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read brand dump: %w", err)
	}

	var dump partnerDump
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("invalid brand dump: %w", err)
	}

	out := make([]models.Brand, 0, len(dump.Data.Data))
	for _, b := range dump.Data.Data {
		title := strings.TrimSpace(html.UnescapeString(b.Title))
		if title == "" {
			continue
		}
		out = append(out, models.Brand{ID: b.ID, Title: title, Logo: b.logo()})
	}
	sortByTitle(out)
	return out, nil
}
