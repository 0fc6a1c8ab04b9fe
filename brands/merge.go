// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package brands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/natefinch/atomic"
	"golang.org/x/net/html"

	"github.com/danielhkuo/voucher-manager/models"
)

// Candidate is a brand scraped from a partner page.
type Candidate struct {
	Title string
	Logo  string
}

// MinKeyLength is the shortest normalized name accepted from a scrape.
const MinKeyLength = 3

var genericNames = map[string]bool{
	"img":       true,
	"image":     true,
	"logo":      true,
	"new brand": true,
	"vi":        true,
	"en":        true,
	"arrow":     true,
	"new logo":  true,
}

var skippedLogoWords = []string{"icon", "arrow", "gift"}

// ScrapeHTML collects every <img> with both src and alt set. Entities in
// alt text are decoded.
func ScrapeHTML(r io.Reader) ([]Candidate, error) {
	z := html.NewTokenizer(r)
	var out []Candidate

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return out, nil
			}
			return nil, fmt.Errorf("failed to parse html: %w", z.Err())
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "img" {
				continue
			}
			var src, alt string
			for _, a := range tok.Attr {
				switch a.Key {
				case "src":
					src = a.Val
				case "alt":
					alt = a.Val
				}
			}
			if src != "" && alt != "" {
				out = append(out, Candidate{Title: strings.TrimSpace(alt), Logo: src})
			}
		}
	}
}

// mergeKey reduces a title to lower-case ASCII letters, digits and single
// spaces for duplicate detection.
func mergeKey(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func skipCandidate(c Candidate) bool {
	if genericNames[strings.ToLower(c.Title)] {
		return true
	}
	logo := strings.ToLower(c.Logo)
	for _, w := range skippedLogoWords {
		if strings.Contains(logo, w) {
			return true
		}
	}
	return false
}

// Merge adds candidates that are not already in existing. Generic images,
// icons, names shorter than MinKeyLength after normalization, and names
// already present are skipped. New brands get IDs after the current
// maximum, in scrape order. The merged list is sorted by title.
func Merge(existing []models.Brand, candidates []Candidate) (merged, added []models.Brand) {
	seen := make(map[string]bool, len(existing)+len(candidates))
	maxID := 0
	for _, b := range existing {
		seen[mergeKey(b.Title)] = true
		if b.ID > maxID {
			maxID = b.ID
		}
	}

	for _, c := range candidates {
		if skipCandidate(c) {
			continue
		}
		key := mergeKey(c.Title)
		if len(key) < MinKeyLength || seen[key] {
			continue
		}
		seen[key] = true

		maxID++
		logo := c.Logo
		added = append(added, models.Brand{ID: maxID, Title: c.Title, Logo: &logo})
	}

	merged = make([]models.Brand, 0, len(existing)+len(added))
	merged = append(merged, existing...)
	merged = append(merged, added...)
	sortByTitle(merged)
	return merged, added
}

// Save writes brands as indented JSON, replacing path atomically.
func Save(path string, brands []models.Brand) error {
	data, err := json.MarshalIndent(brands, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode brands: %w", err)
	}
	data = append(data, '\n')

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write brand catalog: %w", err)
	}
	return nil
}
