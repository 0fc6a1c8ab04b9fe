// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package brands holds the brand catalog used for autocomplete and logos.

The catalog file is a JSON array of {id, title, logo}. Comments and
trailing commas are accepted (HuJSON), so curated files can be annotated:

	cat, err := brands.Load("data/brands.hujson")
	matches := cat.Search("phuc long", 10) // finds "Phúc Long"
	b, ok := cat.Lookup("Highlands")

ParseDump builds a fresh catalog from a saved partner API response.
Merge and ScrapeHTML grow an existing catalog from a partner's brand page.
Save writes either result atomically.
*/
package brands
