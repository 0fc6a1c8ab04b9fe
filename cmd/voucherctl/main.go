// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command voucherctl administers a voucher manager database: owner
// accounts, bulk import and export, stats and the brand catalog.
package main

import (
	"os"

	"github.com/danielhkuo/voucher-manager/cmd/voucherctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
