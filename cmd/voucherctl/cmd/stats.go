// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/voucher-manager/models"
	"github.com/danielhkuo/voucher-manager/stats"
	"github.com/danielhkuo/voucher-manager/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print voucher totals",
	Long: `Print an owner's voucher totals per status. With --by-brand the totals
are split per brand; with --brand one brand is split per denomination.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().String("owner", "", "owner email (required)")
	statsCmd.Flags().Bool("by-brand", false, "totals per brand")
	statsCmd.Flags().String("brand", "", "totals per denomination of one brand")
}

func runStats(cmd *cobra.Command, args []string) error {
	st, closeDB, err := openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	email, _ := cmd.Flags().GetString("owner")
	owner, err := ownerByEmail(cmd.Context(), st, email)
	if err != nil {
		return err
	}

	vouchers, _, err := st.ListVouchers(cmd.Context(), owner.ID, store.ListFilter{})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	byBrand, _ := cmd.Flags().GetBool("by-brand")
	brand, _ := cmd.Flags().GetString("brand")

	switch {
	case brand != "":
		detail, err := stats.BrandDetail(vouchers, brand)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(detail.Denominations))
		for _, d := range detail.Denominations {
			rows = append(rows, []string{
				stats.FormatVND(d.Value),
				strconv.Itoa(d.Count),
				strconv.Itoa(d.Unused),
				strconv.Itoa(d.Sold),
				stats.FormatVND(d.TotalValue),
			})
		}
		return render(out, detail, []string{"Value", "Count", "Unused", "Sold", "Total"}, rows)

	case byBrand:
		summaries := stats.Brands(vouchers)
		rows := make([][]string, 0, len(summaries))
		for _, b := range summaries {
			rows = append(rows, []string{
				b.Brand,
				strconv.Itoa(b.Count),
				strconv.Itoa(b.Unused),
				strconv.Itoa(b.Sent),
				strconv.Itoa(b.Sold),
				stats.FormatVND(b.TotalValue),
			})
		}
		return render(out, summaries, []string{"Brand", "Count", "Unused", "Sent", "Sold", "Total"}, rows)
	}

	overview := stats.Overview(vouchers)
	rows := make([][]string, 0, len(models.AllStatuses)+1)
	for _, status := range models.AllStatuses {
		s := overview.ByStatus[status]
		rows = append(rows, []string{string(status), strconv.Itoa(s.Count), stats.FormatVND(s.Value)})
	}
	rows = append(rows, []string{"TOTAL", strconv.Itoa(overview.Total), stats.FormatVND(overview.TotalValue)})
	return render(out, overview, []string{"Status", "Count", "Value"}, rows)
}
