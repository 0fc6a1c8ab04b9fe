// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/voucher-manager/csvio"
	"github.com/danielhkuo/voucher-manager/models"
	"github.com/danielhkuo/voucher-manager/stats"
	"github.com/danielhkuo/voucher-manager/store"
)

var vouchersCmd = &cobra.Command{
	Use:   "vouchers",
	Short: "List, import and export vouchers",
}

var vouchersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List an owner's vouchers, newest first",
	Args:  cobra.NoArgs,
	RunE:  runVouchersList,
}

var vouchersImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import vouchers from a CSV file",
	Long: `Import vouchers from a CSV file with the columns brand, value, type, code
and optionally note and image_url. Use "-" to read standard input.
Rows with errors and codes the owner already has are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runVouchersImport,
}

var vouchersExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export vouchers as CSV",
	Args:  cobra.NoArgs,
	RunE:  runVouchersExport,
}

func init() {
	rootCmd.AddCommand(vouchersCmd)
	vouchersCmd.AddCommand(vouchersListCmd)
	vouchersCmd.AddCommand(vouchersImportCmd)
	vouchersCmd.AddCommand(vouchersExportCmd)

	for _, c := range []*cobra.Command{vouchersListCmd, vouchersImportCmd, vouchersExportCmd} {
		c.Flags().String("owner", "", "owner email (required)")
	}
	for _, c := range []*cobra.Command{vouchersListCmd, vouchersExportCmd} {
		c.Flags().String("status", "", "only vouchers with this status")
		c.Flags().StringP("query", "q", "", "search brand, code, customer or value")
	}
	vouchersListCmd.Flags().String("brand", "", "only vouchers of this brand")
	vouchersListCmd.Flags().Int("limit", 0, "maximum number of vouchers (0 for all)")
	vouchersExportCmd.Flags().String("out", "", "output file (default is a generated name, - for stdout)")
}

// listFilter reads the shared filter flags
func listFilter(cmd *cobra.Command) (store.ListFilter, error) {
	var f store.ListFilter
	f.Query, _ = cmd.Flags().GetString("query")
	if cmd.Flags().Lookup("brand") != nil {
		f.Brand, _ = cmd.Flags().GetString("brand")
	}
	if cmd.Flags().Lookup("limit") != nil {
		f.Limit, _ = cmd.Flags().GetInt("limit")
	}

	raw, _ := cmd.Flags().GetString("status")
	if raw != "" && raw != "ALL" && raw != "all" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			return f, err
		}
		f.Status = status
	}
	return f, nil
}

func runVouchersList(cmd *cobra.Command, args []string) error {
	filter, err := listFilter(cmd)
	if err != nil {
		return err
	}

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

	vouchers, total, err := st.ListVouchers(cmd.Context(), owner.ID, filter)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(vouchers))
	for _, v := range vouchers {
		rows = append(rows, []string{
			v.ID,
			v.Brand,
			stats.FormatVND(v.Value),
			string(v.Type),
			string(v.Status),
			deref(v.Code),
			deref(v.CustomerName),
			v.CreatedAt.Local().Format(time.DateTime),
		})
	}

	out := cmd.OutOrStdout()
	err = render(out, models.ListVouchersResponse{Vouchers: vouchers, Total: total},
		[]string{"ID", "Brand", "Value", "Type", "Status", "Code", "Customer", "Created"}, rows)
	if err != nil {
		return err
	}
	if outputFormat == "table" {
		fmt.Fprintf(out, "\nShowing %d of %d vouchers\n", len(vouchers), total)
	}
	return nil
}

func runVouchersImport(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	rows, err := csvio.ParseImport(in)
	if err != nil {
		return err
	}

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

	result, err := st.ImportVouchers(cmd.Context(), owner.ID, rows, time.Now())
	if err != nil {
		return err
	}

	var table [][]string
	for _, msg := range result.Errors {
		table = append(table, []string{"error", msg})
	}
	for _, code := range result.Duplicates {
		table = append(table, []string{"duplicate", code})
	}

	out := cmd.OutOrStdout()
	if outputFormat != "table" {
		return render(out, result, nil, nil)
	}
	fmt.Fprintf(out, "Inserted %d, skipped %d\n", result.Inserted, result.Skipped)
	if len(table) == 0 {
		return nil
	}
	return render(out, result, []string{"Skipped", "Detail"}, table)
}

func runVouchersExport(cmd *cobra.Command, args []string) error {
	filter, err := listFilter(cmd)
	if err != nil {
		return err
	}

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

	vouchers, _, err := st.ListVouchers(cmd.Context(), owner.ID, filter)
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("out")
	if path == "-" {
		return csvio.WriteExport(cmd.OutOrStdout(), vouchers)
	}
	if path == "" {
		path = csvio.ExportFilename(filter.Status, time.Now())
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := csvio.WriteExport(f, vouchers); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d vouchers to %s\n", len(vouchers), path)
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
