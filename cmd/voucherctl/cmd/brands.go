// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/voucher-manager/brands"
	"github.com/danielhkuo/voucher-manager/models"
)

var brandsCmd = &cobra.Command{
	Use:   "brands",
	Short: "Maintain the brand catalog",
}

var brandsMergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Add brands scraped from a saved partner page to the catalog",
	Long: `Read every <img> with a src and alt from an HTML page and add the ones
not yet in the catalog. New brands get IDs after the current maximum.
The catalog may be JSON or HuJSON; the result is written as JSON.`,
	Args: cobra.NoArgs,
	RunE: runBrandsMerge,
}

var brandsBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Create the catalog from a saved partner API response",
	Long: `Read a partner brand listing ({"data": {"data": [...]}}) and write a
catalog with each brand's id, decoded title and original-size logo,
sorted by title. An existing catalog at --out is replaced.`,
	Args: cobra.NoArgs,
	RunE: runBrandsBuild,
}

var brandsSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog, ignoring case and accents",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBrandsSearch,
}

func init() {
	rootCmd.AddCommand(brandsCmd)
	brandsCmd.AddCommand(brandsBuildCmd)
	brandsCmd.AddCommand(brandsMergeCmd)
	brandsCmd.AddCommand(brandsSearchCmd)

	brandsCmd.PersistentFlags().String("catalog", "brands.json", "brand catalog file")
	brandsMergeCmd.Flags().String("html", "", "saved HTML page to scrape (required)")
	brandsMergeCmd.Flags().String("out", "", "output file (default overwrites --catalog)")
	brandsMergeCmd.Flags().Bool("dry-run", false, "only print what would be added")
	brandsBuildCmd.Flags().String("dump", "", "saved partner API response, - for stdin (required)")
	brandsBuildCmd.Flags().String("out", "", "output file (default --catalog)")
	brandsSearchCmd.Flags().Int("limit", 20, "maximum results")
}

func runBrandsBuild(cmd *cobra.Command, args []string) error {
	dumpPath, _ := cmd.Flags().GetString("dump")
	outPath, _ := cmd.Flags().GetString("out")
	if dumpPath == "" {
		return errors.New("--dump is required")
	}
	if outPath == "" {
		outPath, _ = cmd.Flags().GetString("catalog")
	}

	in := cmd.InOrStdin()
	if dumpPath != "-" {
		f, err := os.Open(dumpPath)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	built, err := brands.ParseDump(in)
	if err != nil {
		return err
	}
	if err := brands.Save(outPath, built); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputFormat != "table" {
		return render(out, built, brandHeader, brandRows(built))
	}
	withLogo := 0
	for _, b := range built {
		if b.Logo != nil {
			withLogo++
		}
	}
	fmt.Fprintf(out, "Wrote %d brands (%d with logos) to %s\n", len(built), withLogo, outPath)
	return nil
}

func runBrandsMerge(cmd *cobra.Command, args []string) error {
	catalogPath, _ := cmd.Flags().GetString("catalog")
	htmlPath, _ := cmd.Flags().GetString("html")
	outPath, _ := cmd.Flags().GetString("out")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if htmlPath == "" {
		return errors.New("--html is required")
	}
	if outPath == "" {
		outPath = catalogPath
	}

	var existing []models.Brand
	data, err := os.ReadFile(catalogPath)
	switch {
	case err == nil:
		existing, err = brands.Parse(data)
		if err != nil {
			return err
		}
	case errors.Is(err, os.ErrNotExist):
		// Start a new catalog
	default:
		return err
	}

	page, err := os.Open(htmlPath)
	if err != nil {
		return err
	}
	defer page.Close()

	candidates, err := brands.ScrapeHTML(page)
	if err != nil {
		return err
	}

	merged, added := brands.Merge(existing, candidates)

	out := cmd.OutOrStdout()
	if !dryRun {
		if err := brands.Save(outPath, merged); err != nil {
			return err
		}
	}

	if err := render(out, added, brandHeader, brandRows(added)); err != nil {
		return err
	}
	if outputFormat == "table" {
		fmt.Fprintf(out, "\nScraped %d images, added %d brands, catalog has %d\n", len(candidates), len(added), len(merged))
	}
	return nil
}

func runBrandsSearch(cmd *cobra.Command, args []string) error {
	catalogPath, _ := cmd.Flags().GetString("catalog")
	limit, _ := cmd.Flags().GetInt("limit")

	catalog, err := brands.Load(catalogPath)
	if err != nil {
		return err
	}

	var query string
	if len(args) == 1 {
		query = args[0]
	}
	found := catalog.Search(query, limit)
	return render(cmd.OutOrStdout(), found, brandHeader, brandRows(found))
}

var brandHeader = []string{"ID", "Title", "Logo"}

func brandRows(list []models.Brand) [][]string {
	rows := make([][]string, 0, len(list))
	for _, b := range list {
		rows = append(rows, []string{strconv.Itoa(b.ID), b.Title, deref(b.Logo)})
	}
	return rows
}
