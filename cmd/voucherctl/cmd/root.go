// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/voucher-manager/auth"
	"github.com/danielhkuo/voucher-manager/db"
	"github.com/danielhkuo/voucher-manager/models"
	"github.com/danielhkuo/voucher-manager/store"
)

var (
	cfgFile      string
	outputFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:           "voucherctl",
	Short:         "Administer a voucher manager database",
	Long:          `voucherctl works directly on the voucher manager database: create owners, import and export vouchers, print stats and maintain the brand catalog.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.voucherctl/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json or yaml")
	rootCmd.PersistentFlags().String("db-type", "", "database type: sqlite or postgres")
	rootCmd.PersistentFlags().String("db", "", "sqlite file or PostgreSQL URL")

	viper.BindPFlag("database_type", rootCmd.PersistentFlags().Lookup("db-type"))
	viper.BindPFlag("database_url", rootCmd.PersistentFlags().Lookup("db"))
	viper.SetDefault("database_type", db.DialectSQLite)
	viper.SetDefault("database_url", "vouchers.db")
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".voucherctl"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// VOUCHERCTL_DATABASE_URL, VOUCHERCTL_DATABASE_TYPE, ...
	viper.SetEnvPrefix("voucherctl")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}

// openStore connects to the configured database and makes sure the
// schema exists. The returned func closes the connection.
func openStore() (*store.Store, func(), error) {
	dialect := viper.GetString("database_type")
	conn, err := db.Open(dialect, viper.GetString("database_url"))
	if err != nil {
		return nil, nil, err
	}
	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return store.New(conn, dialect), func() { conn.Close() }, nil
}

// ownerByEmail resolves the --owner flag of voucher commands
func ownerByEmail(ctx context.Context, st *store.Store, email string) (models.Owner, error) {
	if email == "" {
		return models.Owner{}, fmt.Errorf("--owner is required")
	}
	owner, _, err := st.GetOwnerByEmail(ctx, auth.NormalizeEmail(email))
	if err != nil {
		return models.Owner{}, fmt.Errorf("owner %s: %w", email, err)
	}
	return owner, nil
}

// render writes v as JSON or YAML, or header and rows as a table.
// YAML keys follow the JSON field names.
func render(w io.Writer, v any, header []string, rows [][]string) error {
	switch outputFormat {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)

	case "yaml":
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal: %w", err)
		}
		var generic any
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("failed to convert to yaml: %w", err)
		}
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(generic); err != nil {
			return err
		}
		return encoder.Close()

	case "table", "":
		table := tablewriter.NewWriter(w)
		headerCells := make([]any, len(header))
		for i, h := range header {
			headerCells[i] = h
		}
		table.Header(headerCells...)
		for _, row := range rows {
			if err := table.Append(row); err != nil {
				return err
			}
		}
		return table.Render()
	}
	return fmt.Errorf("unknown output format %q (use table, json or yaml)", outputFormat)
}
