// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/danielhkuo/voucher-manager/auth"
	"github.com/danielhkuo/voucher-manager/models"
	"github.com/danielhkuo/voucher-manager/store"
)

var ownerCmd = &cobra.Command{
	Use:   "owner",
	Short: "Manage owner accounts",
}

var ownerAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Create an owner account",
	Long:  `Create an owner account. The password comes from --password or VOUCHERCTL_PASSWORD.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runOwnerAdd,
}

var ownerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List owner accounts",
	Args:  cobra.NoArgs,
	RunE:  runOwnerList,
}

func init() {
	rootCmd.AddCommand(ownerCmd)
	ownerCmd.AddCommand(ownerAddCmd)
	ownerCmd.AddCommand(ownerListCmd)

	ownerAddCmd.Flags().String("password", "", "owner password (prefer VOUCHERCTL_PASSWORD)")
}

func runOwnerAdd(cmd *cobra.Command, args []string) error {
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = viper.GetString("password")
	}

	email := auth.NormalizeEmail(args[0])
	if email == "" {
		return errors.New("email is required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	st, closeDB, err := openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	owner, err := st.CreateOwner(cmd.Context(), email, hash)
	if errors.Is(err, store.ErrDuplicateEmail) {
		return fmt.Errorf("owner %s already exists", email)
	}
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), owner, ownerHeader, [][]string{ownerRow(owner)})
}

func runOwnerList(cmd *cobra.Command, args []string) error {
	st, closeDB, err := openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	owners, err := st.ListOwners(cmd.Context())
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(owners))
	for _, o := range owners {
		rows = append(rows, ownerRow(o))
	}
	return render(cmd.OutOrStdout(), owners, ownerHeader, rows)
}

var ownerHeader = []string{"ID", "Email", "Created"}

func ownerRow(o models.Owner) []string {
	return []string{o.ID, o.Email, o.CreatedAt.Local().Format(time.DateTime)}
}
