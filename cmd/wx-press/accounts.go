// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List configured accounts",
	Long: `accounts lists every account in the configuration, in configuration
order, marking the one that would be used for publishing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		for _, name := range cfg.Names() {
			acct := cfg.Accounts[name]
			marker := " "
			if name == cfg.Account.Name {
				marker = "*"
			}
			if acct.Description != "" {
				fmt.Printf("%s %s\t%s\n", marker, name, acct.Description)
			} else {
				fmt.Printf("%s %s\n", marker, name)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accountsCmd)
}
