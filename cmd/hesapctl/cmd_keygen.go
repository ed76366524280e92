// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/metonline/hesap-paylas/auth"
)

func newKeygenCmd() *cobra.Command {
	var bytes int

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Print a random hex SESSION_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if bytes < 32 {
				return fmt.Errorf("session keys need at least 32 bytes")
			}
			key, err := auth.GenerateSecret(bytes)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}

	cmd.Flags().IntVar(&bytes, "bytes", 32, "Key length in bytes")
	return cmd
}
