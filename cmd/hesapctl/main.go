// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command hesapctl exposes the group code functions and the bill split for
// scripting and support work.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/metonline/hesap-paylas/resolver"
)

var (
	verbose  bool
	qrScheme string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hesapctl",
		Short: "Hesap Paylaş group code and bill tools",
		Long: `hesapctl works with Hesap Paylaş group codes offline.

Available commands:
  code   - format, normalize, classify, resolve and generate codes
  scan   - read QR payloads line by line until one resolves
  split  - compute a per-person bill breakdown
  keygen - print a random SESSION_KEY`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	root.PersistentFlags().StringVar(&qrScheme, "qr-scheme", resolver.DefaultScheme, "URI scheme of QR payloads")

	root.AddCommand(newCodeCmd(), newScanCmd(), newSplitCmd(), newKeygenCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
