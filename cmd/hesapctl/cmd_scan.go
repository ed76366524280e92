// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/metonline/hesap-paylas/apperr"
	"github.com/metonline/hesap-paylas/resolver"
	"github.com/metonline/hesap-paylas/scanner"
)

// newScanCmd reads decoded QR text from stdin, one payload per line, the
// way a barcode reader in keyboard mode delivers it.
func newScanCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Read QR payloads from stdin until one resolves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			cam := scanner.NewLineCamera(cmd.InOrStdin())
			sess := scanner.NewSession(cam, resolver.New(qrScheme), nil)

			req, err := sess.Scan(ctx, func(payload string, err error) {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %q: %s\n", payload, apperr.MessageOf(err))
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", req.Code, req.Code.Display())
			if req.GroupName != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "name: %s\n", req.GroupName)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up after this long (0 waits forever)")
	return cmd
}
