// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"os"

	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"github.com/metonline/hesap-paylas/cliparse"
	"github.com/metonline/hesap-paylas/groupcode"
	"github.com/metonline/hesap-paylas/resolver"
)

func newCodeCmd() *cobra.Command {
	code := &cobra.Command{
		Use:   "code",
		Short: "Work with group codes",
		Long: `Pure group code operations.

Available subcommands:
  format    - 6 digits to "ddd-ddd"
  canonical - any display form to 6 digits
  normalize - keep digits, truncate to six
  mask      - as-you-type rendering
  classify  - valid_6_digit, valid_9_digit_legacy or invalid
  resolve   - run a deep link, QR payload or typed code through the resolver
  generate  - draw random codes
  link      - print the share link and QR payload
  qr        - write the QR payload as a PNG`,
	}

	code.AddCommand(
		&cobra.Command{
			Use:   "format <digits>",
			Short: "Render six digits as ddd-ddd",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := groupcode.ToDisplay(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), s)
				return nil
			},
		},
		&cobra.Command{
			Use:   "canonical <code>",
			Short: "Strip a displayed code down to six digits",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := groupcode.ToCanonical(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), c)
				return nil
			},
		},
		&cobra.Command{
			Use:   "normalize <input>",
			Short: "Keep digits and truncate to six",
			Args:  cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), groupcode.Normalize(args[0]))
			},
		},
		&cobra.Command{
			Use:   "mask <input>",
			Short: "Render input the way the code field shows it",
			Args:  cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), groupcode.Mask(args[0]))
			},
		},
		&cobra.Command{
			Use:   "classify <input>",
			Short: "Classify a candidate code",
			Args:  cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				c := groupcode.Classify(args[0])
				if c.OK() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", c.State, c.Code, c.Code.Display())
					return
				}
				fmt.Fprintln(cmd.OutOrStdout(), c.State)
			},
		},
		newResolveCmd(),
		newGenerateCmd(),
		newLinkCmd(),
		newQRCmd(),
	)
	return code
}

func newResolveCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "resolve <input>",
		Short: "Resolve a deep link, QR payload or typed code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := resolver.ParseSource(source)
			if err != nil {
				return err
			}
			req, err := resolver.New(qrScheme).Resolve(src, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "code:   %s (%s)\n", req.Code, req.Code.Display())
			fmt.Fprintf(out, "source: %s\n", req.Source)
			if req.GroupName != "" {
				fmt.Fprintf(out, "name:   %s\n", req.GroupName)
			}
			if req.Legacy {
				fmt.Fprintln(out, "legacy: yes")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "manual", "Input source: deeplink, qr or manual")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Draw random group codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("count must be at least 1")
			}
			for i := 0; i < count; i++ {
				c, err := groupcode.Generate(nil)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), c.Display())
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "How many codes")
	return cmd
}

func newLinkCmd() *cobra.Command {
	var base, name string

	cmd := &cobra.Command{
		Use:   "link <code>",
		Short: "Print the share link and QR payload for a code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := groupcode.ToCanonical(args[0])
			if err != nil {
				return err
			}
			link, err := resolver.DeepLinkURL(base, c)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), link)
			fmt.Fprintln(cmd.OutOrStdout(), resolver.New(qrScheme).ScanPayload(c, name))
			return nil
		},
	}

	cmd.Flags().StringVar(&base, "base", cliparse.DefaultPublicURL, "Web app URL")
	cmd.Flags().StringVar(&name, "name", "", "Group name for the QR payload")
	return cmd
}

func newQRCmd() *cobra.Command {
	var out, name string
	var size int

	cmd := &cobra.Command{
		Use:   "qr <code>",
		Short: "Write a group's QR code as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := groupcode.ToCanonical(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = c.String() + ".png"
			}
			payload := resolver.New(qrScheme).ScanPayload(c, name)
			if err := qrcode.WriteFile(payload, qrcode.Medium, size, out); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			if _, err := os.Stat(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", out, payload)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default <code>.png)")
	cmd.Flags().StringVar(&name, "name", "", "Group name for the QR payload")
	cmd.Flags().IntVar(&size, "size", 256, "Image size in pixels")
	return cmd
}
