// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/metonline/hesap-paylas/bill"
)

func newSplitCmd() *cobra.Command {
	var (
		file    string
		members []string
		items   []string
		tip     string
		tipPct  float64
		taxPct  float64
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Compute a per-person bill breakdown",
		Long: `Split a bill from a JSON request file or from flags.

Items are member:name:price[:quantity[:kind]] where kind is personal,
shared or excluded. Prices accept "12,50", "12.50" or "1.234,50 ₺".

Example:
  hesapctl split -m Ayşe -m Mehmet \
    -i "Ayşe:Mantı:250" -i "Mehmet:Köfte:300" -i "Ayşe:Meze:100:3:shared" \
    --tip-percent 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req bill.Request
			if file != "" {
				if err := readRequest(cmd.InOrStdin(), file, &req); err != nil {
					return err
				}
			} else {
				req.Members = members
				for _, s := range items {
					it, err := parseItem(s)
					if err != nil {
						return err
					}
					req.Items = append(req.Items, it)
				}
			}

			if tip != "" {
				k, err := bill.ParseKurus(tip)
				if err != nil {
					return fmt.Errorf("tip: %w", err)
				}
				req.TipAmount = k
			}
			if tipPct > 0 {
				req.TipPercent = tipPct
			}
			if taxPct > 0 {
				req.TaxPercent = taxPct
			}

			b, err := bill.Split(req)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(b)
			}
			printBreakdown(cmd.OutOrStdout(), b)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON request file (- for stdin)")
	cmd.Flags().StringArrayVarP(&members, "member", "m", nil, "Member name (repeatable)")
	cmd.Flags().StringArrayVarP(&items, "item", "i", nil, "Item member:name:price[:qty[:kind]] (repeatable)")
	cmd.Flags().StringVar(&tip, "tip", "", "Fixed tip amount")
	cmd.Flags().Float64Var(&tipPct, "tip-percent", 0, "Tip as percent of the subtotal")
	cmd.Flags().Float64Var(&taxPct, "tax-percent", 0, "Tax as percent of the subtotal")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func readRequest(stdin io.Reader, path string, req *bill.Request) error {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(req); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

func parseItem(s string) (bill.Item, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 || len(parts) > 5 {
		return bill.Item{}, fmt.Errorf("item %q: want member:name:price[:qty[:kind]]", s)
	}

	price, err := bill.ParseKurus(parts[2])
	if err != nil {
		return bill.Item{}, fmt.Errorf("item %q: %w", s, err)
	}
	it := bill.Item{
		Member:   strings.TrimSpace(parts[0]),
		Name:     strings.TrimSpace(parts[1]),
		Price:    price,
		Quantity: 1,
		Kind:     bill.Personal,
	}
	if len(parts) > 3 {
		q, err := strconv.Atoi(parts[3])
		if err != nil {
			return bill.Item{}, fmt.Errorf("item %q: bad quantity", s)
		}
		it.Quantity = q
	}
	if len(parts) > 4 {
		it.Kind = bill.Kind(strings.ToLower(strings.TrimSpace(parts[4])))
	}
	return it, nil
}

func printBreakdown(w io.Writer, b *bill.Breakdown) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "member\tpersonal\tshared\ttip\ttax\ttotal\t")
	for _, s := range b.Shares {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n", s.Member,
			bill.Format(s.Personal), bill.Format(s.Shared),
			bill.Format(s.Tip), bill.Format(s.Tax), s.Display)
	}
	tw.Flush()
	fmt.Fprintf(w, "\nsubtotal %s, tip %s, tax %s, total %s\n",
		bill.Format(b.Subtotal), bill.Format(b.Tip), bill.Format(b.Tax), b.Display)
	if b.ExcludedTotal > 0 {
		fmt.Fprintf(w, "not charged: %s\n", bill.Format(b.ExcludedTotal))
	}
}
