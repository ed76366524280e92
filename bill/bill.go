// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package bill

import (
	"fmt"
	"math"
	"math/bits"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/unicode/norm"

	"github.com/metonline/hesap-paylas/apperr"
)

// Kurus is an amount in minor units (1/100 TL).
type Kurus int64

// Bounds on one bill. Within them no total can overflow a Kurus.
const (
	MaxAmount Kurus = 100_000_000 // 1.000.000 ₺, per item price and fixed tip
	MaxItems        = 500
)

type Kind string

const (
	Personal Kind = "personal"
	Shared   Kind = "shared"
	Excluded Kind = "excluded"
)

type Item struct {
	Member   string `json:"member" validate:"required"`
	Name     string `json:"name" validate:"required,max=100"`
	Price    Kurus  `json:"price" validate:"gte=0,lte=100000000"`
	Quantity int    `json:"quantity" validate:"gte=1,lte=1000"`
	Kind     Kind   `json:"kind" validate:"oneof=personal shared excluded"`
}

func (i Item) Total() Kurus {
	return i.Price * Kurus(i.Quantity)
}

// Request describes one table's bill. Use either TipPercent or TipAmount.
type Request struct {
	Members    []string `json:"members" validate:"required,min=1,max=50,dive,required"`
	Items      []Item   `json:"items" validate:"max=500,dive"`
	TipPercent float64  `json:"tip_percent" validate:"gte=0,lte=100"`
	TipAmount  Kurus    `json:"tip_amount" validate:"gte=0,lte=100000000"`
	TaxPercent float64  `json:"tax_percent" validate:"gte=0,lte=100"`
}

type Share struct {
	Member   string  `json:"member"`
	Personal Kurus   `json:"personal"`
	Shared   Kurus   `json:"shared"`
	Excluded Kurus   `json:"excluded"`
	Tip      Kurus   `json:"tip"`
	Tax      Kurus   `json:"tax"`
	Total    Kurus   `json:"total"`
	Ratio    float64 `json:"ratio"`
	Display  string  `json:"display"`
}

// Base is what the member consumed: personal items plus their equal part of
// the shared items.
func (s Share) Base() Kurus {
	return s.Personal + s.Shared
}

type Breakdown struct {
	Subtotal      Kurus   `json:"subtotal"`
	SharedTotal   Kurus   `json:"shared_total"`
	ExcludedTotal Kurus   `json:"excluded_total"`
	Tip           Kurus   `json:"tip"`
	Tax           Kurus   `json:"tax"`
	GrandTotal    Kurus   `json:"grand_total"`
	SharedEach    Kurus   `json:"shared_each"`
	Shares        []Share `json:"shares"`
	Display       string  `json:"display"`
}

// Split computes the per-person breakdown.
//
// Shared items are divided equally over all members. Excluded items are
// listed on the member but never charged. Tip and tax are spread in
// proportion to each member's base. Leftover kuruş go to members in
// order, so the shares always add up to GrandTotal.
func Split(req Request) (*Breakdown, error) {
	if err := check(req); err != nil {
		return nil, err
	}

	n := len(req.Members)
	index := make(map[string]int, n)
	shares := make([]Share, n)
	for i, m := range req.Members {
		index[memberKey(m)] = i
		shares[i].Member = m
	}

	var b Breakdown
	for _, it := range req.Items {
		i := index[memberKey(it.Member)]
		switch it.Kind {
		case Personal:
			shares[i].Personal += it.Total()
		case Shared:
			b.SharedTotal += it.Total()
		case Excluded:
			shares[i].Excluded += it.Total()
			b.ExcludedTotal += it.Total()
		}
	}

	equal := make([]int64, n)
	for i := range equal {
		equal[i] = 1
	}
	for i, part := range allocate(int64(b.SharedTotal), equal) {
		shares[i].Shared = Kurus(part)
	}
	b.SharedEach = b.SharedTotal / Kurus(n)

	bases := make([]int64, n)
	for i := range shares {
		bases[i] = int64(shares[i].Base())
		b.Subtotal += shares[i].Base()
	}

	b.Tip = req.TipAmount
	if req.TipPercent > 0 {
		b.Tip = percentOf(b.Subtotal, req.TipPercent)
	}
	b.Tax = percentOf(b.Subtotal, req.TaxPercent)

	weights := bases
	if b.Subtotal == 0 {
		weights = equal
	}
	tips := allocate(int64(b.Tip), weights)
	taxes := allocate(int64(b.Tax), weights)

	for i := range shares {
		s := &shares[i]
		s.Tip = Kurus(tips[i])
		s.Tax = Kurus(taxes[i])
		s.Total = s.Base() + s.Tip + s.Tax
		if b.Subtotal > 0 {
			s.Ratio = float64(s.Base()) / float64(b.Subtotal)
		}
		s.Display = Format(s.Total)
	}

	b.GrandTotal = b.Subtotal + b.Tip + b.Tax
	b.Shares = shares
	b.Display = Format(b.GrandTotal)
	return &b, nil
}

func check(req Request) error {
	fields := make(map[string]string)

	seen := make(map[string]bool, len(req.Members))
	for _, m := range req.Members {
		k := memberKey(m)
		if seen[k] {
			fields["members"] = fmt.Sprintf("duplicate member %q", m)
		}
		seen[k] = true
	}
	if len(req.Members) == 0 {
		fields["members"] = "is required"
	}
	for i, it := range req.Items {
		if !seen[memberKey(it.Member)] {
			fields[fmt.Sprintf("items[%d].member", i)] = fmt.Sprintf("%q is not a member", it.Member)
		}
		switch it.Kind {
		case Personal, Shared, Excluded:
		default:
			fields[fmt.Sprintf("items[%d].kind", i)] = "must be one of: personal shared excluded"
		}
		if it.Price < 0 || it.Quantity < 1 {
			fields[fmt.Sprintf("items[%d]", i)] = "price and quantity must be positive"
		}
		if it.Price > MaxAmount || it.Quantity > 1000 {
			fields[fmt.Sprintf("items[%d]", i)] = fmt.Sprintf("price must be at most %s and quantity at most 1000", Format(MaxAmount))
		}
	}
	if len(req.Items) > MaxItems {
		fields["items"] = fmt.Sprintf("at most %d items", MaxItems)
	}
	if req.TipAmount > MaxAmount {
		fields["tip_amount"] = fmt.Sprintf("must be at most %s", Format(MaxAmount))
	}
	if req.TipPercent > 0 && req.TipAmount > 0 {
		fields["tip_amount"] = "set either tip_percent or tip_amount"
	}
	if req.TipPercent < 0 || req.TaxPercent < 0 || req.TipAmount < 0 {
		fields["tip"] = "must not be negative"
	}

	if len(fields) > 0 {
		return apperr.Validation("invalid bill", fields)
	}
	return nil
}

// memberKey matches member names typed on different keyboards: "Ayşe"
// precomposed and with a combining cedilla are the same person.
func memberKey(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

func percentOf(amount Kurus, pct float64) Kurus {
	if pct <= 0 {
		return 0
	}
	return Kurus(math.Round(float64(amount) * pct / 100))
}

// allocate splits total over weights by largest remainder. Ties go to the
// lower index. All-zero weights split equally. total and weights must not
// be negative.
func allocate(total int64, weights []int64) []int64 {
	out := make([]int64, len(weights))
	if total == 0 || len(weights) == 0 {
		return out
	}

	var sum int64
	for _, w := range weights {
		sum += w
	}
	if sum == 0 {
		weights = make([]int64, len(weights))
		for i := range weights {
			weights[i] = 1
		}
		sum = int64(len(weights))
	}

	type rem struct {
		i int
		r int64
	}
	rems := make([]rem, len(weights))
	var given int64
	for i, w := range weights {
		q, r := mulDiv(total, w, sum)
		out[i] = q
		given += q
		rems[i] = rem{i: i, r: r}
	}

	sort.SliceStable(rems, func(a, b int) bool { return rems[a].r > rems[b].r })
	for k := int64(0); k < total-given; k++ {
		out[rems[k].i]++
	}
	return out
}

// mulDiv returns a*b/c and a*b%c with a 128-bit intermediate product.
// It requires a <= c or b <= c so the quotient fits.
func mulDiv(a, b, c int64) (q, r int64) {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	uq, ur := bits.Div64(hi, lo, uint64(c))
	return int64(uq), int64(ur)
}

// Format renders k as Turkish lira, e.g. "1.234,50 ₺".
func Format(k Kurus) string {
	sign := ""
	if k < 0 {
		sign = "-"
		k = -k
	}
	return sign + humanize.FormatFloat("#.###,##", float64(k)/100) + " ₺"
}

// ParseKurus reads "12,50", "12.50", "1.234,50 ₺" or "45" into kuruş.
// A comma marks the decimal part; dots before it group thousands.
func ParseKurus(s string) (Kurus, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "₺"))
	s = strings.TrimSpace(strings.TrimPrefix(s, "₺"))
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimals", s)
	}
	frac += strings.Repeat("0", 2-len(frac))

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || w < 0 {
		return 0, fmt.Errorf("parse amount %q: invalid", s)
	}
	return Kurus(w*100 + f), nil
}
