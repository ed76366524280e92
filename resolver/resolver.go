// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package resolver

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"

	"github.com/metonline/hesap-paylas/apperr"
	"github.com/metonline/hesap-paylas/groupcode"
)

// Query parameter names carrying a code in deep links and QR payloads.
const (
	ParamCode      = "code"
	ParamGroupCode = "groupCode" // alias used by share links
	ParamName      = "name"
)

// DefaultScheme is the custom URI scheme printed into QR codes.
const DefaultScheme = "hesappaylas"

const maxNameLen = 100

// Source tags where a candidate code came from.
type Source int

const (
	DeepLink Source = iota + 1
	QRScan
	ManualEntry
)

func (s Source) String() string {
	switch s {
	case DeepLink:
		return "deep_link"
	case QRScan:
		return "qr_scan"
	case ManualEntry:
		return "manual_entry"
	default:
		return "unknown"
	}
}

// ParseSource maps the wire names back to a Source.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deep_link", "deeplink", "url":
		return DeepLink, nil
	case "qr_scan", "qr", "scan":
		return QRScan, nil
	case "manual_entry", "manual":
		return ManualEntry, nil
	}
	return 0, fmt.Errorf("unknown source %q", s)
}

// JoinRequest is a validated code ready for the join orchestrator.
type JoinRequest struct {
	Code      groupcode.Code `json:"code"`
	Source    Source         `json:"-"`
	GroupName string         `json:"group_name,omitempty"`
	Legacy    bool           `json:"legacy,omitempty"`
}

// Resolver turns raw input from any source into a JoinRequest.
type Resolver struct {
	scheme string
	policy *bluemonday.Policy
}

// New creates a Resolver accepting QR payloads under scheme.
// An empty scheme means DefaultScheme.
func New(scheme string) *Resolver {
	if scheme == "" {
		scheme = DefaultScheme
	}
	return &Resolver{
		scheme: strings.ToLower(scheme),
		policy: bluemonday.StrictPolicy(),
	}
}

// Scheme returns the QR payload scheme.
func (r *Resolver) Scheme() string { return r.scheme }

// Resolve dispatches on source. Every failure is an *apperr.Error and is
// recoverable.
func (r *Resolver) Resolve(source Source, raw string) (JoinRequest, error) {
	switch source {
	case DeepLink:
		return r.FromURL(raw)
	case QRScan:
		return r.FromScan(raw)
	case ManualEntry:
		return r.FromManual(raw)
	}
	return JoinRequest{}, apperr.New(apperr.CodeValidation, fmt.Sprintf("unknown source %d", source))
}

// FromURL reads the code from a full URL, a "?query" or a bare query string.
func (r *Resolver) FromURL(raw string) (JoinRequest, error) {
	q, err := parseQuery(raw)
	if err != nil {
		return JoinRequest{}, apperr.Wrap(apperr.CodeMalformedCode, "link could not be read", err)
	}

	value := codeParam(q)
	if value == "" {
		return JoinRequest{}, apperr.ErrNoCode
	}

	c := groupcode.Classify(value)
	if !c.OK() {
		return JoinRequest{}, apperr.ErrMalformedCode
	}

	return JoinRequest{Code: c.Code, Source: DeepLink, Legacy: c.Legacy()}, nil
}

// FromScan accepts the two payload generations printed into QR codes:
//
//	hesappaylas://join?code=123-456&name=Mavi   (current)
//	Mavi-123-456, Mavi-123-456-789             (legacy, split on "-")
//
// A printed share link (https://...?groupCode=123-456) is accepted too.
func (r *Resolver) FromScan(payload string) (JoinRequest, error) {
	p := strings.TrimSpace(payload)
	if p == "" {
		return JoinRequest{}, apperr.ErrNoCode
	}

	if strings.Contains(p, "://") {
		return r.fromURIPayload(p)
	}
	return r.fromLegacyPayload(p)
}

// FromManual validates a value typed into the masked input field.
func (r *Resolver) FromManual(value string) (JoinRequest, error) {
	if strings.TrimSpace(value) == "" {
		return JoinRequest{}, apperr.ErrNoCode
	}
	c := groupcode.Classify(value)
	if !c.OK() {
		return JoinRequest{}, apperr.ErrMalformedCode
	}
	return JoinRequest{Code: c.Code, Source: ManualEntry, Legacy: c.Legacy()}, nil
}

func (r *Resolver) fromURIPayload(p string) (JoinRequest, error) {
	u, err := url.Parse(p)
	if err != nil {
		return JoinRequest{}, apperr.ErrScanFormatUnrecognized.WithCause(err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != r.scheme && scheme != "http" && scheme != "https" {
		return JoinRequest{}, apperr.ErrScanFormatUnrecognized
	}

	q := u.Query()
	value := codeParam(q)
	if value == "" {
		return JoinRequest{}, apperr.ErrScanFormatUnrecognized
	}

	c := groupcode.Classify(value)
	if !c.OK() {
		return JoinRequest{}, apperr.ErrScanFormatUnrecognized
	}

	return JoinRequest{
		Code:      c.Code,
		Source:    QRScan,
		GroupName: r.cleanName(q.Get(ParamName)),
		Legacy:    c.Legacy(),
	}, nil
}

func (r *Resolver) fromLegacyPayload(p string) (JoinRequest, error) {
	segs := strings.Split(p, "-")

	var name string
	if len(segs) >= 3 && !allDigits(segs[0]) {
		name = segs[0]
		segs = segs[1:]
	}

	switch len(segs) {
	case 1:
		// bare "123456"
		if len(segs[0]) != groupcode.Length || !allDigits(segs[0]) {
			return JoinRequest{}, apperr.ErrScanFormatUnrecognized
		}
	case 2, 3:
		for _, s := range segs {
			if len(s) != 3 || !allDigits(s) {
				return JoinRequest{}, apperr.ErrScanFormatUnrecognized
			}
		}
	default:
		return JoinRequest{}, apperr.ErrScanFormatUnrecognized
	}

	c := groupcode.Classify(strings.Join(segs, "-"))
	if !c.OK() {
		return JoinRequest{}, apperr.ErrScanFormatUnrecognized
	}

	return JoinRequest{
		Code:      c.Code,
		Source:    QRScan,
		GroupName: r.cleanName(name),
		Legacy:    c.Legacy() || name != "",
	}, nil
}

// cleanName strips markup from a payload name so the UI can render it.
func (r *Resolver) cleanName(name string) string {
	name = norm.NFC.String(strings.TrimSpace(r.policy.Sanitize(name)))
	if utf8.RuneCountInString(name) > maxNameLen {
		name = string([]rune(name)[:maxNameLen])
	}
	return name
}

func codeParam(q url.Values) string {
	if v := strings.TrimSpace(q.Get(ParamCode)); v != "" {
		return v
	}
	return strings.TrimSpace(q.Get(ParamGroupCode))
}

func parseQuery(raw string) (url.Values, error) {
	s := strings.TrimSpace(raw)
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[i+1:]
	}
	return url.ParseQuery(s)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
