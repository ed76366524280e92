// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package resolver

import (
	"fmt"
	"net/url"

	"github.com/metonline/hesap-paylas/groupcode"
)

// DeepLinkURL builds the share link for code, e.g.
// https://metonline.github.io/hesap-paylas/?groupCode=123-456
func DeepLinkURL(base string, code groupcode.Code) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid share base url: %w", err)
	}
	q := u.Query()
	q.Set(ParamGroupCode, code.Display())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ScanPayload builds the text printed into a group's QR code.
func (r *Resolver) ScanPayload(code groupcode.Code, name string) string {
	q := url.Values{}
	q.Set(ParamCode, code.Display())
	if name != "" {
		q.Set(ParamName, name)
	}
	return r.scheme + "://join?" + q.Encode()
}
