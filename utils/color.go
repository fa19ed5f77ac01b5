package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var reHexColor = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func IsValidHex(s string) bool {
	return reHexColor.MatchString(strings.TrimSpace(s))
}

// NormalizeHex returns the colour as lowercase #rrggbb, expanding the short
// #rgb form. ok is false for anything that is not a hex colour.
func NormalizeHex(s string) (hex string, ok bool) {
	m := reHexColor.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}
	digits := strings.ToLower(m[1])
	if len(digits) == 3 {
		digits = string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
	}
	return "#" + digits, true
}

// HexToRGB parses a hex colour in either accepted form.
func HexToRGB(s string) (r, g, b uint8, err error) {
	hex, ok := NormalizeHex(s)
	if !ok {
		return 0, 0, 0, fmt.Errorf("invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, err
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}

// ContrastColor picks black or white text for the given background using the
// YIQ brightness formula. Invalid input gets black.
func ContrastColor(background string) string {
	r, g, b, err := HexToRGB(background)
	if err != nil {
		return "#000000"
	}
	yiq := (int(r)*299 + int(g)*587 + int(b)*114) / 1000
	if yiq >= 128 {
		return "#000000"
	}
	return "#ffffff"
}
