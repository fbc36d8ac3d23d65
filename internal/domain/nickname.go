// Package domain contains entities without logic, just meta-data
package domain

import (
	"errors"
	"strings"
)

const (
	MaxNicknameLen  = 36
	MaxTimezoneLen  = 64
	DefaultTimezone = "UTC"
	UnknownNickname = "Unknown"
)

var (
	ErrNicknameTooLong = errors.New("nickname too long")
	ErrNicknameEmpty   = errors.New("nickname empty")
)

// NormalizeNickname trims the nickname and enforces the length rules.
func NormalizeNickname(nickname string) (string, error) {
	n := strings.TrimSpace(nickname)
	if len(n) == 0 {
		return "", ErrNicknameEmpty
	}
	if len(n) > MaxNicknameLen {
		return "", ErrNicknameTooLong
	}
	return n, nil
}

// NormalizeTimezone falls back to UTC for empty or oversized values.
func NormalizeTimezone(tz string) string {
	tz = strings.TrimSpace(tz)
	if tz == "" || len(tz) > MaxTimezoneLen {
		return DefaultTimezone
	}
	return tz
}
