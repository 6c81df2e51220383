// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package logging

import "strings"

// Email masks the local part of an address, keeping the first character.
//
//	Email("an.nguyen@example.vn") == "a***@example.vn"
func Email(addr string) string {
	at := strings.LastIndexByte(addr, '@')
	if at <= 0 {
		return "***"
	}
	return addr[:1] + "***" + addr[at:]
}

// Token keeps the last four characters of a credential.
func Token(tok string) string {
	if len(tok) <= 8 {
		return "***"
	}
	return "***" + tok[len(tok)-4:]
}
