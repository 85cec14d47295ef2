// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose utility functions including
// URL slug generation and validation with Unicode normalization support.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nonWordOrSpace matches everything except word characters, whitespace and hyphens
	nonWordOrSpace = regexp.MustCompile(`[^\w\s-]`)
	// whitespaceRun matches one or more whitespace characters
	whitespaceRun = regexp.MustCompile(`\s+`)
	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Slugify converts a title to a URL-friendly slug: lowercased, accents
// removed, punctuation stripped, whitespace collapsed to single hyphens.
func Slugify(s string) string {
	// Normalize unicode characters (decompose accents)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)

	// Transliterate anything left outside ASCII
	result = unidecode.Unidecode(result)

	result = strings.ToLower(result)

	// Strip punctuation, then collapse whitespace to hyphens
	result = nonWordOrSpace.ReplaceAllString(result, "")
	result = whitespaceRun.ReplaceAllString(strings.TrimSpace(result), "-")

	result = multipleHyphens.ReplaceAllString(result, "-")

	return strings.Trim(result, "-")
}

// IsValidSlug checks if a string is a valid slug format.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_') {
			return false
		}
	}

	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	return !strings.Contains(s, "--")
}
