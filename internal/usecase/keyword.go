package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxKeywordRunes = 100

var (
	multipleSpacesRegex = regexp.MustCompile(`\s+`)

	keywordControlRegex = regexp.MustCompile(`[\x00-\x1f\x7f]`)

	cacheKeyUnsafeRegex = regexp.MustCompile(`[\s:]+`)
)

// NormalizeKeyword cleans a search keyword before it is sent. It replaces
// control characters with spaces, collapses whitespace and caps the length
// at a word boundary when one is close enough. Punctuation is sent as typed.
func NormalizeKeyword(keyword string) string {
	cleaned := keywordControlRegex.ReplaceAllString(keyword, " ")
	cleaned = multipleSpacesRegex.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if utf8.RuneCountInString(cleaned) > maxKeywordRunes {
		runes := []rune(cleaned)
		cleaned = string(runes[:maxKeywordRunes])
		if i := strings.LastIndex(cleaned, " "); i > len(cleaned)/2 {
			cleaned = cleaned[:i]
		}
	}
	return cleaned
}

// detailCacheKey builds the cache key of one product detail.
// Format: "detail:{shop_type}:{goods_id}"
func detailCacheKey(shopType, goodsID string) string {
	return fmt.Sprintf("detail:%s:%s", normalizeForCacheKey(shopType), normalizeForCacheKey(goodsID))
}

// normalizeForCacheKey lowercases s and replaces separators so that it can
// be used as one key component.
func normalizeForCacheKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return cacheKeyUnsafeRegex.ReplaceAllString(s, "_")
}
