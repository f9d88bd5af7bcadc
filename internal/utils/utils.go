package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	UserMentionRegex = regexp.MustCompile(`<@!?(\d+)>`)
	TxIDRegex        = regexp.MustCompile(`\(TxID:\s?(\d+)\)`)
	TxIDsRegex       = regexp.MustCompile(`\(TxIDs:\s?([\d,\s]+)\)`)
	SettlePayRegex   = regexp.MustCompile(`\(SettlePayID:\s?(\d+)\)`)
	PromptPayRegex   = regexp.MustCompile(`^(\d{10}|\d{13}|ewallet-\d+)$`)
)

// ExtractMentionIDs extracts user IDs from Discord mention strings
func ExtractMentionIDs(content string) []string {
	var ids []string
	matches := UserMentionRegex.FindAllStringSubmatch(content, -1)
	for _, match := range matches {
		if len(match) > 1 {
			ids = append(ids, match[1])
		}
	}
	return ids
}

// ExtractTxID extracts a transaction ID from a string
func ExtractTxID(content string) (int, bool) {
	match := TxIDRegex.FindStringSubmatch(content)
	if len(match) > 1 {
		id, err := strconv.Atoi(match[1])
		if err == nil {
			return id, true
		}
	}
	return 0, false
}

// ExtractTxIDs extracts multiple transaction IDs from a string
func ExtractTxIDs(content string) ([]int, bool) {
	match := TxIDsRegex.FindStringSubmatch(content)
	if len(match) > 1 {
		idStrs := strings.Split(match[1], ",")
		var ids []int
		for _, idStr := range idStrs {
			id, err := strconv.Atoi(strings.TrimSpace(idStr))
			if err != nil {
				return nil, false
			}
			ids = append(ids, id)
		}
		return ids, true
	}
	return nil, false
}

// ExtractSettlePayID extracts a settlement payment ID from a string
func ExtractSettlePayID(content string) (int, bool) {
	match := SettlePayRegex.FindStringSubmatch(content)
	if len(match) > 1 {
		id, err := strconv.Atoi(match[1])
		if err == nil {
			return id, true
		}
	}
	return 0, false
}

// IsValidPromptPayID reports whether the given ID is a usable PromptPay
// target: a 10 digit phone number, a 13 digit citizen ID, or an e-wallet ID
func IsValidPromptPayID(id string) bool {
	return PromptPayRegex.MatchString(id)
}

// FormatNumberWithCommas formats a number with comma separators for thousands
func FormatNumberWithCommas(num float64) string {
	str := strconv.FormatFloat(num, 'f', 2, 64)
	parts := strings.Split(str, ".")
	integerPart := parts[0]

	negative := strings.HasPrefix(integerPart, "-")
	if negative {
		integerPart = integerPart[1:]
	}

	// Format the integer part with commas
	var formatted strings.Builder
	if negative {
		formatted.WriteRune('-')
	}
	for i, c := range integerPart {
		if i > 0 && (len(integerPart)-i)%3 == 0 {
			formatted.WriteRune(',')
		}
		formatted.WriteRune(c)
	}

	// Add decimal part if it exists
	if len(parts) > 1 {
		formatted.WriteRune('.')
		formatted.WriteString(parts[1])
	}

	return formatted.String()
}
