package service

import (
	"fmt"
	"strconv"
	"strings"
)

const modelNumberPrefix = "MC"

// FormatModelNumber — "MC" + номер, дополненный нулями до трёх знаков.
func FormatModelNumber(n int) string {
	return fmt.Sprintf("%s%03d", modelNumberPrefix, n)
}

// parseModelNumber извлекает номер из "MC<цифры>"; остальное считается некорректным.
func parseModelNumber(s string) (int, bool) {
	digits, ok := strings.CutPrefix(s, modelNumberPrefix)
	if !ok || digits == "" {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NextModelNumber возвращает max(существующие)+1; некорректные номера пропускаются.
// Для пустого набора — MC001.
func NextModelNumber(existing []string) string {
	maxN := 0
	for _, s := range existing {
		if n, ok := parseModelNumber(s); ok && n > maxN {
			maxN = n
		}
	}
	return FormatModelNumber(maxN + 1)
}
