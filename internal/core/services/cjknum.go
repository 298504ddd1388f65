package services

import "strconv"

// cjkDigits maps single Han numerals to values. 兩 is the colloquial
// form of 2 used with counters ("兩點" = two o'clock).
var cjkDigits = map[rune]int{
	'零': 0, '〇': 0,
	'一': 1, '二': 2, '兩': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

// parseCJKNumber converts a small Chinese-numeral or ASCII-digit token
// to an int. It covers the 0–99 range used by clock times (十,
// 二十三, 八, 12). Returns false for anything it cannot read.
func parseCJKNumber(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}

	runes := []rune(s)

	// Forms around 十: 十=10, 十五=15, 二十=20, 二十三=23.
	for i, r := range runes {
		if r != '十' {
			continue
		}
		tens := 1
		if i > 0 {
			d, ok := singleCJKDigit(runes[:i])
			if !ok {
				return 0, false
			}
			tens = d
		}
		units := 0
		if i < len(runes)-1 {
			d, ok := singleCJKDigit(runes[i+1:])
			if !ok {
				return 0, false
			}
			units = d
		}
		return tens*10 + units, true
	}

	return singleCJKDigit(runes)
}

func singleCJKDigit(runes []rune) (int, bool) {
	if len(runes) != 1 {
		return 0, false
	}
	d, ok := cjkDigits[runes[0]]
	return d, ok
}
