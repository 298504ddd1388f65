package services

import (
	"fmt"
	"strconv"
	"strings"
)

// minutesPerDay is the modulus for clock arithmetic.
const minutesPerDay = 24 * 60

// parseClockMinutes converts "HH:MM" or "HH:MM:SS" to minutes since
// midnight. Seconds are dropped.
func parseClockMinutes(t string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(t), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// formatClockMinutes renders minutes-since-midnight as zero-padded
// "HH:MM". The value must already be in [0, 1440).
func formatClockMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// AddMinutesToTime shifts a clock time by delta minutes with midnight
// wraparound. Delta may be negative and arbitrarily large; the wrap is
// done by repeated add/subtract of a day rather than a single modulo,
// which keeps negative operands out of the % operator entirely.
// Returns the input unchanged when it does not parse.
func AddMinutesToTime(t string, delta int) string {
	m, ok := parseClockMinutes(t)
	if !ok {
		return t
	}
	m += delta
	for m < 0 {
		m += minutesPerDay
	}
	for m >= minutesPerDay {
		m -= minutesPerDay
	}
	return formatClockMinutes(m)
}

// travelMinutes computes the duration from departure to arrival,
// treating an arrival earlier than departure as crossing midnight.
func travelMinutes(departure, arrival string) int {
	d, okD := parseClockMinutes(departure)
	a, okA := parseClockMinutes(arrival)
	if !okD || !okA {
		return 0
	}
	diff := a - d
	if diff < 0 {
		diff += minutesPerDay
	}
	return diff
}

// normalizeClock reduces "HH:MM:SS" to zero-padded "HH:MM"; invalid
// input comes back unchanged.
func normalizeClock(t string) string {
	m, ok := parseClockMinutes(t)
	if !ok {
		return t
	}
	return formatClockMinutes(m)
}
