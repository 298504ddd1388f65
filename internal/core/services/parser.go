package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/lis186/smart-tra-mcp-server/internal/core/domain"
	"github.com/lis186/smart-tra-mcp-server/internal/core/ports/driven"
	"github.com/lis186/smart-tra-mcp-server/internal/logger"
)

// Confidence increments per extraction rule. Overlapping signals
// accumulate, capped at 1.0.
const (
	confRoute       = 0.4
	confTrainNo     = 0.4
	confPartialNo   = 0.25
	confDate        = 0.2
	confTime        = 0.2
	confPreference  = 0.05
	confidenceUpper = 1.0
)

// partialTrainNoDigits is the digit count at or below which a train
// number is too short to identify a single train.
const partialTrainNoDigits = 2

// trainTypeKeywords lists TRA train type names recognized in
// utterances, longest-first so 區間快 wins over 區間.
const trainTypeKeywords = `太魯閣|普悠瑪|自強|莒光|復興|區間快|區間|普快`

// Extraction patterns, compiled once. Route connectors are tried in
// slice order; the first match wins.
var (
	reBareTrainNo    = regexp.MustCompile(`^(\d{1,4})[A-Za-z]?$`)
	reTrainNoMarked  = regexp.MustCompile(`(?:車次|火車|列車)\s*(\d{1,4}[A-Za-z]?)`)
	reTrainNoSuffix  = regexp.MustCompile(`(\d{1,4}[A-Za-z]?)\s*次(?:列車|的車)?`)
	reTrainNoByType  = regexp.MustCompile(`(?:` + trainTypeKeywords + `)號?\s*(\d{1,4}[A-Za-z]?)`)
	reClockTime      = regexp.MustCompile(`([01]?\d|2[0-3]):([0-5]\d)(?::[0-5]\d)?`)
	reChineseTime    = regexp.MustCompile(`(凌晨|清晨|早上|上午|中午|下午|傍晚|晚上|深夜)?([0-9一二兩三四五六七八九十]{1,3})[點时時](半|[0-9一二三四五六七八九十]{1,3}分?)?`)
	reRelativeDate   = regexp.MustCompile(`大後天|後天|明天|明日|今天|今日|tomorrow|today`)
	reWeekday        = regexp.MustCompile(`(下)?(?:星期|週|周|禮拜)([一二三四五六日天])`)
	reExplicitDate   = regexp.MustCompile(`(\d{1,2})月(\d{1,2})日?|(\d{1,2})/(\d{1,2})`)
	reWindowHours    = regexp.MustCompile(`(?:未來|接下來)?(\d{1,2})個?小時內?|(?i:(?:next|within)\s+(\d{1,2})\s+hours?)`)
	reTrainTypePref  = regexp.MustCompile(`(` + trainTypeKeywords + `)號?`)
	reLeadingFiller  = regexp.MustCompile(`^(?:請問|麻煩|幫我查|幫我|我想要|我想|我要|查詢|查一下|想搭|想坐|搭乘|搭|坐)+`)
	reTrailingFiller = regexp.MustCompile(`(?:的火車|的列車|的車次|的班次|的車|火車時刻表|時刻表|時刻|火車|列車|班次|車次|怎麼走|怎麼去)+$`)
)

// routeConnector pairs a connector pattern with its rule name.
type routeConnector struct {
	rule string
	re   *regexp.Regexp
}

var routeConnectors = []routeConnector{
	{"route:從到", regexp.MustCompile(`從(.+?)到(.+)`)},
	{"route:到", regexp.MustCompile(`(.+?)到(.+)`)},
	{"route:去", regexp.MustCompile(`(.+?)去(.+)`)},
	{"route:往", regexp.MustCompile(`(.+?)往(.+)`)},
	{"route:arrow", regexp.MustCompile(`(.+?)→(.+)`)},
	{"route:ascii-arrow", regexp.MustCompile(`(.+?)->(.+)`)},
	{"route:from-to", regexp.MustCompile(`(?i)^from\s+(.+?)\s+to\s+(.+)$`)},
	{"route:to", regexp.MustCompile(`(?i)(.+?)\s+to\s+(.+)`)},
}

var cjkWeekdays = map[string]time.Weekday{
	"一": time.Monday, "二": time.Tuesday, "三": time.Wednesday,
	"四": time.Thursday, "五": time.Friday, "六": time.Saturday,
	"日": time.Sunday, "天": time.Sunday,
}

// QueryParser turns bilingual free-form travel utterances into
// structured queries. Parse never fails: unresolvable fields stay
// unset and lower the confidence score instead.
type QueryParser struct {
	clock driven.Clock
}

// NewQueryParser creates a parser using the injected clock to resolve
// relative dates.
func NewQueryParser(clock driven.Clock) *QueryParser {
	return &QueryParser{clock: clock}
}

// Parse extracts a structured query from raw text. Extraction rules
// consume the spans they match, so route endpoints are taken from the
// residue after temporal and preference phrases are gone.
func (p *QueryParser) Parse(text string) domain.ParsedQuery {
	q := domain.ParsedQuery{}
	working := normalizeUtterance(text)
	if working == "" {
		return q
	}

	confidence := 0.0
	addRule := func(rule string, inc float64) {
		q.MatchedRules = append(q.MatchedRules, rule)
		confidence += inc
	}

	// A bare numeric token is a train-number query outright.
	if m := reBareTrainNo.FindStringSubmatch(working); m != nil {
		p.setTrainNumber(&q, working, m[1], addRule)
		working = ""
	}

	// Temporal phrases go first so their digits are never mistaken
	// for train numbers.
	working = p.extractTime(&q, working, addRule)
	working = p.extractDate(&q, working, addRule)

	if q.TrainNumber == "" {
		working = p.extractMarkedTrainNumber(&q, working, addRule)
	}
	working = p.extractPreferences(&q, working, addRule)

	// After consuming everything else, a leftover numeric token is
	// still a train number ("明天的152").
	if q.TrainNumber == "" {
		residual := strings.TrimSpace(working)
		if m := reBareTrainNo.FindStringSubmatch(residual); m != nil {
			p.setTrainNumber(&q, residual, m[1], addRule)
			working = ""
		}
	}

	// Train-number queries short-circuit route extraction.
	if q.TrainNumber == "" {
		working = p.extractRoute(&q, working, addRule)
	}

	if confidence > confidenceUpper {
		confidence = confidenceUpper
	}
	q.Confidence = confidence

	logger.Debug("parsed %q: origin=%q dest=%q date=%q time=%q train=%q conf=%.2f rules=%v",
		text, q.OriginText, q.DestinationText, q.Date, q.Time, q.TrainNumber, q.Confidence, q.MatchedRules)
	return q
}

// setTrainNumber records a train-number token, flagging short tokens
// as partial so downstream routes them through the resolver.
func (p *QueryParser) setTrainNumber(q *domain.ParsedQuery, token, digits string, addRule func(string, float64)) {
	q.TrainNumber = token
	if len(digits) <= partialTrainNoDigits {
		q.IsPartialTrainNumber = true
		addRule("train_number:partial", confPartialNo)
		return
	}
	addRule("train_number", confTrainNo)
}

// extractMarkedTrainNumber finds train numbers flagged by context:
// 車次/列車 markers, the 次 counter, or adjacency to a train-type
// keyword.
func (p *QueryParser) extractMarkedTrainNumber(q *domain.ParsedQuery, working string, addRule func(string, float64)) string {
	for _, re := range []*regexp.Regexp{reTrainNoMarked, reTrainNoSuffix, reTrainNoByType} {
		m := re.FindStringSubmatch(working)
		if m == nil {
			continue
		}
		token := m[1]
		digits := strings.TrimRightFunc(token, unicode.IsLetter)
		p.setTrainNumber(q, token, digits, addRule)
		return strings.Replace(working, m[0], " ", 1)
	}
	return working
}

// extractTime recognizes bare HH:MM plus Chinese numeral/period forms
// and normalizes both to 24-hour HH:MM.
func (p *QueryParser) extractTime(q *domain.ParsedQuery, working string, addRule func(string, float64)) string {
	if m := reClockTime.FindStringSubmatch(working); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		q.Time = fmt.Sprintf("%02d:%02d", hour, minute)
		addRule("time:clock", confTime)
		return strings.Replace(working, m[0], " ", 1)
	}

	if m := reChineseTime.FindStringSubmatch(working); m != nil {
		period, hourToken, minuteToken := m[1], m[2], m[3]
		hour, ok := parseCJKNumber(hourToken)
		if !ok || hour > 23 {
			return working
		}
		minute := 0
		switch {
		case minuteToken == "半":
			minute = 30
		case minuteToken != "":
			v, ok := parseCJKNumber(strings.TrimSuffix(minuteToken, "分"))
			if !ok || v > 59 {
				return working
			}
			minute = v
		}
		hour = applyPeriod(period, hour)
		q.Time = fmt.Sprintf("%02d:%02d", hour, minute)
		addRule("time:chinese", confTime)
		return strings.Replace(working, m[0], " ", 1)
	}

	return working
}

// applyPeriod disambiguates a 12-hour numeral with its period word.
func applyPeriod(period string, hour int) int {
	switch period {
	case "下午", "傍晚", "晚上", "深夜":
		if hour < 12 {
			hour += 12
		}
	case "中午":
		// 中午12點 stays 12; 中午1點 means 13:00.
		if hour < 5 {
			hour += 12
		}
	case "凌晨", "清晨", "早上", "上午":
		if hour == 12 {
			hour = 0
		}
	}
	return hour
}

// extractDate resolves relative keywords, weekday references and
// explicit MM/DD forms to an absolute ISO date using the injected
// clock. Absence leaves Date unset; the caller defaults to today.
func (p *QueryParser) extractDate(q *domain.ParsedQuery, working string, addRule func(string, float64)) string {
	today := p.clock.Now()

	if m := reRelativeDate.FindString(working); m != "" {
		offsets := map[string]int{
			"今天": 0, "今日": 0, "today": 0,
			"明天": 1, "明日": 1, "tomorrow": 1,
			"後天": 2, "大後天": 3,
		}
		q.Date = today.AddDate(0, 0, offsets[m]).Format(time.DateOnly)
		addRule("date:relative", confDate)
		return strings.Replace(working, m, " ", 1)
	}

	if m := reWeekday.FindStringSubmatch(working); m != nil {
		target := cjkWeekdays[m[2]]
		days := (int(target) - int(today.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		if m[1] == "下" && days < 7 {
			days += 7
		}
		q.Date = today.AddDate(0, 0, days).Format(time.DateOnly)
		addRule("date:weekday", confDate)
		return strings.Replace(working, m[0], " ", 1)
	}

	if m := reExplicitDate.FindStringSubmatch(working); m != nil {
		monthStr, dayStr := m[1], m[2]
		if monthStr == "" {
			monthStr, dayStr = m[3], m[4]
		}
		month, _ := strconv.Atoi(monthStr)
		day, _ := strconv.Atoi(dayStr)
		if date, ok := nextOccurrence(today, month, day); ok {
			q.Date = date
			addRule("date:explicit", confDate)
			return strings.Replace(working, m[0], " ", 1)
		}
	}

	return working
}

// nextOccurrence resolves month/day to this year, or next year when
// the date has already passed. Impossible dates are rejected.
func nextOccurrence(today time.Time, month, day int) (string, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	candidate := time.Date(today.Year(), time.Month(month), day, 0, 0, 0, 0, today.Location())
	if candidate.Day() != day || int(candidate.Month()) != month {
		return "", false
	}
	startOfToday := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	if candidate.Before(startOfToday) {
		candidate = candidate.AddDate(1, 0, 0)
	}
	return candidate.Format(time.DateOnly), true
}

// extractPreferences runs the independent keyword scans.
func (p *QueryParser) extractPreferences(q *domain.ParsedQuery, working string, addRule func(string, float64)) string {
	scans := []struct {
		rule  string
		words []string
		apply func(*domain.Preferences)
	}{
		{"pref:fastest", []string{"最快", "fastest"}, func(pr *domain.Preferences) { pr.Fastest = true }},
		{"pref:cheapest", []string{"最便宜", "cheapest"}, func(pr *domain.Preferences) { pr.Cheapest = true }},
		{"pref:direct", []string{"直達", "direct"}, func(pr *domain.Preferences) { pr.DirectOnly = true }},
		{"pref:all-types", []string{"所有車種", "全部車種", "不限車種", "all train types"}, func(pr *domain.Preferences) { pr.IncludeAllTrainTypes = true }},
	}
	for _, scan := range scans {
		for _, w := range scan.words {
			if strings.Contains(working, w) {
				scan.apply(&q.Preferences)
				addRule(scan.rule, confPreference)
				working = strings.Replace(working, w, " ", 1)
				break
			}
		}
	}

	if m := reWindowHours.FindStringSubmatch(working); m != nil {
		hoursStr := m[1]
		if hoursStr == "" {
			hoursStr = m[2]
		}
		if hours, err := strconv.Atoi(hoursStr); err == nil && hours > 0 {
			// Bounding to a sane range is the filter engine's job.
			q.Preferences.TimeWindowHours = hours
			addRule("pref:window", confPreference)
			working = strings.Replace(working, m[0], " ", 1)
		}
	}

	if m := reTrainTypePref.FindStringSubmatch(working); m != nil {
		q.Preferences.TrainType = m[1]
		addRule("pref:train-type", confPreference)
		working = strings.Replace(working, m[0], " ", 1)
	}

	return working
}

// extractRoute tries the connector patterns in priority order on the
// residual text; the first match populates both endpoints.
func (p *QueryParser) extractRoute(q *domain.ParsedQuery, working string, addRule func(string, float64)) string {
	working = strings.TrimSpace(working)
	for _, connector := range routeConnectors {
		m := connector.re.FindStringSubmatch(working)
		if m == nil {
			continue
		}
		origin := cleanEndpoint(m[1], true)
		destination := cleanEndpoint(m[2], false)
		if origin == "" || destination == "" {
			continue
		}
		q.OriginText = origin
		q.DestinationText = destination
		addRule(connector.rule, confRoute)
		return ""
	}
	return working
}

// cleanEndpoint strips filler words and punctuation around a route
// endpoint without touching the station reference itself.
func cleanEndpoint(s string, leading bool) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "?？!！。，,.")
	if leading {
		s = reLeadingFiller.ReplaceAllString(s, "")
	}
	s = reTrailingFiller.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// normalizeUtterance strips control characters and collapses runs of
// whitespace. Han variant characters are preserved; folding them is
// the station directory's job.
func normalizeUtterance(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsControl(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
