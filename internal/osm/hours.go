package osm

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/grazbites/scraper/internal/model"
)

var dayCodes = map[string]int{
	"Mo": 0, "Tu": 1, "We": 2, "Th": 3, "Fr": 4, "Sa": 5, "Su": 6,
}

var dayRangeRe = regexp.MustCompile(`^(Mo|Tu|We|Th|Fr|Sa|Su)(?:-(Mo|Tu|We|Th|Fr|Sa|Su))?$`)

const fullDay = "00:00-24:00"

// expandDays turns "Mo-Fr" into Monday..Friday and "Sa" into Saturday.
// Ranges whose end precedes the start wrap across the week.
func expandDays(token string) []model.Weekday {
	m := dayRangeRe.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return nil
	}
	start := dayCodes[m[1]]
	if m[2] == "" {
		return []model.Weekday{model.Week[start]}
	}
	end := dayCodes[m[2]]

	var days []model.Weekday
	for i := start; ; i = (i + 1) % len(model.Week) {
		days = append(days, model.Week[i])
		if i == end {
			break
		}
	}
	return days
}

// expandDayList expands a comma-separated list of day tokens.
func expandDayList(list string) []model.Weekday {
	var days []model.Weekday
	for _, tok := range strings.Split(list, ",") {
		days = append(days, expandDays(tok)...)
	}
	return days
}

// ParseOpeningHours does a best-effort parse of an OSM opening_hours value.
// Rules are applied in order so later rules overwrite earlier ones for the
// same day. It returns nil when nothing could be parsed.
func ParseOpeningHours(raw string) model.OpeningHours {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	hours := model.OpeningHours{}
	for _, rule := range strings.Split(raw, ";") {
		rule = strings.TrimSpace(rule)
		if rule == "" {
			continue
		}

		if rule == "24/7" {
			for _, d := range model.Week {
				hours[d] = model.OpenRange(fullDay)
			}
			continue
		}

		if strings.Contains(rule, " off") {
			for _, d := range expandDayList(strings.TrimSpace(strings.Replace(rule, " off", "", 1))) {
				hours[d] = model.ClosedDay()
			}
			continue
		}

		idx := strings.IndexFunc(rule, unicode.IsSpace)
		if idx < 0 {
			continue
		}
		timePart := strings.TrimSpace(rule[idx:])
		for _, d := range expandDayList(rule[:idx]) {
			hours[d] = model.OpenRange(timePart)
		}
	}

	if len(hours) == 0 {
		return nil
	}
	return hours
}
