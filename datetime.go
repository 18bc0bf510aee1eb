package simdcsv

import "strings"

// FormatLocale supplies the month/day names and AM/PM markers used by %a,
// %A, %b, %B, and %p.
type FormatLocale struct {
	Months      [12]string
	MonthsAbbr  [12]string
	Days        [7]string
	DaysAbbr    [7]string
	AM          string
	PM          string
}

// EnglishLocale returns the default English locale, the only one the core
// ships (spec.md §4.5: locale is pluggable, but no locale table is mandated
// beyond a working default).
func EnglishLocale() FormatLocale {
	return FormatLocale{
		Months: [12]string{
			"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December",
		},
		MonthsAbbr: [12]string{
			"Jan", "Feb", "Mar", "Apr", "May", "Jun",
			"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
		},
		Days: [7]string{
			"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
		},
		DaysAbbr: [7]string{
			"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat",
		},
		AM: "AM",
		PM: "PM",
	}
}

// ParsedDateTime is the structured result of FormatParser.Parse: a calendar
// date and/or time of day, optionally with a UTC offset.
type ParsedDateTime struct {
	Year, Month, Day          int
	Hour, Minute, Second      int
	FractionalMicros          int
	HaveDate, HaveTime        bool
	HaveTZOffset              bool
	TZOffsetMinutes           int
	PM                        bool
	Have12Hour                bool
}

const leapYearsBefore1970 = 477

func isLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

var daysInMonthTable = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func daysInMonth(year, month int) int {
	if month == 2 && isLeapYear(year) {
		return 29
	}
	return daysInMonthTable[month-1]
}

// leapYearsBefore counts leap years strictly before year, counting from
// year 1 (matching the original implementation's convention).
func leapYearsBefore(year int) int {
	y := year - 1
	return y/4 - y/100 + y/400
}

// daysFromEpochToYear returns the number of days between 1970-01-01 and
// January 1 of year.
func daysFromEpochToYear(year int) int64 {
	if year >= 1970 {
		leaps := leapYearsBefore(year) - leapYearsBefore(1970)
		return int64(year-1970)*365 + int64(leaps)
	}
	leaps := leapYearsBefore(1970) - leapYearsBefore(year)
	return -(int64(1970-year)*365 + int64(leaps))
}

// ToEpochDays returns the number of days since 1970-01-01 for the date
// portion of p. Valid only when p.HaveDate is true.
func (p ParsedDateTime) ToEpochDays() int64 {
	days := daysFromEpochToYear(p.Year)
	for m := 1; m < p.Month; m++ {
		days += int64(daysInMonth(p.Year, m))
	}
	days += int64(p.Day - 1)
	return days
}

// ToSecondsSinceMidnightMicros returns the time-of-day portion of p in
// microseconds since midnight. Valid only when p.HaveTime is true.
func (p ParsedDateTime) ToSecondsSinceMidnightMicros() int64 {
	hour := p.Hour
	if p.Have12Hour {
		hour = hour % 12
		if p.PM {
			hour += 12
		}
	}
	total := int64(hour)*3600 + int64(p.Minute)*60 + int64(p.Second)
	return total*1_000_000 + int64(p.FractionalMicros)
}

// ToEpochMicros combines date and time into microseconds since the Unix
// epoch, applying the parsed UTC offset if present.
func (p ParsedDateTime) ToEpochMicros() int64 {
	var micros int64
	if p.HaveDate {
		micros += p.ToEpochDays() * 86400 * 1_000_000
	}
	if p.HaveTime {
		micros += p.ToSecondsSinceMidnightMicros()
	}
	if p.HaveTZOffset {
		micros -= int64(p.TZOffsetMinutes) * 60 * 1_000_000
	}
	return micros
}

// FormatParser parses fixed-format datetime strings driven by a
// strptime-style format string (%Y, %m, %d, %H, %M, %S, ...), per
// spec.md §4.5. It holds no mutable state beyond its configuration, so a
// single instance may be reused across many Parse calls.
type FormatParser struct {
	format string
	locale FormatLocale
}

// NewFormatParser compiles a format string against locale. The format
// string is not validated ahead of time; an unsupported specifier simply
// causes every Parse call to fail.
func NewFormatParser(format string, locale FormatLocale) *FormatParser {
	return &FormatParser{format: format, locale: locale}
}

// Parse matches value against the configured format, returning the parsed
// result and true on success, or false if value does not match.
func (fp *FormatParser) Parse(value string) (ParsedDateTime, bool) {
	var out ParsedDateTime
	vi := 0
	fi := 0
	format := fp.format

	for fi < len(format) {
		fc := format[fi]
		if fc != '%' {
			if vi >= len(value) || value[vi] != fc {
				return ParsedDateTime{}, false
			}
			vi++
			fi++
			continue
		}
		fi++
		if fi >= len(format) {
			return ParsedDateTime{}, false
		}
		spec := format[fi]
		fi++

		switch spec {
		case 'Y':
			n, width, ok := parseDigits(value, vi, 4, 4)
			if !ok {
				return ParsedDateTime{}, false
			}
			out.Year = n
			out.HaveDate = true
			vi += width
		case 'y':
			n, width, ok := parseDigits(value, vi, 2, 2)
			if !ok {
				return ParsedDateTime{}, false
			}
			if n < 69 {
				out.Year = 2000 + n
			} else {
				out.Year = 1900 + n
			}
			out.HaveDate = true
			vi += width
		case 'm':
			n, width, ok := parseDigits(value, vi, 1, 2)
			if !ok || n < 1 || n > 12 {
				return ParsedDateTime{}, false
			}
			out.Month = n
			out.HaveDate = true
			vi += width
		case 'd':
			n, width, ok := parseDigits(value, vi, 1, 2)
			if !ok || n < 1 || n > 31 {
				return ParsedDateTime{}, false
			}
			out.Day = n
			out.HaveDate = true
			vi += width
		case 'e':
			w := vi
			if w < len(value) && isSpaceByte(value[w]) {
				w++
			}
			n, width, ok := parseDigits(value, w, 1, 2)
			if !ok || n < 1 || n > 31 {
				return ParsedDateTime{}, false
			}
			out.Day = n
			out.HaveDate = true
			vi = w + width
		case 'H':
			n, width, ok := parseDigits(value, vi, 1, 2)
			if !ok || n > 23 {
				return ParsedDateTime{}, false
			}
			out.Hour = n
			out.HaveTime = true
			vi += width
		case 'I':
			n, width, ok := parseDigits(value, vi, 1, 2)
			if !ok || n < 1 || n > 12 {
				return ParsedDateTime{}, false
			}
			out.Hour = n
			out.Have12Hour = true
			out.HaveTime = true
			vi += width
		case 'M':
			n, width, ok := parseDigits(value, vi, 1, 2)
			if !ok || n > 59 {
				return ParsedDateTime{}, false
			}
			out.Minute = n
			out.HaveTime = true
			vi += width
		case 'S':
			n, width, ok := parseDigits(value, vi, 1, 2)
			if !ok || n > 60 {
				return ParsedDateTime{}, false
			}
			out.Second = n
			out.HaveTime = true
			vi += width
		case 'O':
			if fi >= len(format) || format[fi] != 'S' {
				return ParsedDateTime{}, false
			}
			fi++
			n, width, ok := parseDigits(value, vi, 1, 2)
			if !ok || n > 60 {
				return ParsedDateTime{}, false
			}
			out.Second = n
			out.HaveTime = true
			vi += width
			if vi < len(value) && value[vi] == '.' {
				j := vi + 1
				start := j
				for j < len(value) && j-start < 6 && isDigitByte(value[j]) {
					j++
				}
				if j > start {
					frac, _, _ := parseDigits(value, start, j-start, j-start)
					for k := j - start; k < 6; k++ {
						frac *= 10
					}
					out.FractionalMicros = frac
					vi = j
				}
			}
		case 'p':
			if matchCI(value, vi, fp.locale.PM) {
				out.PM = true
				vi += len(fp.locale.PM)
			} else if matchCI(value, vi, fp.locale.AM) {
				out.PM = false
				vi += len(fp.locale.AM)
			} else {
				return ParsedDateTime{}, false
			}
			out.Have12Hour = true
		case 'b':
			idx, ok := matchAny(value, vi, fp.locale.MonthsAbbr[:])
			if !ok {
				return ParsedDateTime{}, false
			}
			out.Month = idx + 1
			out.HaveDate = true
			vi += len(fp.locale.MonthsAbbr[idx])
		case 'B':
			idx, ok := matchAny(value, vi, fp.locale.Months[:])
			if !ok {
				return ParsedDateTime{}, false
			}
			out.Month = idx + 1
			out.HaveDate = true
			vi += len(fp.locale.Months[idx])
		case 'a':
			idx, ok := matchAny(value, vi, fp.locale.DaysAbbr[:])
			if !ok {
				return ParsedDateTime{}, false
			}
			vi += len(fp.locale.DaysAbbr[idx])
		case 'A':
			idx, ok := matchAny(value, vi, fp.locale.Days[:])
			if !ok {
				return ParsedDateTime{}, false
			}
			vi += len(fp.locale.Days[idx])
		case 'z':
			w := vi
			if w >= len(value) {
				return ParsedDateTime{}, false
			}
			if value[w] == 'Z' {
				out.HaveTZOffset = true
				out.TZOffsetMinutes = 0
				vi = w + 1
				break
			}
			sign := 1
			switch value[w] {
			case '+':
				sign = 1
			case '-':
				sign = -1
			default:
				return ParsedDateTime{}, false
			}
			w++
			hh, hw, ok := parseDigits(value, w, 2, 2)
			if !ok {
				return ParsedDateTime{}, false
			}
			w += hw
			mm := 0
			if w < len(value) && value[w] == ':' {
				w++
			}
			if m, mw, ok := parseDigits(value, w, 2, 2); ok {
				mm = m
				w += mw
			}
			out.HaveTZOffset = true
			out.TZOffsetMinutes = sign * (hh*60 + mm)
			vi = w
		case 'Z':
			w := vi
			for w < len(value) && isAlphaByte(value[w]) {
				w++
			}
			vi = w
		case '%':
			if vi >= len(value) || value[vi] != '%' {
				return ParsedDateTime{}, false
			}
			vi++
		case 'D', 'F', 'T', 'R':
			w, res, ok := parseComposite(spec, value, vi)
			if !ok {
				return ParsedDateTime{}, false
			}
			if res.HaveDate {
				out.Year, out.Month, out.Day = res.Year, res.Month, res.Day
				out.HaveDate = true
			}
			if res.HaveTime {
				out.Hour, out.Minute, out.Second = res.Hour, res.Minute, res.Second
				out.HaveTime = true
			}
			vi = w
		default:
			return ParsedDateTime{}, false
		}
	}

	if vi != len(value) {
		return ParsedDateTime{}, false
	}
	if out.Month >= 1 && out.Day > daysInMonth(out.Year, out.Month) {
		return ParsedDateTime{}, false
	}
	return out, true
}

// parseComposite handles the %D, %F, %T, %R shorthand specifiers inline,
// each a fixed sequence of numeric fields and literal separators, so they
// can consume a prefix of value without requiring a nested FormatParser to
// swallow the rest of the string.
func parseComposite(spec byte, value string, start int) (next int, out ParsedDateTime, ok bool) {
	v := start
	readNum := func(width int, max int) (int, bool) {
		n, w, ok := parseDigits(value, v, 1, width)
		if !ok || n > max {
			return 0, false
		}
		v += w
		return n, true
	}
	expect := func(c byte) bool {
		if v >= len(value) || value[v] != c {
			return false
		}
		v++
		return true
	}

	switch spec {
	case 'D':
		mo, ok1 := readNum(2, 12)
		if !ok1 || !expect('/') {
			return start, ParsedDateTime{}, false
		}
		day, ok2 := readNum(2, 31)
		if !ok2 || !expect('/') {
			return start, ParsedDateTime{}, false
		}
		yr, ok3 := readNum(2, 99)
		if !ok3 {
			return start, ParsedDateTime{}, false
		}
		year := 1900 + yr
		if yr < 69 {
			year = 2000 + yr
		}
		return v, ParsedDateTime{Year: year, Month: mo, Day: day, HaveDate: true}, true
	case 'F':
		yr, w, ok1 := parseDigits(value, v, 4, 4)
		if !ok1 {
			return start, ParsedDateTime{}, false
		}
		v += w
		if !expect('-') {
			return start, ParsedDateTime{}, false
		}
		mo, ok2 := readNum(2, 12)
		if !ok2 || !expect('-') {
			return start, ParsedDateTime{}, false
		}
		day, ok3 := readNum(2, 31)
		if !ok3 {
			return start, ParsedDateTime{}, false
		}
		return v, ParsedDateTime{Year: yr, Month: mo, Day: day, HaveDate: true}, true
	case 'T':
		hh, ok1 := readNum(2, 23)
		if !ok1 || !expect(':') {
			return start, ParsedDateTime{}, false
		}
		mm, ok2 := readNum(2, 59)
		if !ok2 || !expect(':') {
			return start, ParsedDateTime{}, false
		}
		ss, ok3 := readNum(2, 60)
		if !ok3 {
			return start, ParsedDateTime{}, false
		}
		return v, ParsedDateTime{Hour: hh, Minute: mm, Second: ss, HaveTime: true}, true
	case 'R':
		hh, ok1 := readNum(2, 23)
		if !ok1 || !expect(':') {
			return start, ParsedDateTime{}, false
		}
		mm, ok2 := readNum(2, 59)
		if !ok2 {
			return start, ParsedDateTime{}, false
		}
		return v, ParsedDateTime{Hour: hh, Minute: mm, HaveTime: true}, true
	}
	return start, ParsedDateTime{}, false
}

func parseDigits(s string, start, minWidth, maxWidth int) (value, width int, ok bool) {
	i := start
	for i < len(s) && i-start < maxWidth && isDigitByte(s[i]) {
		value = value*10 + int(s[i]-'0')
		i++
	}
	width = i - start
	if width < minWidth {
		return 0, 0, false
	}
	return value, width, true
}

func isDigitByte(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlphaByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t'
}

func matchCI(s string, at int, lit string) bool {
	if at+len(lit) > len(s) {
		return false
	}
	return strings.EqualFold(s[at:at+len(lit)], lit)
}

func matchAny(s string, at int, candidates []string) (int, bool) {
	for i, c := range candidates {
		if matchCI(s, at, c) {
			return i, true
		}
	}
	return 0, false
}
