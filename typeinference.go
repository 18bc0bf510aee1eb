package simdcsv

import "strconv"

// TypeInference samples a bounded row prefix of a byte range (typically the
// body following a header) and widens a per-column DataType across the
// sample. It is independent of LineParser/FieldScanner: the bounded sample
// is small enough that a simple scalar split (no SIMD block scanning) is
// sufficient, mirroring the original implementation's own hand-rolled
// per-character loop.
type TypeInference struct {
	opts        CsvOptions
	nullValues  []string
	trueValues  []string
	falseValues []string
}

// NewTypeInference precomputes the literal lists from opts.
func NewTypeInference(opts CsvOptions) *TypeInference {
	return &TypeInference{
		opts:        opts,
		nullValues:  splitCSVList(opts.NullValues),
		trueValues:  splitCSVList(opts.TrueValues),
		falseValues: splitCSVList(opts.FalseValues),
	}
}

// InferSample samples up to maxRows rows from data, skipping blank and
// comment lines, and returns the widened DataType for each of nColumns
// columns. Any column that never saw a value falls through to STRING.
func (ti *TypeInference) InferSample(data []byte, nColumns, maxRows int) []DataType {
	types := make([]DataType, nColumns)
	if nColumns == 0 {
		return types
	}
	offset := 0
	sampled := 0
	for offset < len(data) && sampled < maxRows {
		rowEnd := SkipToNextLine(data, offset)
		if rowEnd == offset {
			offset++
			continue
		}
		row := data[offset:rowEnd]
		if isBlankRow(row) {
			offset = rowEnd
			continue
		}
		if StartsWithComment(data[offset:], ti.opts.Comment) {
			offset = rowEnd
			continue
		}
		fields, next := ti.scanSampleRow(data, offset)
		for col := 0; col < nColumns && col < len(fields); col++ {
			types[col] = Widen(types[col], ti.classifyField(fields[col]))
		}
		offset = next
		sampled++
	}
	for i, t := range types {
		if t == Unknown {
			types[i] = String
		}
	}
	return types
}

// classifyField implements the per-field classifier of spec.md §4.4.
func (ti *TypeInference) classifyField(value []byte) DataType {
	if len(value) == 0 {
		return NA
	}
	if matchesAny(value, ti.nullValues) {
		return NA
	}
	if matchesAny(value, ti.trueValues) || matchesAny(value, ti.falseValues) {
		return Bool
	}
	if dt, ok := classifyNumeric(value, ti.opts.GuessInteger, ti.opts.decimalMark()); ok {
		return dt
	}
	if isDateShape(value) {
		return Date
	}
	if isTimestampShape(value) {
		return Timestamp
	}
	return String
}

func classifyNumeric(value []byte, guessInteger bool, decimalMark byte) (DataType, bool) {
	if isIntegerShape(value) {
		if !guessInteger {
			return Float64, true
		}
		digits := value
		neg := false
		if digits[0] == '+' || digits[0] == '-' {
			neg = digits[0] == '-'
			digits = digits[1:]
		}
		if len(digits) <= 10 {
			var v int64
			overflow := false
			for _, c := range digits {
				v = v*10 + int64(c-'0')
				if v > 2147483648 {
					overflow = true
					break
				}
			}
			if !overflow && (v <= 2147483647 || (neg && v == 2147483648)) {
				return Int32, true
			}
		}
		return Int64, true
	}
	if _, ok := parseFloatWithMark(value, decimalMark); ok {
		return Float64, true
	}
	return Unknown, false
}

func isIntegerShape(value []byte) bool {
	i := 0
	if value[0] == '+' || value[0] == '-' {
		i = 1
	}
	if i >= len(value) {
		return false
	}
	for ; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}

func parseFloatWithMark(value []byte, decimalMark byte) (float64, bool) {
	v := value
	if len(v) > 0 && v[0] == '+' {
		v = v[1:]
	}
	if decimalMark != '.' {
		buf := make([]byte, len(v))
		copy(buf, v)
		for i, c := range buf {
			if c == decimalMark {
				buf[i] = '.'
			}
		}
		v = buf
	}
	f, err := strconv.ParseFloat(string(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func isDateShape(v []byte) bool {
	if len(v) != 10 {
		return false
	}
	if !isDigits(v[0:4]) || !isDigits(v[5:7]) || !isDigits(v[8:10]) {
		return false
	}
	sep := v[4]
	if sep != '-' && sep != '/' {
		return false
	}
	return v[7] == sep
}

func isTimestampShape(v []byte) bool {
	if len(v) < 19 {
		return false
	}
	if !isDigits(v[0:4]) || !isDigits(v[5:7]) || !isDigits(v[8:10]) {
		return false
	}
	sep := v[4]
	if (sep != '-' && sep != '/') || v[7] != sep {
		return false
	}
	if v[10] != 'T' && v[10] != ' ' {
		return false
	}
	if v[13] != ':' || v[16] != ':' {
		return false
	}
	for _, idx := range [6]int{11, 12, 14, 15, 17, 18} {
		if v[idx] < '0' || v[idx] > '9' {
			return false
		}
	}
	return true
}

func isDigits(b []byte) bool {
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// scanSampleRow splits exactly one row of data starting at offset using a
// simple scalar loop: the bounded sample is too small to benefit from
// 64-byte block scanning.
func (ti *TypeInference) scanSampleRow(data []byte, offset int) (fields [][]byte, next int) {
	opts := ti.opts
	quote := opts.Quote
	sepByte, singleSep := opts.separatorByte()
	sep := opts.Separator

	matchesSep := func(i int) bool {
		if sep == "" {
			return false
		}
		if singleSep {
			return data[i] == sepByte
		}
		return i+len(sep) <= len(data) && string(data[i:i+len(sep)]) == sep
	}

	inQuote := false
	var current []byte
	i := offset
	for ; i < len(data); i++ {
		c := data[i]
		if !inQuote && (c == '\n' || c == '\r') {
			fields = append(fields, trimIfConfigured(current, opts.TrimWS))
			i++
			if c == '\r' && i < len(data) && data[i] == '\n' {
				i++
			}
			return fields, i
		}
		if opts.EscapeBackslash && c == '\\' && i+1 < len(data) {
			current = appendEscaped(current, data[i+1], quote)
			i++
			continue
		}
		if quote != 0 && c == quote {
			if !opts.EscapeBackslash && inQuote && i+1 < len(data) && data[i+1] == quote {
				current = append(current, quote)
				i++
				continue
			}
			inQuote = !inQuote
			continue
		}
		if !inQuote && matchesSep(i) {
			fields = append(fields, trimIfConfigured(current, opts.TrimWS))
			current = nil
			if !singleSep {
				i += len(sep) - 1
			}
			continue
		}
		if opts.TrimWS && len(current) == 0 && !inQuote && (c == ' ' || c == '\t') {
			continue
		}
		current = append(current, c)
	}
	if len(current) > 0 || len(fields) == 0 {
		fields = append(fields, trimIfConfigured(current, opts.TrimWS))
	}
	return fields, i
}

func appendEscaped(current []byte, next, quote byte) []byte {
	switch next {
	case '\\':
		return append(current, '\\')
	case 'n':
		return append(current, '\n')
	case 't':
		return append(current, '\t')
	case 'r':
		return append(current, '\r')
	default:
		if next == quote {
			return append(current, quote)
		}
		return append(current, next)
	}
}

func trimIfConfigured(b []byte, trim bool) []byte {
	if !trim {
		return b
	}
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}
	return b
}

func isBlankRow(b []byte) bool {
	for _, c := range b {
		if c != '\n' && c != '\r' && c != ' ' && c != '\t' {
			return false
		}
	}
	return true
}
