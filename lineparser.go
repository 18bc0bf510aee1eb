package simdcsv

import "bytes"

// ColumnBuilder is the capability interface the core relies on to hand off
// parsed values: append a real value, or append a NULL. Typed builders
// (int32, float64, timestamp, ...) decide how to coerce or reject a value;
// the core does not care how that's implemented (spec.md §9).
type ColumnBuilder interface {
	Append(value []byte)
	AppendNull()
}

// RowWarning reports a non-fatal condition observed while parsing a row.
// The core never hard-fails on malformed quoting; it emits a warning and
// still produces the partial field (spec.md §7).
type RowWarning struct {
	Row     int
	Message string
}

// LineParser drives a FieldScanner across one logical row at a time,
// handling quote unescaping, whitespace trimming, null-literal detection,
// and NULL-padding/truncation of short/long rows.
type LineParser struct {
	opts          CsvOptions
	nullSet       map[string]struct{}
	emptyIsNull   bool
	maxNullLength int
}

// NewLineParser precomputes the null-value set from opts.NullValues once,
// rather than re-splitting the option string on every field.
func NewLineParser(opts CsvOptions) *LineParser {
	lp := &LineParser{opts: opts, nullSet: make(map[string]struct{})}
	for _, v := range splitCSVList(opts.NullValues) {
		if v == "" {
			lp.emptyIsNull = true
			continue
		}
		lp.nullSet[v] = struct{}{}
		if len(v) > lp.maxNullLength {
			lp.maxNullLength = len(v)
		}
	}
	return lp
}

func (lp *LineParser) isNull(value []byte) bool {
	if len(value) == 0 {
		return lp.emptyIsNull
	}
	if len(value) > lp.maxNullLength {
		return false
	}
	_, ok := lp.nullSet[string(value)]
	return ok
}

// ParseHeader parses the first logical row of data as field names,
// returning the names and the number of bytes consumed (including the
// terminating EOL, if any), so the caller can slice the remainder as the
// body.
func (lp *LineParser) ParseHeader(data []byte) (fields []string, consumed int) {
	fields, consumed, _ = lp.ParseRow(data)
	return fields, consumed
}

// ParseRow parses one logical row of data into a plain string slice,
// without routing through ColumnBuilders. It is the entry point used by a
// record-oriented reader that does not know column types ahead of time.
func (lp *LineParser) ParseRow(data []byte) (fields []string, consumed int, warning *RowWarning) {
	fs := NewFieldScanner(data, lp.opts)
	for {
		start, length, needsUnescape, ok := fs.Next()
		if !ok {
			consumed = len(data)
			break
		}
		end := start + length
		rowEnding := end >= len(data) || data[end] == lp.eol()
		raw := data[start:end]
		if rowEnding {
			raw = stripTrailingCR(raw)
		}
		if lp.opts.TrimWS && !needsUnescape {
			// A quoted field may follow leading whitespace.
			if t := trimWS(raw); len(t) > 0 && lp.opts.Quote != 0 && t[0] == lp.opts.Quote {
				raw, needsUnescape = t, true
			}
		}
		value := lp.unescape(raw, needsUnescape)
		if lp.opts.TrimWS {
			value = trimWS(value)
		}
		fields = append(fields, string(value))
		if rowEnding {
			consumed = end
			if end < len(data) {
				consumed++
			}
			break
		}
	}
	if fs.FinishedInsideQuote() {
		warning = &RowWarning{Message: "row ended inside an open quoted field"}
	}
	return fields, consumed, warning
}

// ParseLine parses one row of data, appending each field to the matching
// column builder (NULL-padding short rows, discarding trailing fields of
// long rows), and returns the number of bytes consumed for this row. A
// non-nil warning is returned when the row ended inside an unterminated
// quoted field.
func (lp *LineParser) ParseLine(data []byte, columns []ColumnBuilder) (consumed int, warning *RowWarning) {
	fs := NewFieldScanner(data, lp.opts)
	col := 0
	for {
		start, length, needsUnescape, ok := fs.Next()
		if !ok {
			consumed = len(data)
			break
		}
		end := start + length
		rowEnding := end >= len(data) || data[end] == lp.eol()
		raw := data[start:end]
		if rowEnding {
			raw = stripTrailingCR(raw)
		}
		value := lp.unescape(raw, needsUnescape)
		if lp.opts.TrimWS {
			value = trimWS(value)
		}
		if col < len(columns) {
			if lp.isNull(value) {
				columns[col].AppendNull()
			} else {
				columns[col].Append(value)
			}
		}
		col++
		if rowEnding {
			consumed = end
			if end < len(data) {
				consumed++
			}
			break
		}
	}
	for col < len(columns) {
		columns[col].AppendNull()
		col++
	}
	if fs.FinishedInsideQuote() {
		warning = &RowWarning{Message: "row ended inside an open quoted field"}
	}
	return consumed, warning
}

func (lp *LineParser) eol() byte {
	if lp.opts.EOL == 0 {
		return '\n'
	}
	return lp.opts.EOL
}

// unescape strips the surrounding quotes (when present) and applies the
// configured unescape policy. raw includes the opening and closing quote
// bytes when needsUnescape is true.
func (lp *LineParser) unescape(raw []byte, needsUnescape bool) []byte {
	if !needsUnescape {
		return raw
	}
	quote := lp.opts.Quote
	content := raw
	if len(content) > 0 && content[0] == quote {
		content = content[1:]
		if len(content) > 0 && content[len(content)-1] == quote {
			content = content[:len(content)-1]
		}
	}
	if lp.opts.EscapeBackslash {
		return unescapeBackslash(content, quote)
	}
	return unescapeDoubledQuote(content, quote)
}

func unescapeDoubledQuote(content []byte, quote byte) []byte {
	if bytes.IndexByte(content, quote) < 0 {
		return content
	}
	out := make([]byte, 0, len(content))
	for i := 0; i < len(content); i++ {
		if content[i] == quote && i+1 < len(content) && content[i+1] == quote {
			out = append(out, quote)
			i++
			continue
		}
		out = append(out, content[i])
	}
	return out
}

func unescapeBackslash(content []byte, quote byte) []byte {
	if bytes.IndexByte(content, '\\') < 0 {
		return content
	}
	out := make([]byte, 0, len(content))
	for i := 0; i < len(content); i++ {
		c := content[i]
		if c == '\\' && i+1 < len(content) {
			n := content[i+1]
			switch n {
			case '\\':
				out = append(out, '\\')
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			default:
				if n == quote {
					out = append(out, quote)
				} else {
					out = append(out, n)
				}
			}
			i++
			continue
		}
		out = append(out, c)
	}
	return out
}

func trimWS(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t') {
		b = b[1:]
	}
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}
	return b
}

func stripTrailingCR(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\r' {
		return b[:len(b)-1]
	}
	return b
}
