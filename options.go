package simdcsv

// CsvOptions captures all parser configuration used by FieldScanner,
// LineParser, and TypeInference. It is a plain value, not a free-form map:
// every recognized option is a named, typed field.
type CsvOptions struct {
	// Separator is the field delimiter. A single-byte value takes the
	// SIMD-accelerated FieldScanner path; longer values fall back to a
	// scalar multi-byte scan.
	Separator string
	// Quote is the quote byte; 0 disables quoting entirely.
	Quote byte
	// EOL is the row terminator byte, canonically '\n'. A preceding '\r'
	// is trimmed from the last field of a row rather than treated as a
	// second terminator.
	EOL byte
	// EscapeBackslash selects backslash-escape mode (true) over
	// doubled-quote mode (false) for unescaping quoted field content.
	EscapeBackslash bool
	// NullValues is a comma-separated list of literals that map to NULL.
	// An empty element (e.g. a leading/trailing/doubled comma) enables
	// empty-string-is-null.
	NullValues string
	// TrueValues and FalseValues are comma-separated literals that
	// classify a field as BOOL during type inference.
	TrueValues  string
	FalseValues string
	// Comment is a row-prefix string; matching rows are skipped during
	// type-inference sampling.
	Comment string
	// TrimWS trims ASCII space and tab around each field.
	TrimWS bool
	// GuessInteger, when false, classifies integer-shaped values as
	// FLOAT64 instead of INT32/INT64 during type inference.
	GuessInteger bool
	// DecimalMark is the decimal point character used when parsing
	// floats; zero means '.'.
	DecimalMark byte
}

// DefaultCsvOptions returns the permissive, comma-separated default
// configuration: RFC 4180-ish but not strict (see spec.md §1 Non-goals).
func DefaultCsvOptions() CsvOptions {
	return CsvOptions{
		Separator:    ",",
		Quote:        '"',
		EOL:          '\n',
		GuessInteger: true,
		DecimalMark:  '.',
	}
}

// decimalMark returns the effective decimal mark, defaulting to '.'.
func (o CsvOptions) decimalMark() byte {
	if o.DecimalMark == 0 {
		return '.'
	}
	return o.DecimalMark
}

// separatorByte returns the single separator byte and true when Separator
// is exactly one byte long (the FieldScanner hot path); otherwise false.
func (o CsvOptions) separatorByte() (byte, bool) {
	if len(o.Separator) == 1 {
		return o.Separator[0], true
	}
	return 0, false
}

// splitCSVList splits a comma-separated option string into its literal
// elements. An empty string yields no elements (as opposed to one empty
// element), so NullValues=="" correctly means "no null literals configured"
// rather than "empty string is null".
func splitCSVList(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, 4)
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return out
}

func matchesAny(value []byte, literals []string) bool {
	for _, lit := range literals {
		if string(value) == lit {
			return true
		}
	}
	return false
}
