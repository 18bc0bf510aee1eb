package simdcsv

import "math/bits"

// blockSize is the SIMD unit of work: a 64-byte window over the input.
const blockSize = 64

// FieldCache is the FieldScanner's per-64-byte-block carry: the bitmask of
// end-of-field positions remaining in the block already examined. Bits at
// or before the current cursor are always zero.
type FieldCache struct {
	previousValidEnds uint64
}

// FieldScanner is a stateful iterator over a byte slice that yields
// (field_start, field_len, needs_unescape) tuples. It calls BitmaskKernels
// per 64-byte block and caches unconsumed boundary bits in a FieldCache to
// amortize scan cost across Next calls.
type FieldScanner struct {
	data     []byte
	consumed int

	separator byte
	multiSep  []byte // non-nil selects the scalar multi-byte path
	quote     byte   // 0 disables quoting
	eol       byte
	escapeBackslash bool

	finished            bool
	finishedInsideQuote bool

	cache FieldCache
}

// NewFieldScanner constructs a scanner over data using the delimiter
// configuration in opts. The caller must keep data alive for the lifetime
// of the scanner.
func NewFieldScanner(data []byte, opts CsvOptions) *FieldScanner {
	fs := &FieldScanner{
		data:            data,
		quote:           opts.Quote,
		eol:             opts.EOL,
		escapeBackslash: opts.EscapeBackslash,
	}
	if b, ok := opts.separatorByte(); ok {
		fs.separator = b
	} else if opts.Separator != "" {
		fs.multiSep = []byte(opts.Separator)
	} else {
		fs.separator = ','
	}
	if fs.eol == 0 {
		fs.eol = '\n'
	}
	return fs
}

// FinishedInsideQuote reports whether input ended while a quoted field was
// still open. Only meaningful after Next has returned ok == false.
func (fs *FieldScanner) FinishedInsideQuote() bool {
	return fs.finishedInsideQuote
}

// Consumed returns the number of bytes of data consumed so far.
func (fs *FieldScanner) Consumed() int {
	return fs.consumed
}

// Next returns the next field's (start, length, needsUnescape) relative to
// the scanner's data, and ok == false once the input is exhausted. It never
// fails: a quoted field left open at end of input is reported via
// FinishedInsideQuote, not as an error.
func (fs *FieldScanner) Next() (start, length int, needsUnescape bool, ok bool) {
	if fs.finished {
		return 0, 0, false, false
	}
	if fs.consumed > 0 && fs.consumed == len(fs.data) && fs.data[fs.consumed-1] != fs.eol {
		// Input ends right after a separator: emit the empty last field.
		fs.finished = true
		return fs.consumed, 0, false, true
	}
	if fs.multiSep != nil {
		return fs.nextMultiByte()
	}

	rem := fs.data[fs.consumed:]
	if len(rem) == 0 {
		fs.finished = true
		return 0, 0, false, false
	}

	if fs.cache.previousValidEnds != 0 {
		p := bits.TrailingZeros64(fs.cache.previousValidEnds)
		if p == 63 {
			fs.cache.previousValidEnds = 0
		} else {
			fs.cache.previousValidEnds >>= uint(p + 1)
		}
		needsUnescape = fs.quote != 0 && len(rem) > 0 && rem[0] == fs.quote
		return fs.settle(p, needsUnescape)
	}

	needsUnescape = fs.quote != 0 && rem[0] == fs.quote
	skip := 0
	if needsUnescape {
		skip = 1 // the opening quote is consumed here; the scan starts inside it
	}
	pos := skip + fs.scanField(rem[skip:], needsUnescape)
	if pos >= len(rem) {
		return fs.finishTail(needsUnescape)
	}
	return fs.settle(pos, needsUnescape)
}

// settle emits the field ending at relative position pos (the separator or
// EOL byte itself is skipped, not included) and advances the cursor.
func (fs *FieldScanner) settle(pos int, needsUnescape bool) (int, int, bool, bool) {
	start := fs.consumed
	fs.consumed += pos + 1
	return start, pos, needsUnescape, true
}

// finishTail is reached when a field scan runs off the end of the buffer
// without finding a terminating separator or EOL: the last field of the
// input, with no trailing delimiter.
func (fs *FieldScanner) finishTail(needsUnescape bool) (int, int, bool, bool) {
	start := fs.consumed
	rem := fs.data[fs.consumed:]
	length := len(rem)
	if needsUnescape && !(length >= 2 && rem[0] == fs.quote && rem[length-1] == fs.quote) {
		fs.finishedInsideQuote = true
	}
	fs.consumed += length
	fs.finished = true
	return start, length, needsUnescape, true
}

// scanField returns the relative position of the separator/EOL byte ending
// the field, or len(rem) if none is found before EOF. startInsideQuote is
// true when the opening quote of the current field has already been
// observed (the field itself started with a quote); it is false for an
// unquoted field, but the block scan still tracks quote state from that
// point on, because a later field's opening quote within the same 64-byte
// window must still shield its own separators from ending the current,
// earlier field.
func (fs *FieldScanner) scanField(rem []byte, startInsideQuote bool) int {
	total := 0
	insideQuote := startInsideQuote
	var prevEsc uint64

	for len(rem)-total > blockSize {
		block := rem[total : total+blockSize]

		sepMask := scanEq(block, fs.separator)
		eolMask := scanEq(block, fs.eol)

		var escaped uint64
		if fs.escapeBackslash {
			bsMask := scanEq(block, '\\')
			var carryOut uint64
			escaped, _, carryOut = computeEscapeMasks(bsMask, prevEsc)
			prevEsc = carryOut
		}

		endMask := (sepMask | eolMask) &^ escaped

		if fs.quote != 0 {
			quoteMask := scanEq(block, fs.quote)
			quoteMask &^= escaped

			insideMask := prefixXORInclusive(quoteMask)
			if insideQuote {
				insideMask = ^insideMask
			}
			insideQuote = insideMask&(1<<63) != 0
			endMask &^= insideMask
		}

		if endMask != 0 {
			pos := bits.TrailingZeros64(endMask)
			total += pos
			fs.cacheRemaining(endMask, pos)
			return total
		}
		total += blockSize
	}

	return total + fs.scanTail(rem[total:], insideQuote, prevEsc)
}

func (fs *FieldScanner) scanTail(tail []byte, insideQuote bool, prevEsc uint64) int {
	i := 0
	if fs.escapeBackslash && prevEsc != 0 && len(tail) > 0 {
		i = 1
	}
	for ; i < len(tail); i++ {
		c := tail[i]
		if fs.escapeBackslash && c == '\\' && i+1 < len(tail) {
			i++
			continue
		}
		if fs.quote != 0 && c == fs.quote {
			if !fs.escapeBackslash && insideQuote && i+1 < len(tail) && tail[i+1] == fs.quote {
				i++
				continue
			}
			insideQuote = !insideQuote
			continue
		}
		if !insideQuote && (c == fs.separator || c == fs.eol) {
			return i
		}
	}
	return len(tail)
}

// cacheRemaining stashes the boundary bits still set above pos for the
// next Next() call, per the §9 shift semantics: a shift of 64 (pos==63)
// must yield 0, not an implementation-defined value.
func (fs *FieldScanner) cacheRemaining(endMask uint64, pos int) {
	if pos == 63 {
		fs.cache.previousValidEnds = 0
	} else {
		fs.cache.previousValidEnds = endMask >> uint(pos+1)
	}
}

// nextMultiByte is the scalar scan path used when Separator is more than
// one byte: a straightforward loop honoring quote toggling and
// doubled-quote escaping, without SIMD block scanning.
func (fs *FieldScanner) nextMultiByte() (int, int, bool, bool) {
	rem := fs.data[fs.consumed:]
	if len(rem) == 0 {
		fs.finished = true
		return 0, 0, false, false
	}
	needsUnescape := fs.quote != 0 && rem[0] == fs.quote
	inQuote := false
	sepLen := len(fs.multiSep)

	i := 0
	for i < len(rem) {
		c := rem[i]
		if fs.quote != 0 && c == fs.quote {
			if !fs.escapeBackslash && inQuote && i+1 < len(rem) && rem[i+1] == fs.quote {
				i += 2
				continue
			}
			inQuote = !inQuote
			i++
			continue
		}
		if fs.escapeBackslash && c == '\\' && i+1 < len(rem) {
			i += 2
			continue
		}
		if !inQuote {
			if c == fs.eol {
				return fs.settle(i, needsUnescape)
			}
			if i+sepLen <= len(rem) && bytesEqual(rem[i:i+sepLen], fs.multiSep) {
				start := fs.consumed
				fs.consumed += i + sepLen
				return start, i, needsUnescape, true
			}
		}
		i++
	}
	return fs.finishTail(needsUnescape)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
