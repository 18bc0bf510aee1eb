package simdcsv

// ParseBytes parses a byte slice directly (zero-copy input; allocates only
// the returned strings and slices), using the default comma-separated,
// double-quoted dialect with comma as delimiter.
func ParseBytes(data []byte, comma rune) ([][]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	opts := DefaultCsvOptions()
	opts.Separator = string(comma)
	lp := NewLineParser(opts)

	var records [][]string
	offset := 0
	for offset < len(data) {
		fields, consumed, _ := lp.ParseRow(data[offset:])
		if consumed == 0 {
			break
		}
		records = append(records, fields)
		offset += consumed
	}
	return records, nil
}

// ParseBytesStreaming parses data using a streaming callback function. The
// callback is invoked for each record parsed from the input. If the
// callback returns an error, parsing stops and that error is returned.
func ParseBytesStreaming(data []byte, comma rune, callback func([]string) error) error {
	if len(data) == 0 {
		return nil
	}
	opts := DefaultCsvOptions()
	opts.Separator = string(comma)
	lp := NewLineParser(opts)

	offset := 0
	for offset < len(data) {
		fields, consumed, _ := lp.ParseRow(data[offset:])
		if consumed == 0 {
			break
		}
		if err := callback(fields); err != nil {
			return err
		}
		offset += consumed
	}
	return nil
}
