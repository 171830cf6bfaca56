package staticfs

import (
	"strconv"
	"strings"
)

// ByteRange is a parsed Range request header. Only two forms are
// accepted: "unit=start-end" and the open-ended "unit=start-". The unit
// is captured verbatim and echoed back in response headers, not
// validated against a fixed set.
type ByteRange struct {
	Unit  string
	Start int64
	End   int64 // inclusive; -1 when open-ended
}

// Bounded reports whether the range has an explicit end.
func (r ByteRange) Bounded() bool {
	return r.End >= 0
}

// Len returns the derived length end-start+1. ok is false for an
// open-ended range, whose length depends on the resource.
func (r ByteRange) Len() (n int64, ok bool) {
	if r.End < 0 {
		return 0, false
	}
	return r.End - r.Start + 1, true
}

// ParseRange parses a Range header value.
//
// A value containing a comma requests multiple ranges and yields
// [ErrMultipartRange]; any other syntax failure yields [ErrInvalidRange].
// Either way the caller serves the full resource with status 200 rather
// than failing the request.
func ParseRange(s string) (ByteRange, error) {
	if strings.Contains(s, ",") {
		return ByteRange{}, ErrMultipartRange
	}

	unit, spec, ok := strings.Cut(s, "=")
	if !ok {
		return ByteRange{}, ErrInvalidRange
	}
	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok {
		return ByteRange{}, ErrInvalidRange
	}

	start, err := strconv.ParseUint(startStr, 10, 63)
	if err != nil {
		return ByteRange{}, ErrInvalidRange
	}

	r := ByteRange{Unit: unit, Start: int64(start), End: -1}
	if endStr == "" {
		return r, nil
	}

	end, err := strconv.ParseUint(endStr, 10, 63)
	if err != nil || int64(end) < r.Start {
		return ByteRange{}, ErrInvalidRange
	}
	r.End = int64(end)
	return r, nil
}
