package protocol

import (
	"bytes"
)

// MaxLineLen bounds a buffered inbound line. Longer lines are dropped.
const MaxLineLen = 1024

// Framer splits a byte stream into lines. Partial lines are kept across
// Feed calls. A line that grows past the limit is discarded up to its
// terminating newline.
type Framer struct {
	max        int
	buf        []byte
	discarding bool
	overflows  int
}

// NewFramer returns a framer with the given line limit. A non-positive
// limit selects MaxLineLen.
func NewFramer(max int) *Framer {
	if max <= 0 {
		max = MaxLineLen
	}
	return &Framer{max: max, buf: make([]byte, 0, max)}
}

// Feed consumes p and returns the complete lines it finished, without
// their terminators. Empty lines are skipped.
func (f *Framer) Feed(p []byte) []string {
	var lines []string
	for len(p) > 0 {
		nl := bytes.IndexByte(p, '\n')
		chunk := p
		if nl >= 0 {
			chunk = p[:nl]
			p = p[nl+1:]
		} else {
			p = nil
		}

		if !f.discarding {
			if len(f.buf)+len(chunk) > f.max {
				f.buf = f.buf[:0]
				f.discarding = true
				f.overflows++
			} else {
				f.buf = append(f.buf, chunk...)
			}
		}

		if nl < 0 {
			break
		}
		if !f.discarding {
			line := bytes.TrimRight(f.buf, "\r")
			if len(bytes.TrimSpace(line)) > 0 {
				lines = append(lines, string(line))
			}
		}
		f.buf = f.buf[:0]
		f.discarding = false
	}
	return lines
}

// Pending returns the number of buffered bytes of an unfinished line.
func (f *Framer) Pending() int {
	return len(f.buf)
}

// Overflows returns how many lines were dropped for exceeding the limit.
func (f *Framer) Overflows() int {
	return f.overflows
}
