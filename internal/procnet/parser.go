package procnet

import (
	"bufio"
	"errors"
	"io"
)

// maxLineSize bounds a single table line. Real rows are ~150 bytes.
const maxLineSize = 64 * 1024

// Parse reads a whole connection table from r and decodes every data row
// for mode.
//
// The first line is the column header and is always skipped. Rows are
// returned in table order. The first unreadable line or undecodable row
// aborts the parse: the result is then nil and the error is an *IOError
// or a *DecodeError.
func Parse(r io.Reader, mode Mode) ([]Entry, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineSize)

	out := []Entry{}
	line := 0
	for sc.Scan() {
		line++
		if line == 1 {
			continue
		}

		e, err := DecodeRow(Tokenize(sc.Text()), mode)
		if err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				de.Line = line
			}
			return nil, err
		}
		out = append(out, e)
	}

	if err := sc.Err(); err != nil {
		return nil, &IOError{Err: err}
	}

	return out, nil
}
