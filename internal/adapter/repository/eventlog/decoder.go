package eventlog

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

var (
	errBareQuote       = errors.New(`bare " in non-quoted field`)
	errExtraneousQuote = errors.New(`extraneous " in quoted field`)
	errUnterminated    = errors.New("unterminated quoted field")
)

// recordDecoder reads the CSV dialect produced by encoding/csv.Writer with
// UseCRLF unset. Bytes inside quoted fields are returned exactly as stored,
// including carriage returns, which csv.Reader would drop.
type recordDecoder struct {
	br     *bufio.Reader
	buf    bytes.Buffer
	record int
}

func newRecordDecoder(rd io.Reader) *recordDecoder {
	return &recordDecoder{br: bufio.NewReader(rd)}
}

// read returns the next record, or io.EOF at a record boundary.
func (d *recordDecoder) read() ([]string, error) {
	// Blank lines are skipped.
	for {
		b, err := d.br.Peek(1)
		if err != nil {
			return nil, err
		}
		if b[0] != '\n' {
			break
		}
		d.br.Discard(1)
	}

	d.record++
	var fields []string
	for {
		field, term, err := d.readField()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", d.record, err)
		}
		fields = append(fields, field)
		if term != ',' {
			return fields, nil
		}
	}
}

// readField returns one field and the byte that ended it: ',' or '\n',
// or 0 at end of input.
func (d *recordDecoder) readField() (string, byte, error) {
	d.buf.Reset()

	b, err := d.br.ReadByte()
	if errors.Is(err, io.EOF) {
		return "", 0, nil
	}
	if err != nil {
		return "", 0, err
	}
	if b == '"' {
		return d.readQuoted()
	}

	for {
		switch b {
		case ',', '\n':
			return string(bytes.TrimSuffix(d.buf.Bytes(), []byte{'\r'})), b, nil
		case '"':
			return "", 0, errBareQuote
		}
		d.buf.WriteByte(b)

		b, err = d.br.ReadByte()
		if errors.Is(err, io.EOF) {
			return string(bytes.TrimSuffix(d.buf.Bytes(), []byte{'\r'})), 0, nil
		}
		if err != nil {
			return "", 0, err
		}
	}
}

func (d *recordDecoder) readQuoted() (string, byte, error) {
	for {
		b, err := d.br.ReadByte()
		if errors.Is(err, io.EOF) {
			return "", 0, errUnterminated
		}
		if err != nil {
			return "", 0, err
		}
		if b != '"' {
			d.buf.WriteByte(b)
			continue
		}

		next, err := d.br.ReadByte()
		if errors.Is(err, io.EOF) {
			return d.buf.String(), 0, nil
		}
		if err != nil {
			return "", 0, err
		}
		switch next {
		case '"':
			d.buf.WriteByte('"')
		case ',', '\n':
			return d.buf.String(), next, nil
		case '\r':
			if after, err := d.br.ReadByte(); err == nil && after == '\n' {
				return d.buf.String(), '\n', nil
			}
			return "", 0, errExtraneousQuote
		default:
			return "", 0, errExtraneousQuote
		}
	}
}
