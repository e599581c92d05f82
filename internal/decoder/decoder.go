// Package decoder turns the tab-separated dataset files into typed rows.
//
// Every dataset kind has a fixed column layout. The literal \N marks a null.
// A row that breaks the layout is dropped and counted, never returned as an
// error: one corrupt line must not stop the remaining millions.
package decoder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/custodia-labs/cinedex/internal/core/domain"
)

const (
	// nullSentinel marks an absent value.
	nullSentinel = `\N`

	// maxLineSize bounds a single row; akas rows with long attribute lists stay well below.
	maxLineSize = 4 << 20

	// maxSampleLines is the number of malformed line numbers kept for diagnostics.
	maxSampleLines = 8
)

// errMalformed is returned by row parsers for rows that must be dropped.
var errMalformed = errors.New("malformed row")

// parseFunc converts one split line into a row.
type parseFunc[T any] func(f *fields) (T, error)

// Decoder lazily decodes one dataset stream. It consumes its reader once.
type Decoder[T any] struct {
	kind    domain.DatasetKind
	columns []string
	r       io.Reader
	parse   parseFunc[T]

	stats    domain.DecodeStats
	err      error
	consumed bool
}

func newDecoder[T any](kind domain.DatasetKind, r io.Reader, parse parseFunc[T]) *Decoder[T] {
	return &Decoder[T]{
		kind:    kind,
		columns: kind.Columns(),
		r:       r,
		parse:   parse,
		stats:   domain.DecodeStats{Kind: kind},
	}
}

// Kind returns the dataset kind being decoded.
func (d *Decoder[T]) Kind() domain.DatasetKind {
	return d.kind
}

// Rows returns the decoded rows. The sequence can be ranged over once;
// later calls yield nothing.
func (d *Decoder[T]) Rows() iter.Seq[T] {
	return func(yield func(T) bool) {
		if d.consumed {
			return
		}
		d.consumed = true

		scanner := bufio.NewScanner(d.r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		lineNum := 0
		seenContent := false

		for scanner.Scan() {
			lineNum++
			line := strings.TrimSuffix(scanner.Text(), "\r")
			if line == "" {
				continue
			}

			values := strings.Split(line, "\t")
			if !seenContent {
				seenContent = true
				values[0] = strings.TrimPrefix(values[0], "\ufeff")
				if values[0] == d.columns[0] {
					continue
				}
			}

			if len(values) != len(d.columns) {
				d.malformed(lineNum)
				continue
			}

			f := fields{values: values}
			row, err := d.parse(&f)
			if err != nil {
				d.malformed(lineNum)
				continue
			}
			if f.degraded {
				d.stats.Degraded++
			}
			d.stats.Rows++

			if !yield(row) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			d.err = fmt.Errorf("read %s near line %d: %w", d.kind.FileName(), lineNum+1, err)
		}
	}
}

// Err returns the I/O error that ended decoding early, if any.
// Malformed rows are never reported here.
func (d *Decoder[T]) Err() error {
	return d.err
}

// Stats returns the decode counters so far.
func (d *Decoder[T]) Stats() domain.DecodeStats {
	stats := d.stats
	stats.SampleLines = append([]int(nil), d.stats.SampleLines...)
	return stats
}

func (d *Decoder[T]) malformed(lineNum int) {
	d.stats.Malformed++
	if len(d.stats.SampleLines) < maxSampleLines {
		d.stats.SampleLines = append(d.stats.SampleLines, lineNum)
	}
}
