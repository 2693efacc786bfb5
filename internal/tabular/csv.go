package tabular

import (
	"bufio"
	"encoding/csv"
	"io"
)

const (
	// exported rows between flushes, so a slow client sees the download
	// progress instead of one burst at the end
	csvFlushRows  = 200
	csvBufferSize = 32 * 1024
)

// csvRows writes CRLF-terminated records the way spreadsheet tools expect.
type csvRows struct {
	out     *bufio.Writer
	w       *csv.Writer
	pending int
}

func newCSVRows(dst io.Writer) *csvRows {
	out := bufio.NewWriterSize(dst, csvBufferSize)
	w := csv.NewWriter(out)
	w.UseCRLF = true
	return &csvRows{out: out, w: w}
}

func (r *csvRows) write(record []string) error {
	if err := r.w.Write(record); err != nil {
		return err
	}
	r.pending++
	if r.pending < csvFlushRows {
		return nil
	}
	return r.flush()
}

func (r *csvRows) flush() error {
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		return err
	}
	r.pending = 0
	return r.out.Flush()
}
