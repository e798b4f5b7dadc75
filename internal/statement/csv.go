package statement

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeComment(line string) error {
	if s == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if !strings.HasSuffix(line, "\r\n") {
		line = strings.TrimSuffix(line, "\n")
		line += "\r\n"
	}
	_, err := s.buf.WriteString(line)
	return err
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	if s == nil || s.csv == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

// WriteCSV streams the statement as CSV: metadata comments, the summary
// block, then the line rows newest first.
func WriteCSV(w io.Writer, st Statement) error {
	streamer := newCSVStreamer(w)

	if err := streamer.writeComment(fmt.Sprintf("# Statement: %s", st.Period.Label())); err != nil {
		return err
	}
	if err := streamer.writeComment(fmt.Sprintf("# Account holder: %s | Generated: %s | Ref: %s",
		st.AccountHolder, st.GeneratedAt.Format("2006-01-02 15:04 MST"), st.ID)); err != nil {
		return err
	}

	summaryRows := [][]string{
		{"Summary", "Total Income", formatAmount(st.Summary.TotalIncome)},
		{"Summary", "Total Expenses", formatAmount(st.Summary.TotalExpenses)},
		{"Summary", "Net Profit", formatAmount(st.Summary.NetProfit)},
	}
	for _, row := range summaryRows {
		if err := streamer.writeRow(row); err != nil {
			return err
		}
	}
	if err := streamer.writeRow([]string{"", "", ""}); err != nil {
		return err
	}

	if err := streamer.writeRow([]string{"Date", "Title", "Category", "Kind", "Amount", "Running Balance"}); err != nil {
		return err
	}
	for _, line := range st.Lines {
		if err := streamer.writeRow([]string{
			line.OccurredAt.UTC().Format("2006-01-02"),
			line.Title,
			line.Category,
			string(line.Kind),
			formatAmount(line.Amount),
			formatAmount(line.RunningBalance),
		}); err != nil {
			return err
		}
	}
	return streamer.Flush()
}
