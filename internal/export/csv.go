// Package export writes route summaries as delimited text with localized
// column labels.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gocarina/gocsv"

	"route-planning-report/internal/models"
)

// Options controls how summaries are written
type Options struct {
	Language string
	// SkipHeader omits the header row, used when appending
	SkipHeader bool
}

// WriteCSV writes the summaries preceded by a zero-based row index column
func WriteCSV(w io.Writer, summaries []models.RouteSummary, opts Options) error {
	header, err := Labels(opts.Language)
	if err != nil {
		return err
	}

	writer := gocsv.NewSafeCSVWriter(csv.NewWriter(w))
	if !opts.SkipHeader {
		if err := writer.Write(append([]string{""}, header...)); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for i, s := range summaries {
		if err := writer.Write(append([]string{strconv.Itoa(i)}, Row(s)...)); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteFile writes the summaries to path. With appendRows set, rows are
// appended to an existing file and the header is only written to an empty one.
func WriteFile(path string, summaries []models.RouteSummary, lang string, appendRows bool) error {
	if _, err := Labels(lang); err != nil {
		return err
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendRows {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}

	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat output file: %w", err)
	}

	opts := Options{Language: lang, SkipHeader: appendRows && info.Size() > 0}
	if err := WriteCSV(file, summaries, opts); err != nil {
		return err
	}
	return file.Close()
}
