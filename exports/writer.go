// Package exports renders answer rows to downloadable files and stores the
// files produced by background export jobs.
package exports

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/vnkhanh/survey-hub/models"
	"github.com/vnkhanh/survey-hub/utils"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var Header = []string{"App", "Survey", "Response ID", "User ID", "Submitted At", "Question", "Answer"}

func ContentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

func FileName(prefix, format string) string {
	return fmt.Sprintf("%s-%s.%s", prefix, time.Now().UTC().Format("20060102-150405"), format)
}

// Write renders rows in the given format, csv when empty.
func Write(w io.Writer, format string, rows []models.AnswerRow) error {
	switch format {
	case "", FormatCSV:
		return WriteCSV(w, rows)
	case FormatXLSX:
		return WriteXLSX(w, rows)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func record(r models.AnswerRow) []string {
	return []string{
		r.AppName,
		r.SurveyTitle,
		r.ResponseID,
		r.UserID,
		r.SubmittedAt.UTC().Format(time.RFC3339),
		r.QuestionText,
		r.Value,
	}
}

// WriteCSV writes a header line and one line per row. Every cell goes through
// utils.EscapeCsvValue.
func WriteCSV(w io.Writer, rows []models.AnswerRow) error {
	bw := bufio.NewWriter(w)
	writeLine := func(cells []string) {
		for i, c := range cells {
			cells[i] = utils.EscapeCsvValue(c)
		}
		bw.WriteString(strings.Join(cells, ","))
		bw.WriteByte('\n')
	}

	writeLine(append([]string{}, Header...))
	for _, r := range rows {
		writeLine(record(r))
	}
	return bw.Flush()
}

// WriteXLSX writes the same table to an "Answers" sheet.
func WriteXLSX(w io.Writer, rows []models.AnswerRow) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Answers"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", toCells(Header)); err != nil {
		return err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, toCells(record(r))); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
