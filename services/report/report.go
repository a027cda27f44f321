// Package reportsvc renders attendance listings as downloadable CSV and PDF
// documents.
package reportsvc

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"

	"github.com/makonzi/uwepo/core/attendance"
)

const timeLayout = "15:04"

var header = []string{"Employee ID", "Name", "Date", "Punch In", "Punch Out", "Total Hours", "Out Of Bounds (min)", "Status"}

type Service struct {
	appName string
}

func NewService(appName string) *Service {
	return &Service{appName: appName}
}

func row(rec attendance.Record) []string {
	punchOut := "-"
	if rec.PunchOut != nil {
		punchOut = rec.PunchOut.Format(timeLayout)
	}
	return []string{
		rec.EmployeeID,
		rec.EmployeeName,
		rec.Date,
		rec.PunchIn.Format(timeLayout),
		punchOut,
		fmt.Sprintf("%.2f", rec.TotalHours),
		fmt.Sprintf("%.2f", rec.TotalOutOfBoundsTime),
		string(rec.Status),
	}
}

// CSV renders the records as a CSV document.
func (svc *Service) CSV(records []attendance.Record) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)

	if err := w.Write(header); err != nil {
		return nil, errors.Wrap(err, "writing CSV header")
	}
	for _, rec := range records {
		if err := w.Write(row(rec)); err != nil {
			return nil, errors.Wrap(err, "writing CSV row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "flushing CSV")
	}
	return buf.Bytes(), nil
}

// PDF renders the records as a landscape A4 table.
func (svc *Service) PDF(title string, records []attendance.Record) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, fmt.Sprintf("%s - %s", svc.appName, title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Generated "+time.Now().Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	widths := []float64{32, 55, 28, 25, 25, 28, 40, 30}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range header {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, rec := range records {
		for i, cell := range row(rec) {
			pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, errors.Wrap(err, "rendering PDF")
	}
	return buf.Bytes(), nil
}
