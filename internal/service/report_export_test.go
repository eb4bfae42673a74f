package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trude-tech/trude-carwash/internal/ledger"
)

func buildTestReport(t *testing.T) *SalesReport {
	t.Helper()
	svc, carWashRepo, drinkRepo, _ := newTestReportService()
	seedLedgers(t, carWashRepo, drinkRepo)

	report, err := svc.BuildReport(context.Background(), ReportOverall, ledger.FilterSpec{})
	require.NoError(t, err)
	return report
}

func TestExportPDF(t *testing.T) {
	report := buildTestReport(t)

	payload, err := ExportPDF(report)
	require.NoError(t, err)

	assert.NotEmpty(t, payload)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")), "payload is not a PDF")
}

func TestExportPDFEmptyReport(t *testing.T) {
	report := &SalesReport{
		Title:     "Trude Carwash - Car Wash Report",
		DateLabel: "All time",
		Columns:   []string{"Date", "Price"},
	}

	payload, err := ExportPDF(report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}

func TestExportXLSX(t *testing.T) {
	report := buildTestReport(t)

	payload, err := ExportXLSX(report)
	require.NoError(t, err)
	require.NotEmpty(t, payload)

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Report")
	require.NoError(t, err)
	require.Len(t, rows, len(report.Rows)+1)
	assert.Equal(t, report.Columns, rows[0])
}

func TestTruncateLine(t *testing.T) {
	short := "Date | Source | Item"
	assert.Equal(t, short, truncateLine(short))

	long := strings.Repeat("x", 2*pdfMaxLineChars)
	got := truncateLine(long)
	assert.Len(t, got, pdfMaxLineChars)
	assert.True(t, strings.HasSuffix(got, "..."))
}
