package importer_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/budget/internal/importer"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

func TestWriteTemplate_RoundTrip(t *testing.T) {
	samples := importer.SampleRows(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))

	for _, format := range []importer.Format{importer.FormatCSV, importer.FormatXLSX} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, importer.WriteTemplate(&buf, format, samples))

			ledger := newLedger()
			svc := importer.NewService(zap.NewNop())

			report, err := svc.Import(context.Background(), ledger, format, &buf)
			require.NoError(t, err)
			assert.Empty(t, report.Rejected)

			got := listAll(t, ledger)
			require.Len(t, got, len(samples))

			for i, want := range samples {
				expected, err := transaction.Validate(want)
				require.NoError(t, err)

				expected.ID = int64(i + 1)
				assert.Equal(t, expected, got[i])
			}
		})
	}
}

func TestWriteTemplate_EmptyHasOnlyHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, importer.WriteTemplate(&buf, importer.FormatCSV, nil))

	assert.Equal(t, strings.Join(importer.Columns, ",")+"\n", buf.String())

	ledger := newLedger()
	report, err := importer.NewService(zap.NewNop()).Import(context.Background(), ledger, importer.FormatCSV, &buf)
	require.NoError(t, err)
	assert.Zero(t, report.Total)
}

func TestWriteTemplate_UnsupportedFormat(t *testing.T) {
	err := importer.WriteTemplate(&bytes.Buffer{}, importer.Format("ods"), nil)
	assert.ErrorIs(t, err, importer.ErrUnsupportedFormat)
}

func TestFormatFromFilename(t *testing.T) {
	type testCase struct {
		name    string
		file    string
		want    importer.Format
		wantErr bool
	}

	tests := []testCase{
		{name: "csv", file: "budget.csv", want: importer.FormatCSV},
		{name: "upper case xlsx", file: "Budget_Template.XLSX", want: importer.FormatXLSX},
		{name: "no extension", file: "budget", wantErr: true},
		{name: "legacy excel", file: "budget.xls", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := importer.FormatFromFilename(tt.file)
			if tt.wantErr {
				assert.ErrorIs(t, err, importer.ErrUnsupportedFormat)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
