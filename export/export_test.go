package export_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/xraph/billing/export"
	"github.com/xraph/billing/report"
)

var generatedAt = time.Date(2024, 3, 31, 18, 5, 9, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func revenueReport() *report.Report {
	return &report.Report{
		Type:        report.TypeRevenue,
		GeneratedAt: generatedAt,
		Data: &report.Revenue{
			TotalRevenue:          dec("2500"),
			PaidInvoicesCount:     2,
			PaidInvoices:          []string{"i1", "i2"},
			MonthlyBreakdown:      map[string]decimal.Decimal{"2024-03": dec("2500")},
			PaymentMethods:        map[string]decimal.Decimal{"card": dec("2500")},
			AverageMonthlyRevenue: dec("2500"),
		},
	}
}

func TestFlattenRevenueSingleMonth(t *testing.T) {
	table := export.Flatten(revenueReport().Data)

	assert.Equal(t, export.RevenueColumns, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "2024-03", table.Rows[0][0])
	assert.True(t, dec("2500").Equal(table.Rows[0][1].(decimal.Decimal)))
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name    string
		data    report.Data
		columns []string
		rows    [][]any
	}{
		{
			name: "revenue rows sorted by month",
			data: &report.Revenue{
				TotalRevenue: dec("30"),
				MonthlyBreakdown: map[string]decimal.Decimal{
					"2024-02": dec("20"),
					"2024-01": dec("10"),
				},
			},
			columns: export.RevenueColumns,
			rows: [][]any{
				{"2024-01", dec("10"), dec("30")},
				{"2024-02", dec("20"), dec("30")},
			},
		},
		{
			name: "outstanding keeps report order",
			data: &report.Outstanding{
				OutstandingInvoices: []report.OutstandingInvoice{
					{InvoiceID: "i2", ClientName: "Globex", Amount: dec("5"), DaysOverdue: 90},
					{InvoiceID: "i1", ClientName: "Acme", Amount: dec("7"), DaysOverdue: 3},
				},
			},
			columns: export.OutstandingColumns,
			rows: [][]any{
				{"i2", "Globex", dec("5"), 90},
				{"i1", "Acme", dec("7"), 3},
			},
		},
		{
			name: "client analysis joins services",
			data: &report.ClientAnalysis{
				ClientMetrics: map[string]*report.ClientMetrics{
					"Globex": {TotalSpent: dec("1"), InvoicesCount: 1, ServicesUsed: []string{"SEO"}},
					"Acme":   {TotalSpent: dec("2"), InvoicesCount: 3, ServicesUsed: []string{"Web Design", "Hosting"}},
				},
			},
			columns: export.ClientAnalysisColumns,
			rows: [][]any{
				{"Acme", dec("2"), 3, "Web Design, Hosting"},
				{"Globex", dec("1"), 1, "SEO"},
			},
		},
		{
			name: "service metrics counts clients",
			data: &report.ServiceMetrics{
				ServiceMetrics: map[string]*report.ServiceStats{
					"Hosting": {TotalRevenue: dec("890"), UsageCount: 3, Clients: []string{"Acme", "Globex"}},
				},
			},
			columns: export.ServiceMetricsColumns,
			rows: [][]any{
				{"Hosting", dec("890"), 3, 2},
			},
		},
		{
			name: "payment trends rows sorted by date",
			data: &report.PaymentTrends{
				DailyVolumes: map[string]decimal.Decimal{
					"2024-02-11": dec("500"),
					"2024-02-03": dec("100"),
				},
				AveragePaymentSize: dec("300"),
			},
			columns: export.PaymentTrendsColumns,
			rows: [][]any{
				{"2024-02-03", dec("100"), dec("300")},
				{"2024-02-11", dec("500"), dec("300")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := export.Flatten(tt.data)
			assert.Equal(t, tt.columns, table.Columns)
			require.Len(t, table.Rows, len(tt.rows))
			for i, want := range tt.rows {
				got := table.Rows[i]
				require.Len(t, got, len(want))
				for j := range want {
					if d, ok := want[j].(decimal.Decimal); ok {
						assert.True(t, d.Equal(got[j].(decimal.Decimal)), "row %d col %d: want %s, got %v", i, j, d, got[j])
						continue
					}
					assert.Equal(t, want[j], got[j], "row %d col %d", i, j)
				}
			}
		})
	}
}

func TestFlattenUnknown(t *testing.T) {
	assert.True(t, export.Flatten(nil).Empty())
	assert.True(t, export.Flatten(&report.Revenue{}).Empty())
}

func TestCSVEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.CSVEncoder{}.Encode(&buf, export.Table{
		Columns: export.ClientAnalysisColumns,
		Rows:    [][]any{{"Acme", dec("1500.25"), 2, "Web Design, Hosting"}},
	}))

	assert.Equal(t,
		"client_name,total_spent,invoices_count,services\n"+
			"Acme,1500.25,2,\"Web Design, Hosting\"\n",
		buf.String())
}

func TestEncodersSkipEmptyTable(t *testing.T) {
	for _, f := range []export.Format{export.FormatCSV, export.FormatXLSX} {
		enc, err := export.EncoderFor(f)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, enc.Encode(&buf, export.Table{Columns: export.RevenueColumns}))
		assert.Zero(t, buf.Len(), f)
	}
}

func TestXLSXEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.XLSXEncoder{}.Encode(&buf, export.Flatten(revenueReport().Data)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"month", "revenue", "total_revenue"},
		{"2024-03", "2500", "2500"},
	}, rows)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    export.Format
		wantErr bool
	}{
		{"", export.FormatJSON, false},
		{"json", export.FormatJSON, false},
		{"csv", export.FormatCSV, false},
		{"xlsx", export.FormatXLSX, false},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		got, err := export.ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := export.EncoderFor(export.FormatJSON)
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "revenue_report_20240331_180509.csv", export.FileName(revenueReport(), "csv"))
}

func TestExporterDirSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	exp := export.NewExporter(export.DirSink{Dir: dir})

	art, err := exp.Export(context.Background(), revenueReport(), export.FormatCSV)
	require.NoError(t, err)
	require.NotNil(t, art)

	assert.Equal(t, "revenue_report_20240331_180509.csv", art.Name)
	assert.Equal(t, "text/csv", art.ContentType)
	assert.Equal(t, filepath.Join(dir, art.Name), art.Location)

	onDisk, err := os.ReadFile(art.Location)
	require.NoError(t, err)
	assert.Equal(t, art.Data, onDisk)
	assert.True(t, strings.HasPrefix(string(onDisk), "month,revenue,total_revenue\n"))
}

func TestExporterNoOp(t *testing.T) {
	saved := 0
	exp := export.NewExporter(export.SinkFunc(func(context.Context, string, string, []byte) (string, error) {
		saved++
		return "", nil
	}))

	art, err := exp.Export(context.Background(), revenueReport(), export.FormatJSON)
	require.NoError(t, err)
	assert.Nil(t, art)

	empty := &report.Report{Type: report.TypeRevenue, GeneratedAt: generatedAt, Data: &report.Revenue{}}
	art, err = exp.Export(context.Background(), empty, export.FormatCSV)
	require.NoError(t, err)
	assert.Nil(t, art)

	assert.Zero(t, saved)
}

func TestExporterSinkError(t *testing.T) {
	boom := errors.New("bucket gone")
	exp := export.NewExporter(export.SinkFunc(func(context.Context, string, string, []byte) (string, error) {
		return "", boom
	}))

	_, err := exp.Export(context.Background(), revenueReport(), export.FormatXLSX)
	assert.ErrorIs(t, err, boom)
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(in.Body); err != nil {
		return nil, err
	}
	f.body = buf.Bytes()
	return &s3.PutObjectOutput{}, nil
}

func TestS3Sink(t *testing.T) {
	client := &fakeS3{}
	sink := export.NewS3Sink(client, "billing-exports", "/reports/")

	loc, err := sink.Save(context.Background(), "revenue_report_20240331_180509.csv", "text/csv", []byte("a,b\n"))
	require.NoError(t, err)

	assert.Equal(t, "s3://billing-exports/reports/revenue_report_20240331_180509.csv", loc)
	assert.Equal(t, "billing-exports", *client.input.Bucket)
	assert.Equal(t, "reports/revenue_report_20240331_180509.csv", *client.input.Key)
	assert.Equal(t, "text/csv", *client.input.ContentType)
	assert.Equal(t, []byte("a,b\n"), client.body)
}

func TestS3SinkFromConfigRequiresBucket(t *testing.T) {
	_, err := export.NewS3SinkFromConfig(context.Background(), export.S3Config{})
	assert.Error(t, err)
}

func TestGCSSinkFromConfigRequiresBucket(t *testing.T) {
	_, err := export.NewGCSSinkFromConfig(context.Background(), export.GCSConfig{})
	assert.Error(t, err)
}

func TestNewSink(t *testing.T) {
	ctx := context.Background()

	sink, closer, err := export.NewSink(ctx, export.SinkConfig{Dir: "out"})
	require.NoError(t, err)
	assert.Nil(t, closer)
	assert.Equal(t, export.DirSink{Dir: "out"}, sink)

	_, _, err = export.NewSink(ctx, export.SinkConfig{Kind: export.SinkS3})
	assert.Error(t, err)

	_, _, err = export.NewSink(ctx, export.SinkConfig{Kind: "ftp"})
	assert.ErrorContains(t, err, `unknown sink kind "ftp"`)
}
