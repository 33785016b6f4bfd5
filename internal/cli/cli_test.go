package cli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/billing"
	"github.com/xraph/billing/internal/cli"
)

// setup writes a config using a file store under a temp dir and returns
// the config path and the export directory.
func setup(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	reports := filepath.Join(dir, "reports")
	cfg := "store:\n  driver: file\n  dir: " + filepath.Join(dir, "data") +
		"\nexport:\n  dir: " + reports +
		"\nlog:\n  level: error\n"
	path := filepath.Join(dir, "billing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path, reports
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func createInvoice(t *testing.T, cfgPath string) string {
	t.Helper()
	out, err := run(t, cfgPath, "invoice", "create", "--json",
		"--client", "Tech Corp", "--service", "Web Development", "--service", "SEO", "--amount", "1500")
	require.NoError(t, err)

	var res map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.True(t, strings.HasPrefix(res["invoice_id"], "inv_"), res["invoice_id"])
	return res["invoice_id"]
}

func TestVersionCommand(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "billing dev")
}

func TestInvoiceLifecycle(t *testing.T) {
	cfg, _ := setup(t)
	invID := createInvoice(t, cfg)

	out, err := run(t, cfg, "invoice", "get", invID)
	require.NoError(t, err)
	assert.Contains(t, out, "Tech Corp")
	assert.Contains(t, out, "$1,500.00")
	assert.Contains(t, out, "pending")

	out, err = run(t, cfg, "invoice", "status", invID, "reminder_sent")
	require.NoError(t, err)
	assert.Contains(t, out, "-> reminder_sent")

	out, err = run(t, cfg, "invoice", "get", invID, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "reminder_sent"`)
}

func TestInvoiceCreateValidation(t *testing.T) {
	cfg, _ := setup(t)

	_, err := run(t, cfg, "invoice", "create", "--client", "Tech Corp")
	require.Error(t, err)
	assert.True(t, billing.IsValidation(err))

	var verr *billing.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ElementsMatch(t, []string{"services", "amount"}, verr.Fields)

	_, err = run(t, cfg, "invoice", "create", "--client", "A", "--service", "x", "--amount", "lots")
	assert.ErrorContains(t, err, "invalid --amount")

	_, err = run(t, cfg, "invoice", "create", "--client", "A", "--service", "x", "--amount", "1", "--due", "14/02/2024")
	assert.ErrorContains(t, err, "invalid --due")
}

func TestNotFound(t *testing.T) {
	cfg, _ := setup(t)

	tests := [][]string{
		{"invoice", "get", "inv_missing"},
		{"invoice", "status", "inv_missing", "paid"},
		{"payment", "get", "pay_missing"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, err := run(t, cfg, args...)
			require.Error(t, err)
			assert.True(t, billing.IsNotFound(err))
		})
	}
}

func TestPaymentSettlesInvoice(t *testing.T) {
	cfg, _ := setup(t)
	invID := createInvoice(t, cfg)

	out, err := run(t, cfg, "payment", "record", "--invoice", invID, "--amount", "1500", "--method", "card")
	require.NoError(t, err)
	payID := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(payID, "pay_"), payID)

	out, err = run(t, cfg, "payment", "get", payID)
	require.NoError(t, err)
	assert.Contains(t, out, "card")

	out, err = run(t, cfg, "invoice", "get", invID, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "paid"`)
}

func TestPaymentRecordValidation(t *testing.T) {
	cfg, _ := setup(t)
	invID := createInvoice(t, cfg)

	out, err := run(t, cfg, "payment", "record", "--invoice", invID, "--amount", "1500")
	require.Error(t, err)
	assert.True(t, billing.IsValidation(err))
	assert.Empty(t, out)

	var verr *billing.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"payment_method"}, verr.Fields)

	out, err = run(t, cfg, "invoice", "get", invID, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "pending"`)
}

func TestGetRejectsOtherKind(t *testing.T) {
	cfg, _ := setup(t)
	invID := createInvoice(t, cfg)

	_, err := run(t, cfg, "payment", "get", invID)
	require.Error(t, err)
	assert.True(t, billing.IsValidation(err))
	assert.ErrorContains(t, err, "is a inv identifier")
}

func TestOverdueCommands(t *testing.T) {
	cfg, _ := setup(t)
	_, err := run(t, cfg, "invoice", "create", "--client", "Late Co", "--service", "SEO", "--amount", "10", "--due", "2020-01-01")
	require.NoError(t, err)

	out, err := run(t, cfg, "invoice", "overdue")
	require.NoError(t, err)
	assert.Contains(t, out, "(1)")
	assert.Contains(t, out, "Late Co")

	out, err = run(t, cfg, "invoice", "mark-overdue")
	require.NoError(t, err)
	assert.Contains(t, out, "1 invoice(s) marked overdue")

	out, err = run(t, cfg, "invoice", "overdue")
	require.NoError(t, err)
	assert.Contains(t, out, "(0)")
}

func TestReportGenerate(t *testing.T) {
	cfg, reports := setup(t)
	invID := createInvoice(t, cfg)
	_, err := run(t, cfg, "payment", "record", "--invoice", invID, "--amount", "1500", "--method", "card")
	require.NoError(t, err)

	out, err := run(t, cfg, "report", "generate", "revenue", "--start", "2000-01-01", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "Revenue report")
	assert.Contains(t, out, "$1,500.00")
	assert.Contains(t, out, "Exported")

	entries, err := os.ReadDir(reports)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "revenue_report_"))
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".csv"))

	out, err = run(t, cfg, "report", "generate", "outstanding", "--json", "--start", "2000-01-01")
	require.NoError(t, err)
	assert.Contains(t, out, `"type": "outstanding"`)
}

func TestReportGenerateErrors(t *testing.T) {
	cfg, _ := setup(t)

	_, err := run(t, cfg, "report", "generate", "forecast")
	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrUnknownReportType)

	_, err = run(t, cfg, "report", "generate", "revenue", "--format", "pdf")
	assert.True(t, billing.IsValidation(err))

	_, err = run(t, cfg, "report", "generate", "revenue", "--start", "yesterday")
	assert.ErrorContains(t, err, "invalid --start")
}
