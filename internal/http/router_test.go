package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	budgethttp "github.com/MrJamesThe3rd/budget/internal/http"
	importHandler "github.com/MrJamesThe3rd/budget/internal/http/importer"
	reportHandler "github.com/MrJamesThe3rd/budget/internal/http/report"
	sessionHandler "github.com/MrJamesThe3rd/budget/internal/http/session"
	txHandler "github.com/MrJamesThe3rd/budget/internal/http/transaction"
	"github.com/MrJamesThe3rd/budget/internal/importer"
	"github.com/MrJamesThe3rd/budget/internal/metrics"
	"github.com/MrJamesThe3rd/budget/internal/session"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
	"github.com/MrJamesThe3rd/budget/internal/transaction/memory"
)

type client struct {
	t      *testing.T
	server *httptest.Server
	token  string
}

func newClient(t *testing.T) *client {
	t.Helper()

	log := zap.NewNop()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	manager := session.NewManager(func(string) transaction.Repository { return memory.New() })
	tokens := session.NewTokens("test-secret", time.Hour)

	router := budgethttp.New(
		budgethttp.Options{
			Log:         log,
			Metrics:     m,
			Gatherer:    reg,
			Tokens:      tokens,
			CORSOrigins: []string{"*"},
			Timeout:     5 * time.Second,
		},
		sessionHandler.NewHandler(manager, tokens, m, log),
		txHandler.NewHandler(manager, m, log),
		importHandler.NewHandler(importer.NewService(log), manager, m, log, 1<<20),
		reportHandler.NewHandler(manager, log),
	)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &client{t: t, server: server}
}

func (c *client) do(method, path, contentType string, body io.Reader) *http.Response {
	c.t.Helper()

	req, err := http.NewRequest(method, c.server.URL+path, body)
	require.NoError(c.t, err)

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.server.Client().Do(req)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func (c *client) login() {
	c.t.Helper()

	resp := c.do(http.MethodPost, "/api/v1/sessions", "", nil)
	require.Equal(c.t, http.StatusCreated, resp.StatusCode)

	var body struct {
		SessionID string `json:"session_id"`
		Token     string `json:"token"`
	}
	decode(c.t, resp, &body)

	require.NotEmpty(c.t, body.SessionID)
	c.token = body.Token
}

func (c *client) postJSON(path, body string) *http.Response {
	return c.do(http.MethodPost, path, "application/json", strings.NewReader(body))
}

func (c *client) upload(filename string, content []byte) *http.Response {
	c.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(c.t, err)
	_, err = fw.Write(content)
	require.NoError(c.t, err)
	require.NoError(c.t, mw.Close())

	return c.do(http.MethodPost, "/api/v1/import", mw.FormDataContentType(), &buf)
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

type txBody struct {
	ID       int64  `json:"id"`
	Date     string `json:"date"`
	Type     string `json:"type"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Category string `json:"category"`
	Note     string `json:"note"`
}

func TestRouter_RequiresSession(t *testing.T) {
	c := newClient(t)

	for _, path := range []string{"/api/v1/transactions", "/api/v1/summary", "/api/v1/report", "/api/v1/export"} {
		resp := c.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	c.token = "forged"
	resp := c.do(http.MethodGet, "/api/v1/transactions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_ManualEntry(t *testing.T) {
	c := newClient(t)
	c.login()

	resp := c.postJSON("/api/v1/transactions",
		`{"date":"2024-01-05","type":"expense","amount":12.5,"currency":"usd","category":" food ","note":"lunch"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created txBody
	decode(t, resp, &created)
	assert.Equal(t, txBody{ID: 1, Date: "2024-01-05", Type: "expense", Amount: "12.50", Currency: "USD", Category: "food", Note: "lunch"}, created)

	resp = c.postJSON("/api/v1/transactions",
		`{"date":"2024-01-06","type":"income","amount":"-3","currency":"USD","category":"refund"}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var vErr struct {
		Field string `json:"field"`
		Kind  string `json:"kind"`
	}
	decode(t, resp, &vErr)
	assert.Equal(t, "amount", vErr.Field)
	assert.Equal(t, string(transaction.KindInvalidAmount), vErr.Kind)

	resp = c.postJSON("/api/v1/transactions", `{"date":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = c.do(http.MethodGet, "/api/v1/transactions?type=expense", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []txBody
	decode(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, created, list[0])

	resp = c.do(http.MethodGet, "/api/v1/transactions?month=13", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_SessionsDoNotShareLedgers(t *testing.T) {
	alice := newClient(t)
	alice.login()

	bob := &client{t: t, server: alice.server}
	bob.login()

	resp := alice.postJSON("/api/v1/transactions",
		`{"date":"2024-01-05","type":"income","amount":"10","currency":"PKR","category":"gift"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = bob.do(http.MethodGet, "/api/v1/transactions", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []txBody
	decode(t, resp, &list)
	assert.Empty(t, list)
}

func TestRouter_ImportAndSummarize(t *testing.T) {
	c := newClient(t)
	c.login()

	csv := "date,type,amount,currency,category\n" +
		"2024-01-05,expense,1.00,USD,food\n" +
		"2024-01-10,income,5.00,USD,salary\n" +
		"2024-02-01,expense,0.50,EUR,food\n" +
		"2024-02-02,expense,1,JPY,food\n"

	resp := c.upload("ledger.csv", []byte(csv))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report struct {
		Total    int      `json:"total"`
		Accepted []txBody `json:"accepted"`
		Rejected []struct {
			Row   int    `json:"row"`
			Field string `json:"field"`
			Kind  string `json:"kind"`
		} `json:"rejected"`
	}
	decode(t, resp, &report)

	assert.Equal(t, 4, report.Total)
	assert.Len(t, report.Accepted, 3)
	require.Len(t, report.Rejected, 1)
	assert.Equal(t, 5, report.Rejected[0].Row)
	assert.Equal(t, "currency", report.Rejected[0].Field)
	assert.Equal(t, string(transaction.KindUnsupportedCurrency), report.Rejected[0].Kind)

	resp = c.do(http.MethodGet, "/api/v1/summary?group_by=currency", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary struct {
		GroupBy string `json:"group_by"`
		Entries []struct {
			Group    string `json:"group"`
			Currency string `json:"currency"`
			Income   string `json:"income"`
			Expense  string `json:"expense"`
			Net      string `json:"net"`
		} `json:"entries"`
	}
	decode(t, resp, &summary)

	assert.Equal(t, "currency", summary.GroupBy)
	require.Len(t, summary.Entries, 4)
	assert.Equal(t, "EUR", summary.Entries[0].Currency)
	assert.Equal(t, "-0.50", summary.Entries[0].Net)
	assert.Equal(t, "USD", summary.Entries[3].Currency)
	assert.Equal(t, "5.00", summary.Entries[3].Income)
	assert.Equal(t, "1.00", summary.Entries[3].Expense)
	assert.Equal(t, "4.00", summary.Entries[3].Net)

	resp = c.do(http.MethodGet, "/api/v1/summary?group_by=weekday", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = c.do(http.MethodGet, "/api/v1/report?group_by=month&year=2024&month=2", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc struct {
		Period struct {
			Label string `json:"label"`
		} `json:"period"`
		Transactions []txBody `json:"transactions"`
	}
	decode(t, resp, &doc)
	assert.Equal(t, "February 2024", doc.Period.Label)
	require.Len(t, doc.Transactions, 1)
	assert.Equal(t, "EUR", doc.Transactions[0].Currency)

	resp = c.do(http.MethodDelete, "/api/v1/transactions", "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = c.do(http.MethodGet, "/api/v1/transactions", "", nil)
	var list []txBody
	decode(t, resp, &list)
	assert.Empty(t, list)
}

func TestRouter_ImportFileErrors(t *testing.T) {
	c := newClient(t)
	c.login()

	type testCase struct {
		name     string
		filename string
		content  []byte
		wantKind transaction.Kind
	}

	tests := []testCase{
		{name: "unsupported extension", filename: "ledger.pdf", content: []byte("%PDF"), wantKind: transaction.KindFileUnreadable},
		{name: "missing columns", filename: "ledger.csv", content: []byte("date,amount\n"), wantKind: transaction.KindSchemaMismatch},
		{name: "corrupt workbook", filename: "ledger.xlsx", content: []byte("nope"), wantKind: transaction.KindFileUnreadable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := c.upload(tt.filename, tt.content)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body struct {
				Kind string `json:"kind"`
			}
			decode(t, resp, &body)
			assert.Equal(t, string(tt.wantKind), body.Kind)
		})
	}
}

func TestRouter_TemplateAndExport(t *testing.T) {
	c := newClient(t)

	resp := c.do(http.MethodGet, "/api/v1/import/template?format=csv", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "budget_template.csv")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "date,type,amount,currency,category,note\n", string(body))

	resp = c.do(http.MethodGet, "/api/v1/import/template?samples=true", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	template, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	c.login()

	resp = c.upload("budget_template.xlsx", template)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = c.do(http.MethodGet, "/api/v1/export", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	rows, err := f.GetRows("transactions")
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	c := newClient(t)

	resp := c.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	c.login()

	resp = c.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "budget_sessions_active 1")
	assert.Contains(t, string(body), "budget_http_requests_total")
}
