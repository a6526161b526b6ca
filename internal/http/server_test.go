package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"vibebudget/internal/ingest"
	"vibebudget/internal/services"
	"vibebudget/internal/storage"
)

const testUser = "user-http"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	opts := ingest.Options{DefaultCurrency: "RON"}
	imports := services.NewImportService(repo, nil, opts)
	reports := services.NewReportService(repo, nil)
	keywords := services.NewKeywordService(repo, nil)

	srv := NewServer(":0", repo, imports, reports, keywords, nil)
	t.Cleanup(func() { srv.rateLimiter.Stop() })
	return srv
}

func doRequest(t *testing.T, srv *Server, method, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set(UserIDHeader, testUser)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		t.Fatalf("encode body: %v", err)
	}
	return buf
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

func statementUpload(t *testing.T, filename, content, bank string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if bank != "" {
		if err := mw.WriteField("bank", bank); err != nil {
			t.Fatalf("write bank field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return buf, mw.FormDataContentType()
}

const sampleStatement = "Data,Descriere,Suma\n" +
	"2025-07-03,KAUFLAND BUCURESTI,-45.50\n" +
	"2025-07-10,COFIDIS SPAIN,-120.00\n" +
	"2025-08-05,KAUFLAND BUCURESTI,-91.00\n" +
	"2025-08-28,Salariu iulie,5000.00\n"

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: status = %d, want 401", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	req.Header.Set(UserIDHeader, "no spaces allowed")
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("invalid header: status = %d, want 401", rr.Code)
	}

	// Health endpoints stay open
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("healthz: status = %d, want 200", rr.Code)
	}
}

func TestImportAndReports(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := statementUpload(t, "statement.csv", sampleStatement, "BT")
	rr := doRequest(t, srv, http.MethodPost, "/api/imports", body, contentType)
	if rr.Code != http.StatusCreated {
		t.Fatalf("import: status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var imported importResponse
	decodeBody(t, rr, &imported)
	if imported.Imported != 4 {
		t.Errorf("Imported = %d, want 4", imported.Imported)
	}
	if imported.Categorized < 2 {
		t.Errorf("Categorized = %d, want at least 2 (KAUFLAND rows)", imported.Categorized)
	}
	if len(imported.Skipped) != 0 {
		t.Errorf("Skipped = %v, want none", imported.Skipped)
	}

	rr = doRequest(t, srv, http.MethodGet, "/api/reports/pivot", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("pivot: status = %d", rr.Code)
	}
	var pivot pivotJSON
	decodeBody(t, rr, &pivot)
	if len(pivot.Months) != 2 || pivot.Months[0] != "2025-07" || pivot.Months[1] != "2025-08" {
		t.Fatalf("pivot months = %v, want [2025-07 2025-08]", pivot.Months)
	}
	// The salary row is income and must not appear in the pivot
	for _, row := range pivot.Rows {
		for month, cell := range row.Months {
			if strings.HasPrefix(cell.Amount, "5000") {
				t.Errorf("income amount leaked into pivot at %s/%s", row.CategoryName, month)
			}
			if cell.Severity == "" {
				t.Errorf("cell %s/%s has no severity", row.CategoryName, month)
			}
		}
	}

	// KAUFLAND doubled from 45.50 to 91: its row must carry a positive change
	var found bool
	for _, row := range pivot.Rows {
		cell, ok := row.Months["2025-08"]
		if ok && cell.Amount == "91" {
			found = true
			if cell.ChangePct == nil || *cell.ChangePct != "100" {
				t.Errorf("ChangePct = %v, want 100", cell.ChangePct)
			}
			if row.MaxIncrease == nil || row.MaxIncrease.Month != "2025-08" {
				t.Errorf("MaxIncrease = %+v, want month 2025-08", row.MaxIncrease)
			}
		}
	}
	if !found {
		t.Errorf("no pivot row with 91 spent in 2025-08: %s", rr.Body.String())
	}

	rr = doRequest(t, srv, http.MethodGet, "/api/reports/stats", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("stats: status = %d", rr.Code)
	}
	var stats summaryJSON
	decodeBody(t, rr, &stats)
	if stats.Count != 4 {
		t.Errorf("stats.Count = %d, want 4", stats.Count)
	}
	if stats.TotalExpenses != "256.5" {
		t.Errorf("TotalExpenses = %s, want 256.5", stats.TotalExpenses)
	}
	if stats.TotalIncome != "5000" {
		t.Errorf("TotalIncome = %s, want 5000", stats.TotalIncome)
	}

	rr = doRequest(t, srv, http.MethodGet, "/api/reports/pivot?from=bad-date", nil, "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad from param: status = %d, want 400", rr.Code)
	}
}

func TestImportFlagsDefaultedDates(t *testing.T) {
	srv := newTestServer(t)

	const csv = "Data,Descriere,Suma\n" +
		"2025-07-03,KAUFLAND BUCURESTI,-45.50\n" +
		"12/31/2025,US EXPORT,-10.00\n"
	body, contentType := statementUpload(t, "statement.csv", csv, "")
	rr := doRequest(t, srv, http.MethodPost, "/api/imports", body, contentType)
	if rr.Code != http.StatusCreated {
		t.Fatalf("import: status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp importResponse
	decodeBody(t, rr, &resp)
	if resp.Imported != 2 {
		t.Errorf("Imported = %d, want 2 (the bad date defaults, it does not kill the batch)", resp.Imported)
	}
	if len(resp.Flagged) != 1 {
		t.Errorf("Flagged = %+v, want the defaulted row", resp.Flagged)
	}
	if len(resp.Skipped) != 0 {
		t.Errorf("Skipped = %+v, want none: flagged rows were imported", resp.Skipped)
	}
}

func TestImportRejectsBrokenUploads(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := statementUpload(t, "statement.xlsx", "whatever", "")
	rr := doRequest(t, srv, http.MethodPost, "/api/imports", body, contentType)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("xlsx upload: status = %d, want 400", rr.Code)
	}

	// Headers detected but every data row malformed: empty result, not
	// a structural failure
	body, contentType = statementUpload(t, "statement.csv", "Data,Descriere,Suma\nnot-a-date,,\n", "")
	rr = doRequest(t, srv, http.MethodPost, "/api/imports", body, contentType)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("unusable rows: status = %d, want 422, body %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, srv, http.MethodPost, "/api/imports", bytes.NewBufferString("plain"), "text/plain")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("non-multipart: status = %d, want 400", rr.Code)
	}
}

type fakeSheetSource struct {
	rows []ingest.RawRow
	err  error
}

func (f fakeSheetSource) Rows(ctx context.Context) ([]ingest.RawRow, error) {
	return f.rows, f.err
}

func TestSheetImport(t *testing.T) {
	srv := newTestServer(t)

	rr := doRequest(t, srv, http.MethodPost, "/api/imports/sheet", nil, "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("unconfigured source: status = %d, want 503", rr.Code)
	}

	rows, err := ingest.RowsFromCSV(strings.NewReader("Data,Descriere,Suma\n2025-07-03,KAUFLAND BUCURESTI,-45.50\n"))
	if err != nil {
		t.Fatalf("RowsFromCSV: %v", err)
	}
	srv.SetSheetSource(fakeSheetSource{rows: rows})

	rr = doRequest(t, srv, http.MethodPost, "/api/imports/sheet?bank=BT", nil, "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("sheet import: status = %d, body %s", rr.Code, rr.Body.String())
	}
	var imported importResponse
	decodeBody(t, rr, &imported)
	if imported.Imported != 1 {
		t.Errorf("Imported = %d, want 1", imported.Imported)
	}

	srv.SetSheetSource(fakeSheetSource{err: context.DeadlineExceeded})
	rr = doRequest(t, srv, http.MethodPost, "/api/imports/sheet", nil, "")
	if rr.Code != http.StatusBadGateway {
		t.Errorf("failing source: status = %d, want 502", rr.Code)
	}
}

func TestTransactionCategoryLifecycle(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := statementUpload(t, "statement.csv", "Data,Descriere,Suma\n2025-07-03,COFIDIS SPAIN,-120.00\n", "")
	if rr := doRequest(t, srv, http.MethodPost, "/api/imports", body, contentType); rr.Code != http.StatusCreated {
		t.Fatalf("import: status = %d", rr.Code)
	}

	rr := doRequest(t, srv, http.MethodGet, "/api/transactions?uncategorized=true", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rr.Code)
	}
	var txs []transactionJSON
	decodeBody(t, rr, &txs)
	if len(txs) != 1 {
		t.Fatalf("uncategorized transactions = %d, want 1", len(txs))
	}
	txID := txs[0].ID

	rr = doRequest(t, srv, http.MethodPost, "/api/categories", jsonBody(t, map[string]string{"name": "Rate", "type": "expense"}), "application/json")
	if rr.Code != http.StatusCreated {
		t.Fatalf("create category: status = %d, body %s", rr.Code, rr.Body.String())
	}
	var cat categoryJSON
	decodeBody(t, rr, &cat)

	// Assigning a nonexistent category must fail before touching the row
	rr = doRequest(t, srv, http.MethodPut, "/api/transactions/"+txID+"/category", jsonBody(t, map[string]string{"category_id": "nope"}), "application/json")
	if rr.Code != http.StatusNotFound {
		t.Errorf("bogus category: status = %d, want 404", rr.Code)
	}

	rr = doRequest(t, srv, http.MethodPut, "/api/transactions/"+txID+"/category", jsonBody(t, map[string]string{"category_id": cat.ID}), "application/json")
	if rr.Code != http.StatusOK {
		t.Fatalf("set category: status = %d, body %s", rr.Code, rr.Body.String())
	}
	var updated transactionJSON
	decodeBody(t, rr, &updated)
	if updated.CategoryID == nil || *updated.CategoryID != cat.ID {
		t.Errorf("CategoryID = %v, want %s", updated.CategoryID, cat.ID)
	}

	// Clearing with null works too
	rr = doRequest(t, srv, http.MethodPut, "/api/transactions/"+txID+"/category", bytes.NewBufferString(`{"category_id": null}`), "application/json")
	if rr.Code != http.StatusOK {
		t.Fatalf("clear category: status = %d", rr.Code)
	}
	decodeBody(t, rr, &updated)
	if updated.CategoryID != nil {
		t.Errorf("CategoryID = %v, want nil after clearing", updated.CategoryID)
	}

	rr = doRequest(t, srv, http.MethodDelete, "/api/transactions/"+txID, nil, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d", rr.Code)
	}
	rr = doRequest(t, srv, http.MethodGet, "/api/transactions/"+txID, nil, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("get deleted: status = %d, want 404", rr.Code)
	}
}

func TestManualTransactionCRUD(t *testing.T) {
	srv := newTestServer(t)

	entry := map[string]any{
		"date":        "2025-07-03",
		"description": "Chirie iulie",
		"amount":      "-1200.00",
		"currency":    "ron",
	}

	rr := doRequest(t, srv, http.MethodPost, "/api/transactions", jsonBody(t, entry), "application/json")
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body %s", rr.Code, rr.Body.String())
	}
	var created transactionJSON
	decodeBody(t, rr, &created)
	if created.Amount != "-1200" {
		t.Errorf("Amount = %s, want -1200", created.Amount)
	}
	if created.Currency != "RON" {
		t.Errorf("Currency = %s, want RON (uppercased)", created.Currency)
	}

	entry["amount"] = "not-a-number"
	rr = doRequest(t, srv, http.MethodPost, "/api/transactions", jsonBody(t, entry), "application/json")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad amount: status = %d, want 422", rr.Code)
	}

	entry["amount"] = "-50.00"
	entry["bank_id"] = "missing-bank"
	rr = doRequest(t, srv, http.MethodPost, "/api/transactions", jsonBody(t, entry), "application/json")
	if rr.Code != http.StatusNotFound {
		t.Errorf("bogus bank: status = %d, want 404", rr.Code)
	}
	delete(entry, "bank_id")

	entry["description"] = "Chirie august"
	entry["date"] = "2025-08-03"
	rr = doRequest(t, srv, http.MethodPut, "/api/transactions/"+created.ID, jsonBody(t, entry), "application/json")
	if rr.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body %s", rr.Code, rr.Body.String())
	}
	var updated transactionJSON
	decodeBody(t, rr, &updated)
	if updated.Description != "Chirie august" || updated.Date != "2025-08-03" || updated.Amount != "-50" {
		t.Errorf("updated = %+v, want new description/date/amount", updated)
	}

	rr = doRequest(t, srv, http.MethodPut, "/api/transactions/no-such-id", jsonBody(t, entry), "application/json")
	if rr.Code != http.StatusNotFound {
		t.Errorf("update missing: status = %d, want 404", rr.Code)
	}
}

func TestKeywordEndpoints(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := statementUpload(t, "statement.csv", "Data,Descriere,Suma\n2025-07-03,COFIDIS SPAIN,-120.00\n", "")
	if rr := doRequest(t, srv, http.MethodPost, "/api/imports", body, contentType); rr.Code != http.StatusCreated {
		t.Fatalf("import: status = %d", rr.Code)
	}

	rr := doRequest(t, srv, http.MethodGet, "/api/keywords/suggest?description=COFIDIS+SPAIN", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("suggest: status = %d", rr.Code)
	}
	var suggestion struct {
		Keyword string `json:"keyword"`
	}
	decodeBody(t, rr, &suggestion)
	if suggestion.Keyword != "cofidis" {
		t.Errorf("suggest = %q, want cofidis", suggestion.Keyword)
	}

	// Find a seeded category to bind the keyword to
	rr = doRequest(t, srv, http.MethodGet, "/api/categories", nil, "")
	var cats []categoryJSON
	decodeBody(t, rr, &cats)
	if len(cats) == 0 {
		t.Fatal("no categories after import")
	}
	catID := cats[0].ID

	rr = doRequest(t, srv, http.MethodPost, "/api/keywords", jsonBody(t, map[string]string{"keyword": "cofidis", "category_id": catID}), "application/json")
	if rr.Code != http.StatusCreated {
		t.Fatalf("save keyword: status = %d, body %s", rr.Code, rr.Body.String())
	}
	var kw keywordJSON
	decodeBody(t, rr, &kw)

	rr = doRequest(t, srv, http.MethodPost, "/api/keywords", jsonBody(t, map[string]string{"keyword": "x", "category_id": "missing"}), "application/json")
	if rr.Code != http.StatusNotFound {
		t.Errorf("keyword with bogus category: status = %d, want 404", rr.Code)
	}

	rr = doRequest(t, srv, http.MethodPost, "/api/keywords/reclassify", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("reclassify: status = %d", rr.Code)
	}
	var result struct {
		Updated int `json:"updated"`
	}
	decodeBody(t, rr, &result)
	if result.Updated != 1 {
		t.Errorf("reclassify updated = %d, want 1", result.Updated)
	}

	rr = doRequest(t, srv, http.MethodDelete, "/api/keywords/"+kw.ID, nil, "")
	if rr.Code != http.StatusNoContent {
		t.Errorf("delete keyword: status = %d", rr.Code)
	}
	rr = doRequest(t, srv, http.MethodDelete, "/api/keywords/"+kw.ID, nil, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("delete twice: status = %d, want 404", rr.Code)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rr := doRequest(t, srv, http.MethodPost, "/api/banks", jsonBody(t, map[string]string{"name": "BT", "color": "#00b4e3"}), "application/json")
	if rr.Code != http.StatusCreated {
		t.Fatalf("create bank: status = %d", rr.Code)
	}
	var bank bankJSON
	decodeBody(t, rr, &bank)

	rr = doRequest(t, srv, http.MethodPost, "/api/banks", jsonBody(t, map[string]string{"name": "BT"}), "application/json")
	if rr.Code != http.StatusConflict {
		t.Errorf("duplicate bank: status = %d, want 409", rr.Code)
	}

	rr = doRequest(t, srv, http.MethodPost, "/api/banks", jsonBody(t, map[string]string{"name": "  "}), "application/json")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("blank bank name: status = %d, want 422", rr.Code)
	}

	rr = doRequest(t, srv, http.MethodDelete, "/api/banks/"+bank.ID, nil, "")
	if rr.Code != http.StatusNoContent {
		t.Errorf("delete bank: status = %d", rr.Code)
	}

	// The seeded system currencies are visible and undeletable
	rr = doRequest(t, srv, http.MethodGet, "/api/currencies", nil, "")
	var curs []currencyJSON
	decodeBody(t, rr, &curs)
	if len(curs) < 4 {
		t.Fatalf("currencies = %d, want at least the 4 system ones", len(curs))
	}
	var systemID string
	for _, c := range curs {
		if c.System {
			systemID = c.ID
			break
		}
	}
	if systemID == "" {
		t.Fatal("no system currency found")
	}
	rr = doRequest(t, srv, http.MethodDelete, "/api/currencies/"+systemID, nil, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("delete system currency: status = %d, want 404", rr.Code)
	}

	rr = doRequest(t, srv, http.MethodPost, "/api/currencies", jsonBody(t, map[string]string{"code": "gbp", "name": "Pound"}), "application/json")
	if rr.Code != http.StatusCreated {
		t.Fatalf("create currency: status = %d, body %s", rr.Code, rr.Body.String())
	}
	var cur currencyJSON
	decodeBody(t, rr, &cur)
	if cur.Code != "GBP" {
		t.Errorf("currency code = %s, want GBP (uppercased)", cur.Code)
	}
	rr = doRequest(t, srv, http.MethodDelete, "/api/currencies/"+cur.ID, nil, "")
	if rr.Code != http.StatusNoContent {
		t.Errorf("delete own currency: status = %d", rr.Code)
	}
}

func TestOpsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("readyz: status = %d, body %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"database":"ok"`) {
		t.Errorf("readyz body missing database check: %s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics: status = %d", rr.Code)
	}
	for _, metric := range []string{"http_requests_total", "imports_total", "uptime_seconds"} {
		if !strings.Contains(rr.Body.String(), metric) {
			t.Errorf("metrics body missing %s", metric)
		}
	}

	// Security headers ride on every response
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}
