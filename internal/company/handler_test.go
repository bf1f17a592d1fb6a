package company

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-jobly/pkg/sqlbuilder"
)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	svc, mock := newTestService(t, sqlbuilder.FailOnEmpty)
	return NewHandler(svc, zap.NewNop().Sugar()), mock
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestHandlerSearch(t *testing.T) {
	h, mock := newTestHandler(t)
	mock.ExpectQuery(searchPattern).WithArgs("%face%", 10000, 50000).
		WillReturnRows(sqlmock.NewRows([]string{"handle", "name"}).AddRow("FB", "Facebook"))

	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/companies?search=face&min_employees=10000&max_employees=50000", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	want := `{"companies":[{"handle":"FB","name":"Facebook"}]}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
}

func TestHandlerSearchBadInput(t *testing.T) {
	cases := []struct {
		url     string
		message any
	}{
		{"/companies?search=face&min_employees=10000&max_employees=9000", "Min employees must be less than max employees."},
		{"/companies?min_employees=lots", []any{"min_employees must be an integer"}},
	}
	for _, tc := range cases {
		h, mock := newTestHandler(t)
		rec := httptest.NewRecorder()
		h.Search(rec, httptest.NewRequest(http.MethodGet, tc.url, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", tc.url, rec.Code)
		}
		body := decodeBody(t, rec)
		if msg, _ := json.Marshal(body["message"]); string(msg) != mustJSON(tc.message) {
			t.Errorf("%s: message = %s", tc.url, msg)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	}
}

func mustJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestHandlerCreateValidation(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/companies", strings.NewReader(`{"name":"Snapchat","num_employees":-1}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	got := mustJSON(decodeBody(t, rec)["message"])
	if got != `["handle is required","num_employees must be at least 0"]` {
		t.Errorf("message = %s", got)
	}
}

func TestHandlerUpdateStatuses(t *testing.T) {
	h, mock := newTestHandler(t)
	mock.ExpectQuery(`UPDATE companies SET description=$1 WHERE handle=$2 RETURNING *`).
		WithArgs("Fined $5 billion", "fake").
		WillReturnRows(sqlmock.NewRows(companyCols))

	req := httptest.NewRequest(http.MethodPatch, "/companies/fake", strings.NewReader(`{"description":"Fined $5 billion"}`))
	req.SetPathValue("handle", "fake")
	rec := httptest.NewRecorder()
	h.Update(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing company: status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["message"] != "Company not found." {
		t.Errorf("body = %v", body)
	}

	req = httptest.NewRequest(http.MethodPatch, "/companies/FB", strings.NewReader(`{"handle":"X"}`))
	req.SetPathValue("handle", "FB")
	rec = httptest.NewRecorder()
	h.Update(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("key in patch: status = %d", rec.Code)
	}
}

func TestHandlerGetAndDelete(t *testing.T) {
	h, mock := newTestHandler(t)
	mock.ExpectQuery(`SELECT handle, name, num_employees, description, logo_url FROM companies WHERE handle=$1`).
		WithArgs("fake").WillReturnRows(sqlmock.NewRows(companyCols))
	mock.ExpectExec(`DELETE FROM companies WHERE handle=$1`).WithArgs("FB").WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodGet, "/companies/fake", nil)
	req.SetPathValue("handle", "fake")
	rec := httptest.NewRecorder()
	h.Get(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("get missing: status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/companies/FB", nil)
	req.SetPathValue("handle", "FB")
	rec = httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"message":"Company deleted"}` {
		t.Errorf("delete: %d %s", rec.Code, rec.Body.String())
	}
}

func TestHandlerUpdateClearsNullableColumn(t *testing.T) {
	h, mock := newTestHandler(t)
	mock.ExpectQuery(`UPDATE companies SET logo_url=$1 WHERE handle=$2 RETURNING *`).
		WithArgs(nil, "FB").
		WillReturnRows(sqlmock.NewRows(companyCols).AddRow("FB", "Facebook", 35000, "Social media giant", nil))

	req := httptest.NewRequest(http.MethodPatch, "/companies/FB", strings.NewReader(`{"logo_url":null}`))
	req.SetPathValue("handle", "FB")
	rec := httptest.NewRecorder()
	h.Update(rec, req)
	want := `{"company":{"handle":"FB","name":"Facebook","num_employees":35000,"description":"Social media giant","logo_url":null}}`
	if got := strings.TrimSpace(rec.Body.String()); rec.Code != http.StatusOK || got != want {
		t.Errorf("%d %s", rec.Code, got)
	}

	req = httptest.NewRequest(http.MethodPatch, "/companies/FB", strings.NewReader(`{"logo_url":"not a url"}`))
	req.SetPathValue("handle", "FB")
	rec = httptest.NewRecorder()
	h.Update(rec, req)
	if got := strings.TrimSpace(rec.Body.String()); got != `{"status":400,"message":["logo_url must be a url"]}` {
		t.Errorf("bad url: %s", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
