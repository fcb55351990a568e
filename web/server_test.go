package web

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pointage/config"
	"pointage/roster"
	"pointage/storage"
)

func newTestServer(t *testing.T) (http.Handler, *storage.SQLiteStore) {
	t.Helper()

	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "web.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	cfg := config.Config{}
	cfg.Import.MergePolicy = "or"
	cfg.Import.DateOrder = "dmy"
	cfg.Upload.Folder = t.TempDir()
	cfg.Export.Folder = t.TempDir()
	cfg.Web.Listen = "127.0.0.1:0"

	handler, err := NewServer(store, cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return handler, store
}

func TestIndex_EmptyStore(t *testing.T) {
	t.Parallel()

	handler, _ := newTestServer(t)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "Aucune donnée") {
		t.Fatal("expected empty-state message in page")
	}
}

func TestIndex_RejectsBadRange(t *testing.T) {
	t.Parallel()

	handler, _ := newTestServer(t)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/?start=juillet", nil))

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}

func TestImport_UploadCSV(t *testing.T) {
	t.Parallel()

	handler, store := newTestServer(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "pointage_01_07_2026.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	content := "Matricule,Nom,01/07/2026,\n" +
		",,Présent,Absent\n" +
		"E1,Dupont,x,\n"
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	request := httptest.NewRequest(http.MethodPost, "/import", body)
	request.Header.Set("Content-Type", writer.FormDataContentType())

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303 (body: %s)", recorder.Code, recorder.Body.String())
	}
	location, err := url.Parse(recorder.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse redirect location: %v", err)
	}
	if location.Query().Get("err") != "" {
		t.Fatalf("import failed: %s", location.Query().Get("err"))
	}

	summaries, err := store.Recap(time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("recap: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Totals[roster.Present] != 1 {
		t.Fatalf("unexpected recap after upload: %+v", summaries)
	}
}

func TestImport_RejectsUnsupportedExtension(t *testing.T) {
	t.Parallel()

	handler, _ := newTestServer(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "notes.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("hello")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	request := httptest.NewRequest(http.MethodPost, "/import", body)
	request.Header.Set("Content-Type", writer.FormDataContentType())

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", recorder.Code)
	}
	location, _ := url.Parse(recorder.Header().Get("Location"))
	if location.Query().Get("err") == "" {
		t.Fatal("expected error message in redirect")
	}
}

func TestExport_EmptyStoreRedirectsWithError(t *testing.T) {
	t.Parallel()

	handler, _ := newTestServer(t)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/export", nil))

	if recorder.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", recorder.Code)
	}
	location, _ := url.Parse(recorder.Header().Get("Location"))
	if location.Query().Get("err") == "" {
		t.Fatal("expected error message in redirect")
	}
}

func TestExport_ReturnsWorkbook(t *testing.T) {
	t.Parallel()

	handler, store := newTestServer(t)

	tx, err := store.BeginImport()
	if err != nil {
		t.Fatalf("begin import: %v", err)
	}
	employee, err := tx.CreateEmployee("E1")
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}
	var flags roster.Flags
	flags[roster.Present] = true
	date := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.Local)
	if err := tx.UpsertAttendance(employee.ID, date, flags, roster.MergeOr); err != nil {
		t.Fatalf("upsert attendance: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/export", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
	contentType := recorder.Header().Get("Content-Type")
	if !strings.Contains(contentType, "spreadsheetml") {
		t.Fatalf("unexpected content type %q", contentType)
	}
	if recorder.Body.Len() == 0 {
		t.Fatal("expected workbook bytes in response")
	}
}
