// Package web serves a localhost-only single-user UI; it intentionally has no
// auth/CSRF protection in this mode.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pointage/config"
	"pointage/importer"
	"pointage/internal/timeutil"
	"pointage/output"
	"pointage/reconcile"
	"pointage/roster"
	"pointage/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

// Accepted upload extensions, matching the import readers.
var uploadExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xls":  true,
	".csv":  true,
}

type Server struct {
	store  *storage.SQLiteStore
	cfg    config.Config
	policy roster.MergePolicy
	order  importer.DateOrder
	mux    *http.ServeMux
}

type recapRowView struct {
	Matricule string
	Nom       string
	Prenom    string
	Poste     string
	Site      string
	Affaire   string
	Totals    [roster.FlagCount]int
}

type indexPageView struct {
	Title      string
	Start      string
	End        string
	Rows       []recapRowView
	FlagLabels []string
	Message    string
	Error      string
	ExportLink string
}

func NewServer(store *storage.SQLiteStore, cfg config.Config) (http.Handler, error) {
	policy, err := roster.ParseMergePolicy(cfg.Import.MergePolicy)
	if err != nil {
		return nil, err
	}
	order, err := importer.ParseDateOrder(cfg.Import.DateOrder)
	if err != nil {
		return nil, err
	}

	server := &Server{
		store:  store,
		cfg:    cfg,
		policy: policy,
		order:  order,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", server.handleIndex)
	mux.HandleFunc("POST /import", server.handleImport)
	mux.HandleFunc("GET /export", server.handleExport)
	server.mux = mux

	return server, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	start, end, err := parseRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	summaries, err := s.store.Recap(start, end)
	if err != nil {
		http.Error(w, fmt.Sprintf("load recap: %v", err), http.StatusInternalServerError)
		return
	}

	rows := make([]recapRowView, 0, len(summaries))
	for _, summary := range summaries {
		rows = append(rows, recapRowView{
			Matricule: summary.Employee.Matricule,
			Nom:       summary.Employee.Nom,
			Prenom:    summary.Employee.Prenom,
			Poste:     summary.Employee.Poste,
			Site:      summary.Employee.Site,
			Affaire:   summary.Employee.Affaire,
			Totals:    summary.Totals,
		})
	}

	labels := make([]string, 0, roster.FlagCount)
	for _, flag := range roster.AllFlags() {
		labels = append(labels, flag.Label())
	}

	view := indexPageView{
		Title:      "pointage",
		Start:      r.URL.Query().Get("start"),
		End:        r.URL.Query().Get("end"),
		Rows:       rows,
		FlagLabels: labels,
		Message:    r.URL.Query().Get("msg"),
		Error:      r.URL.Query().Get("err"),
		ExportLink: exportLink(r),
	}
	if err := renderTemplate(w, "index.html", view); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		redirectWithError(w, r, fmt.Sprintf("parse multipart form: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		redirectWithError(w, r, "aucun fichier téléchargé")
		return
	}
	defer file.Close()

	base := filepath.Base(strings.TrimSpace(header.Filename))
	ext := strings.ToLower(filepath.Ext(base))
	if base == "" || base == "." || !uploadExtensions[ext] {
		redirectWithError(w, r, "type de fichier non supporté")
		return
	}

	if err := os.MkdirAll(s.cfg.Upload.Folder, 0o755); err != nil {
		redirectWithError(w, r, fmt.Sprintf("create upload folder: %v", err))
		return
	}
	savePath := filepath.Join(s.cfg.Upload.Folder, base)
	saved, err := os.Create(savePath)
	if err != nil {
		redirectWithError(w, r, fmt.Sprintf("save upload: %v", err))
		return
	}
	if _, err := io.Copy(saved, file); err != nil {
		_ = saved.Close()
		redirectWithError(w, r, fmt.Sprintf("save upload: %v", err))
		return
	}
	if err := saved.Close(); err != nil {
		redirectWithError(w, r, fmt.Sprintf("close upload: %v", err))
		return
	}

	sheet, columns, err := importer.Load(savePath, importer.Options{
		HeaderDepth: s.cfg.Import.HeaderDepth,
		Order:       s.order,
	})
	if err != nil {
		redirectWithError(w, r, err.Error())
		return
	}

	result, err := reconcile.Run(s.store, sheet, columns, reconcile.Options{
		Policy:       s.policy,
		Order:        s.order,
		FallbackDate: importer.DateFromFilename(savePath, time.Now()),
	})
	if err != nil {
		redirectWithError(w, r, err.Error())
		return
	}

	message := fmt.Sprintf("Fichier importé avec succès. Enregistrements traités : %d", result.FactsProcessed)
	http.Redirect(w, r, "/?msg="+url.QueryEscape(message), http.StatusSeeOther)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	facts, err := s.store.ListFacts(start, end)
	if err != nil {
		http.Error(w, fmt.Sprintf("load attendances: %v", err), http.StatusInternalServerError)
		return
	}
	if len(facts) == 0 {
		redirectWithError(w, r, "aucune donnée à exporter")
		return
	}

	summaries, err := s.store.Recap(start, end)
	if err != nil {
		http.Error(w, fmt.Sprintf("load recap: %v", err), http.StatusInternalServerError)
		return
	}
	employees, err := s.store.ListEmployees()
	if err != nil {
		http.Error(w, fmt.Sprintf("load employees: %v", err), http.StatusInternalServerError)
		return
	}

	calendar := output.BuildCalendar(employees, facts, start, end)
	workbook, err := output.BuildWorkbook(facts, summaries, calendar)
	if err != nil {
		http.Error(w, fmt.Sprintf("build workbook: %v", err), http.StatusInternalServerError)
		return
	}
	defer workbook.Close()

	name := fmt.Sprintf("recap_%s.xlsx", time.Now().Format("20060102150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := workbook.Write(w); err != nil {
		// Headers are already sent; nothing left to report to the client.
		return
	}
}

func parseRange(r *http.Request) (time.Time, time.Time, error) {
	start, err := parseOptionalDate(r.URL.Query().Get("start"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date (expected YYYY-MM-DD)")
	}
	end, err := parseOptionalDate(r.URL.Query().Get("end"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date (expected YYYY-MM-DD)")
	}
	return start, end, nil
}

func parseOptionalDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", trimmed, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return timeutil.StartOfDay(parsed), nil
}

func exportLink(r *http.Request) string {
	values := url.Values{}
	if start := r.URL.Query().Get("start"); start != "" {
		values.Set("start", start)
	}
	if end := r.URL.Query().Get("end"); end != "" {
		values.Set("end", end)
	}
	link := "/export"
	if encoded := values.Encode(); encoded != "" {
		link += "?" + encoded
	}
	return link
}

func redirectWithError(w http.ResponseWriter, r *http.Request, message string) {
	http.Redirect(w, r, "/?err="+url.QueryEscape(message), http.StatusSeeOther)
}

func renderTemplate(w http.ResponseWriter, pageTemplate string, data any) error {
	tmpl, err := template.ParseFS(templateFS, "templates/"+pageTemplate)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", pageTemplate, err)
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render template %s: %w", pageTemplate, err)
	}
	return nil
}
