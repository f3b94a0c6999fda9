package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/analytics"
	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/report"
	"github.com/MK-Dev-Coder/BUSINESS-INTELLIGENCE-Project/internal/warehouse"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// Server is the HTTP server for the warehouse dashboard.
type Server struct {
	db        *warehouse.DB
	analytics *analytics.Analytics
	reports   *report.Generator
	pages     map[string]*template.Template
	mux       *http.ServeMux
}

// New creates a new Server over an open warehouse.
func New(db *warehouse.DB) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// For each page template, clone the base and parse the page into the clone.
	// This gives each page its own {{define "content"}} and {{define "title"}}.
	pageNames := []string{"index.html", "report.html", "breed.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	a := analytics.New(db)
	s := &Server{
		db:        db,
		analytics: a,
		reports:   report.New(a),
		pages:     pages,
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	// Static files
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Routes
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/report", s.handleReport)
	s.mux.HandleFunc("/breed", s.handleBreed)
	s.mux.HandleFunc("/health", s.handleHealth)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	summary, err := s.analytics.Summary()
	if err != nil {
		log.Printf("Error loading summary: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	outcomes, _ := s.analytics.TopOutcomes(10)
	ingredients, _ := s.analytics.DangerousIngredients(10)
	geos, _ := s.analytics.GeographicDistribution()
	if len(geos) > 10 {
		geos = geos[:10]
	}
	weights, _ := s.analytics.WeightReactionCorrelation()

	s.render(w, "index.html", map[string]any{
		"Summary":     summary,
		"Outcomes":    outcomes,
		"Ingredients": ingredients,
		"Geos":        geos,
		"Weights":     weights,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	summary, err := s.reports.ExecutiveSummary()
	if err != nil {
		log.Printf("Error generating report: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "report.html", map[string]any{
		"Markdown": summary,
	})
}

func (s *Server) handleBreed(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	species := strings.TrimSpace(r.URL.Query().Get("species"))
	if name == "" || species == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	profile, err := s.analytics.BreedRiskProfile(name, species)
	if err != nil {
		log.Printf("Error building breed profile: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "breed.html", map[string]any{
		"Profile": profile,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.Stats()
	if err != nil {
		http.Error(w, "unhealthy", http.StatusInternalServerError)
		return
	}
	fmt.Fprintf(w, "ok: %d events\n", stats.Events)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(db *warehouse.DB, port int) error {
	srv, err := New(db)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
