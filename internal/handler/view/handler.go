package view

import (
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/psychai/companion/internal/model/chat"
	"github.com/psychai/companion/internal/model/clinical"
	"github.com/psychai/companion/internal/service/companion"
	clinicalservice "github.com/psychai/companion/internal/service/clinical"
	"github.com/psychai/companion/pkg/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

// Options carries the presentation settings of both surfaces.
type Options struct {
	Gate            AccessGate
	Icon            PageIcon
	ClinicianName   string
	ContactPhone    string
	PatientBadge    string
	RefreshInterval time.Duration
}

// Handler renders the patient and clinician surfaces from shared state.
type Handler struct {
	companion *companion.Service
	opts      Options
	templates *template.Template
	views     map[State]http.Handler
	now       func() time.Time
}

// New parses the embedded templates and builds the handler.
func New(companionSvc *companion.Service, opts Options) (*Handler, error) {
	if opts.Gate == nil {
		return nil, errors.New("view: access gate is required")
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 3 * time.Second
	}

	tmpl, err := template.New("pages").Funcs(template.FuncMap{
		"speaker": func(role chat.Role) string { return role.Label() },
		"barWidth": func(count, max int) int {
			if max <= 0 {
				return 0
			}
			return count * 100 / max
		},
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	h := &Handler{
		companion: companionSvc,
		opts:      opts,
		templates: tmpl,
		now:       time.Now,
	}
	h.views = map[State]http.Handler{
		StatePatient:   http.HandlerFunc(h.renderPatient),
		StateClinician: http.HandlerFunc(h.renderClinician),
	}
	return h, nil
}

// RegisterRoutes mounts the page routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Post("/chat", h.handlePostMessage)
	r.Post("/chat/new", h.handleNewChat)
	r.Get("/report.csv", h.handleReport)
	r.Get("/favicon", h.handleFavicon)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.views[Select(r.URL.Query())].ServeHTTP(w, r)
}

type patientPage struct {
	Icon          PageIcon
	Badge         string
	ClinicianName string
	ContactPhone  string
	Messages      []chat.Message
	Summaries     []chat.SessionSummary
	HasRecords    bool
}

func (h *Handler) renderPatient(w http.ResponseWriter, r *http.Request) {
	snapshot := h.companion.Snapshot(r.Context())
	h.render(w, "patient.html", patientPage{
		Icon:          h.opts.Icon,
		Badge:         h.opts.PatientBadge,
		ClinicianName: h.opts.ClinicianName,
		ContactPhone:  h.opts.ContactPhone,
		Messages:      snapshot.Messages,
		Summaries:     snapshot.RecentSummaries,
		HasRecords:    len(snapshot.Records) > 0,
	})
}

type clinicianPage struct {
	Icon           PageIcon
	ClinicianName  string
	Key            string
	KeyProvided    bool
	Granted        bool
	RefreshSeconds int
	Snapshot       companion.Snapshot
	SymptomRecords []clinical.Record
	Summaries      []chat.SessionSummary
	Escalations    []clinical.EscalationEvent
	MaxMoodCount   int
}

func (h *Handler) renderClinician(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get(KeyParam)
	page := clinicianPage{
		Icon:           h.opts.Icon,
		ClinicianName:  h.opts.ClinicianName,
		Key:            key,
		KeyProvided:    key != "",
		Granted:        h.opts.Gate.Permit(key),
		RefreshSeconds: int(h.opts.RefreshInterval / time.Second),
	}

	if page.Granted {
		snapshot := h.companion.Snapshot(r.Context())
		page.Snapshot = snapshot
		page.SymptomRecords = snapshot.SymptomRecords()
		page.Summaries = snapshot.Summaries
		page.Escalations = reverseEscalations(snapshot.Escalations)
		for _, mood := range snapshot.MoodFrequency {
			if mood.Count > page.MaxMoodCount {
				page.MaxMoodCount = mood.Count
			}
		}
	}

	h.render(w, "clinician.html", page)
}

func (h *Handler) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	_, err := h.companion.HandlePatientMessage(r.Context(), r.PostFormValue("message"))
	if err != nil && !errors.Is(err, companion.ErrEmptyMessage) {
		log.Printf("[view] failed to handle patient message: %v", err)
		http.Error(w, "failed to handle message", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleNewChat(w http.ResponseWriter, r *http.Request) {
	h.companion.StartNewSession(r.Context())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	data, err := h.companion.ExportReport(r.Context())
	if err != nil {
		log.Printf("[view] failed to export report: %v", err)
		http.Error(w, "failed to export report", http.StatusInternalServerError)
		return
	}
	utils.RespondAttachment(w, clinicalservice.ReportFilename(h.now()), "text/csv; charset=utf-8", data)
}

func (h *Handler) handleFavicon(w http.ResponseWriter, r *http.Request) {
	if !h.opts.Icon.HasImage() {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", h.opts.Icon.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(h.opts.Icon.Data)
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("[view] failed to render %s: %v", name, err)
	}
}

func reverseEscalations(events []clinical.EscalationEvent) []clinical.EscalationEvent {
	reversed := make([]clinical.EscalationEvent, len(events))
	for i, event := range events {
		reversed[len(events)-1-i] = event
	}
	return reversed
}
