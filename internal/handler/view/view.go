package view

import (
	"net/http"
	"net/url"
	"os"
	"strings"
)

// Query discriminator for the clinician surface.
const (
	ViewParam      = "view"
	ClinicianValue = "psychologist"
	KeyParam       = "key"
)

// FallbackGlyph stands in for a missing or unreadable page icon.
const FallbackGlyph = "🧠"

// State is the surface selected for one request.
type State int

const (
	StatePatient State = iota
	StateClinician
)

func (s State) String() string {
	if s == StateClinician {
		return "clinician"
	}
	return "patient"
}

// Select classifies a request: view=psychologist picks the clinician
// surface, anything else the patient one. Nothing is remembered between requests.
func Select(query url.Values) State {
	if query.Get(ViewParam) == ClinicianValue {
		return StateClinician
	}
	return StatePatient
}

// AccessGate decides whether a supplied key unlocks clinician data.
type AccessGate interface {
	Permit(key string) bool
}

// InsecurePassphraseGate compares the key with a fixed plaintext passphrase.
// It is a demo placeholder, not authentication; swap in a real AccessGate
// before exposing patient data.
type InsecurePassphraseGate struct {
	Passphrase string
}

// Permit reports whether key equals the passphrase. An empty passphrase
// permits nothing.
func (g InsecurePassphraseGate) Permit(key string) bool {
	return g.Passphrase != "" && key == g.Passphrase
}

// PageIcon is the optional image shown as favicon and header logo.
type PageIcon struct {
	Data        []byte
	ContentType string
	Glyph       string
}

// LoadPageIcon reads the icon at path. Anything that is not a readable image
// degrades to FallbackGlyph.
func LoadPageIcon(path string) PageIcon {
	if path == "" {
		return PageIcon{Glyph: FallbackGlyph}
	}

	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return PageIcon{Glyph: FallbackGlyph}
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return PageIcon{Glyph: FallbackGlyph}
	}
	return PageIcon{Data: data, ContentType: contentType}
}

// HasImage reports whether an image was loaded.
func (p PageIcon) HasImage() bool {
	return len(p.Data) > 0
}
