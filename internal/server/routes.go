package server

import (
	"net/http"

	"github.com/emrhub/emr/internal/server/response"
)

// Page bodies.
const (
	HomeMessage    = "Welcome to the Home Page of EMR"
	PatientMessage = "Welcome to the Patient Page"
)

// Route is one entry of the static route table.
type Route struct {
	Method      string `json:"method" yaml:"method"`
	Path        string `json:"path" yaml:"path"`
	Status      int    `json:"status" yaml:"status"`
	ContentType string `json:"content_type" yaml:"content_type"`
	Body        string `json:"body" yaml:"body"`
}

// Routes returns the route table served by every Server.
func Routes() []Route {
	return []Route{
		{
			Method:      http.MethodGet,
			Path:        "/",
			Status:      http.StatusOK,
			ContentType: response.ContentTypeHTML,
			Body:        HomeMessage,
		},
		{
			Method:      http.MethodGet,
			Path:        "/patient",
			Status:      http.StatusOK,
			ContentType: response.ContentTypeHTML,
			Body:        PatientMessage,
		},
	}
}

// Pattern returns the ServeMux pattern for the route. The root path matches
// only "/" itself, not every unmatched path.
func (r Route) Pattern() string {
	if r.Path == "/" {
		return r.Method + " /{$}"
	}
	return r.Method + " " + r.Path
}

// Handler returns a handler writing the route's fixed response.
func (r Route) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		response.Page(w, r.Status, r.Body)
	}
}
