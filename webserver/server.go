// Package webserver serves a browser interface over the chat
// controller: an inbox of sessions and a per-session conversation page.
package webserver

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"github.com/spf13/cobra"

	"gemchat/chat"
	"gemchat/internal/configuration"
	"gemchat/store"
)

//go:embed templates
var templatesFS embed.FS

// PageData is the root payload handed to every template.
type PageData struct {
	Title    string
	Sessions []SessionViewModel
	Session  *SessionViewModel
	Model    string
}

// SessionViewModel flattens a session for template consumption.
type SessionViewModel struct {
	ID            string
	Title         string
	Pending       bool
	Current       bool
	MessageCount  int
	FormattedTime string
	Messages      []MessageViewModel
}

// MessageViewModel flattens a message for template consumption.
type MessageViewModel struct {
	Role          string
	Body          template.HTML
	Error         string
	Files         []string
	FormattedTime string
}

// NewServeCmd instantiates and returns the serve command.
func NewServeCmd(config *configuration.Config, controller *chat.Controller) *cobra.Command {
	var opts struct {
		Port int
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a web interface for chatting",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := &Server{
				controller:      controller,
				model:           config.Model,
				maxRequestBytes: config.MaxRequestBytes,
			}
			return server.Start(opts.Port)
		},
	}

	cmd.Flags().IntVarP(&opts.Port, "port", "p", config.Webserver.Port, "Port to serve on")
	return cmd
}

// Server holds the web interface state.
type Server struct {
	controller      *chat.Controller
	model           string
	maxRequestBytes int64
	tmpl            *template.Template
}

// Start parses the templates, registers the routes and blocks serving.
func (s *Server) Start(port int) error {
	funcMap := sprig.HtmlFuncMap()

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}
	s.tmpl = tmpl

	http.HandleFunc("/", s.handleInbox)
	http.HandleFunc("/session/", s.handleSessionRoutes)
	http.HandleFunc("/session/create", s.handleCreateSession)

	addr := fmt.Sprintf(":%d", port)
	fmt.Printf("Server starting on http://localhost%s\n", addr)
	return http.ListenAndServe(addr, nil)
}

func (s *Server) handleSessionRoutes(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 {
		http.NotFound(w, r)
		return
	}

	sessionID := parts[1]

	switch {
	case r.Method == http.MethodGet && len(parts) == 2:
		s.handleSession(w, r, sessionID)
	case r.Method == http.MethodPost && len(parts) == 3 && parts[2] == "send":
		s.handleSend(w, r, sessionID)
	case r.Method == http.MethodPost && len(parts) == 3 && parts[2] == "rename":
		s.handleRename(w, r, sessionID)
	case r.Method == http.MethodPost && len(parts) == 3 && parts[2] == "delete":
		s.handleDeleteSession(w, r, sessionID)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) sessionView(session *store.Session, current bool, withMessages bool) SessionViewModel {
	view := SessionViewModel{
		ID:            session.ID,
		Title:         session.Title,
		Pending:       session.Pending,
		Current:       current,
		MessageCount:  len(session.Messages),
		FormattedTime: session.CreatedAt.Format("Jan 2, 2006 3:04 PM"),
	}
	if !withMessages {
		return view
	}
	for _, message := range session.Messages {
		messageView := MessageViewModel{
			Role:          string(message.Role),
			Error:         message.Error,
			FormattedTime: message.Timestamp.Format("3:04 PM"),
		}
		if !message.IsError() {
			messageView.Body = formatMessage(message.Content)
		}
		for _, descriptor := range message.Files {
			messageView.Files = append(messageView.Files, descriptor.Name)
		}
		view.Messages = append(view.Messages, messageView)
	}
	return view
}
