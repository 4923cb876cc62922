package webserver

import (
	"io"
	"net/http"

	"gemchat/internal/attachment"
)

func (s *Server) handleInbox(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	sessions := s.controller.Store().Sessions()
	currentID := s.controller.Store().CurrentID()

	views := make([]SessionViewModel, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, s.sessionView(session, session.ID == currentID, false))
	}

	data := PageData{
		Title:    "Sessions",
		Sessions: views,
		Model:    s.model,
	}
	if err := s.tmpl.ExecuteTemplate(w, "base", data); err != nil {
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, ok := s.controller.Store().Get(sessionID)
	if !ok {
		http.NotFound(w, r)
		return
	}

	view := s.sessionView(session, true, true)
	data := PageData{
		Title:   session.Title,
		Session: &view,
		Model:   s.model,
	}
	if err := s.tmpl.ExecuteTemplate(w, "base", data); err != nil {
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	session := s.controller.NewSession()
	http.Redirect(w, r, "/session/"+session.ID, http.StatusSeeOther)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	s.controller.DeleteSession(sessionID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	s.controller.RenameSession(sessionID, r.FormValue("title"))
	http.Redirect(w, r, "/session/"+sessionID, http.StatusSeeOther)
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request, sessionID string) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxRequestBytes)
	if err := r.ParseMultipartForm(s.maxRequestBytes); err != nil {
		http.Error(w, "Request too large", http.StatusRequestEntityTooLarge)
		return
	}

	var files []*attachment.File
	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		content, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, "Failed to read file", http.StatusBadRequest)
			return
		}
		files = append(files, &attachment.File{
			Name:      header.Filename,
			MediaType: header.Header.Get("Content-Type"),
			Content:   content,
		})
	}

	if err := s.controller.Send(r.Context(), sessionID, r.FormValue("content"), files); err != nil {
		log.Error("sending message", "session", sessionID, "error", err)
	}
	http.Redirect(w, r, "/session/"+sessionID, http.StatusSeeOther)
}
