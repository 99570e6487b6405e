package api

import "net/http"

type memberRequest struct {
	Name string `json:"name"`
}

func (s *Server) listSquad(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Ledger.Roster())
}

func (s *Server) addMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.app.Ledger.AddParticipant(req.Name))
}

func (s *Server) loadDefaultSquad(w http.ResponseWriter, r *http.Request) {
	loaded := s.app.Ledger.LoadDefaultRoster(s.app.Defaults.Roster)
	writeJSON(w, http.StatusOK, map[string]bool{"loaded": loaded})
}

func (s *Server) renameMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.app.Ledger.RenameParticipant(r.PathValue("id"), req.Name); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) removeMember(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Ledger.RemoveParticipant(r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
