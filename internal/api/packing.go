package api

import (
	"net/http"

	"github.com/sheikh-saqib/tripsync/internal/models"
)

type packingResponse struct {
	Items []models.PackingItem `json:"items"`
	Done  int                  `json:"done"`
	Total int                  `json:"total"`
}

func (s *Server) listPacking(w http.ResponseWriter, r *http.Request) {
	items := s.app.PackingList.Items()
	if items == nil {
		items = []models.PackingItem{}
	}
	done, total := s.app.PackingList.Progress()
	writeJSON(w, http.StatusOK, packingResponse{Items: items, Done: done, Total: total})
}

func (s *Server) addPackingItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	item, err := s.app.PackingList.Add(req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) togglePackingItem(w http.ResponseWriter, r *http.Request) {
	if err := s.app.PackingList.Toggle(r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deletePackingItem(w http.ResponseWriter, r *http.Request) {
	if err := s.app.PackingList.Delete(r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
