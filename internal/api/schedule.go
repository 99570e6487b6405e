package api

import (
	"net/http"
	"strconv"

	"github.com/sheikh-saqib/tripsync/internal/models"
	"github.com/sheikh-saqib/tripsync/internal/schedule"
)

type scheduleItemView struct {
	models.ScheduleItem
	Status     schedule.Status `json:"status"`
	Note       string          `json:"note,omitempty"`
	NoteHeight string          `json:"note_height,omitempty"`
}

type dayView struct {
	Day   string             `json:"day"`
	Items []scheduleItemView `json:"items"`
}

func (s *Server) getSchedule(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	today := s.app.Defaults.TripDay(now)
	planner := s.app.Planner

	days := planner.Days()
	out := make([]dayView, len(days))
	for d, day := range days {
		items := make([]scheduleItemView, len(day.Items))
		for i, it := range day.Items {
			items[i] = scheduleItemView{
				ScheduleItem: it,
				Status:       schedule.ItemStatus(d, today, it.Time, now),
				Note:         planner.Note(it.ID),
				NoteHeight:   planner.NoteHeight(it.ID),
			}
		}
		out[d] = dayView{Day: day.Day, Items: items}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) saveScheduleItem(w http.ResponseWriter, r *http.Request) {
	day, err := dayParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req struct {
		Item     models.ScheduleItem `json:"item"`
		InsertAt *int                `json:"insert_at"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	at := -1
	if req.InsertAt != nil {
		at = *req.InsertAt
	}
	item, err := s.app.Planner.SaveItem(day, req.Item, at)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) deleteScheduleItem(w http.ResponseWriter, r *http.Request) {
	day, err := dayParam(r)
	if err == nil {
		err = s.app.Planner.DeleteItem(day, r.PathValue("id"))
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) moveScheduleItem(w http.ResponseWriter, r *http.Request) {
	day, err := dayParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req struct {
		To string `json:"to"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.app.Planner.MoveItem(day, r.PathValue("id"), req.To); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setPhotos(w http.ResponseWriter, r *http.Request) {
	day, err := dayParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req struct {
		Images []string `json:"images"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.app.Planner.SetPhotos(day, r.PathValue("id"), req.Images); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text   *string `json:"text"`
		Height *string `json:"height"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	id := r.PathValue("id")
	if req.Text != nil {
		s.app.Planner.SetNote(id, *req.Text)
	}
	if req.Height != nil {
		s.app.Planner.SetNoteHeight(id, *req.Height)
	}
	w.WriteHeader(http.StatusNoContent)
}

func dayParam(r *http.Request) (int, error) {
	day, err := strconv.Atoi(r.PathValue("day"))
	if err != nil {
		return 0, &models.ValidationError{Field: "day", Reason: "must be a day index"}
	}
	return day, nil
}
