package adapthttp

import (
	"errors"
	"net/http"
	"time"

	"liftlog/internal/app"
	"liftlog/internal/domain"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	t := trackerFrom(r)
	q := r.URL.Query()
	if q.Get("year") == "" && q.Get("month") == "" {
		writeJSON(w, http.StatusOK, t.Calendar())
		return
	}

	now := time.Now().In(t.Location())
	year, err := intQuery(r, "year", now.Year())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	month, err := intQuery(r, "month", int(now.Month()))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, errors.New("month must be 1-12"))
		return
	}
	writeJSON(w, http.StatusOK, t.ShowMonth(year, time.Month(month)))
}

func (s *Server) handleCalendarShift(w http.ResponseWriter, r *http.Request) {
	delta, err := intQuery(r, "delta", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, trackerFrom(r).ShiftMonth(delta))
}

func (s *Server) handleWorkouts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": trackerFrom(r).Workouts()})
}

func (s *Server) handleOpenDay(w http.ResponseWriter, r *http.Request) {
	t := trackerFrom(r)
	date, err := domain.ParseDateKey(chi.URLParam(r, "date"), t.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	d, err := t.OpenDay(date)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := trackerFrom(r).Draft()
	if !ok {
		writeError(w, http.StatusConflict, domain.ErrNoDraft)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleCloseDraft(w http.ResponseWriter, r *http.Request) {
	trackerFrom(r).CloseDraft()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleSetWeight(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Exercise int    `json:"exercise"`
		Set      int    `json:"set"`
		Value    string `json:"value"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	d, err := trackerFrom(r).SetWeight(body.Exercise, body.Set, body.Value)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type fieldUpdate struct {
	Field app.Field `json:"field"`
	Value string    `json:"value"`
}

func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	var body fieldUpdate
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	d, err := trackerFrom(r).UpdateDraft(body.Field, body.Value)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	if err := trackerFrom(r).SaveDraft(r.Context()); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	confirmed := r.URL.Query().Get("confirm") == "true"
	deleted, err := trackerFrom(r).DeleteDraft(r.Context(), confirmed)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": deleted})
}
