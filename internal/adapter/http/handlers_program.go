package adapthttp

import (
	"fmt"
	"net/http"
	"strconv"

	"liftlog/internal/app"
	"liftlog/internal/domain"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleProgram(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, trackerFrom(r).Program())
}

func (s *Server) handleEditMode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	t := trackerFrom(r)
	t.SetEditMode(body.Enabled)
	writeJSON(w, http.StatusOK, t.Program())
}

func (s *Server) handleStartEditing(w http.ResponseWriter, r *http.Request) {
	e, err := trackerFrom(r).StartEditing(domain.DayType(chi.URLParam(r, "day")))
	writeEditing(w, e, err)
}

func (s *Server) handleUpdateEditingDay(w http.ResponseWriter, r *http.Request) {
	var body fieldUpdate
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	e, err := trackerFrom(r).UpdateEditingDay(body.Field, body.Value)
	writeEditing(w, e, err)
}

func (s *Server) handleCancelEditing(w http.ResponseWriter, r *http.Request) {
	t := trackerFrom(r)
	t.CancelEditing()
	writeJSON(w, http.StatusOK, t.Program())
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	e, err := trackerFrom(r).AddExercise()
	writeEditing(w, e, err)
}

func (s *Server) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var body fieldUpdate
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	e, err := trackerFrom(r).UpdateExercise(index, body.Field, body.Value)
	writeEditing(w, e, err)
}

func (s *Server) handleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	e, err := trackerFrom(r).RemoveExercise(index)
	writeEditing(w, e, err)
}

func (s *Server) handleSaveProgram(w http.ResponseWriter, r *http.Request) {
	t := trackerFrom(r)
	if err := t.SaveEditedDay(r.Context()); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, t.Program())
}

func writeEditing(w http.ResponseWriter, e app.EditingDay, err error) {
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func indexParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid exercise index %q", raw)
	}
	return n, nil
}
