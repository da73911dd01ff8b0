package fixture

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/telecomplus/contratos/internal/models"
)

func (s *Server) handleListContratos(w http.ResponseWriter, r *http.Request) {
	estado := r.URL.Query().Get("estado")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, pagination := s.storage.ListContratos(userID(r), estado, page, limit)
	ok(w, r, map[string]any{
		"contracts":  items,
		"pagination": pagination,
	})
}

func (s *Server) handleGetContrato(w http.ResponseWriter, r *http.Request) {
	populate := r.URL.Query().Get("populate") == "servicios"
	c, err := s.storage.ContratoByID(chi.URLParam(r, "id"), populate)
	if err != nil {
		fail(w, r, http.StatusNotFound, ErrContratoNotFound.Error())
		return
	}
	if c.UsuarioID != userID(r) {
		fail(w, r, http.StatusNotFound, ErrContratoNotFound.Error())
		return
	}
	ok(w, r, c)
}

func (s *Server) handleCreateContrato(w http.ResponseWriter, r *http.Request) {
	var req models.CreateContratoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}
	if errs := s.fieldErrors(req); len(errs) > 0 {
		fail(w, r, http.StatusUnprocessableEntity, "datos inválidos", errs...)
		return
	}
	if errs := contratoDateErrors(req.FechaInicio, req.FechaFin); len(errs) > 0 {
		fail(w, r, http.StatusUnprocessableEntity, "datos inválidos", errs...)
		return
	}

	c, err := s.storage.CreateContrato(userID(r), req)
	if errors.Is(err, ErrServicioDesconocido) {
		fail(w, r, http.StatusUnprocessableEntity, ErrServicioDesconocido.Error())
		return
	}
	if err != nil {
		fail(w, r, http.StatusInternalServerError, "error interno")
		return
	}
	ok(w, r, c)
}

func (s *Server) handleUpdateContrato(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.ownsContrato(r, id) {
		fail(w, r, http.StatusNotFound, ErrContratoNotFound.Error())
		return
	}
	var req models.UpdateContratoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}
	if errs := s.fieldErrors(req); len(errs) > 0 {
		fail(w, r, http.StatusUnprocessableEntity, "datos inválidos", errs...)
		return
	}

	c, err := s.storage.UpdateContrato(id, req)
	if errors.Is(err, ErrServicioDesconocido) {
		fail(w, r, http.StatusUnprocessableEntity, ErrServicioDesconocido.Error())
		return
	}
	if err != nil {
		fail(w, r, http.StatusNotFound, ErrContratoNotFound.Error())
		return
	}
	ok(w, r, c)
}

func (s *Server) handleDeleteContrato(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.ownsContrato(r, id) {
		fail(w, r, http.StatusNotFound, ErrContratoNotFound.Error())
		return
	}
	if err := s.storage.DeleteContrato(id); err != nil {
		fail(w, r, http.StatusNotFound, ErrContratoNotFound.Error())
		return
	}
	ok(w, r, map[string]any{"message": "contrato eliminado"})
}

func (s *Server) handleContratoStats(w http.ResponseWriter, r *http.Request) {
	ok(w, r, s.storage.Stats(userID(r)))
}

func (s *Server) ownsContrato(r *http.Request, id string) bool {
	c, err := s.storage.ContratoByID(id, false)
	return err == nil && c.UsuarioID == userID(r)
}

// contratoDateErrors mirrors the server-side date rules: ISO dates and a
// strictly later end date.
func contratoDateErrors(inicio, fin string) []models.FieldError {
	start, err1 := parseFecha(inicio)
	end, err2 := parseFecha(fin)
	var errs []models.FieldError
	if err1 != nil {
		errs = append(errs, models.FieldError{Field: "FechaInicio", Message: "la fecha de inicio debe tener formato ISO-8601"})
	}
	if err2 != nil {
		errs = append(errs, models.FieldError{Field: "FechaFin", Message: "la fecha de fin debe tener formato ISO-8601"})
	}
	if err1 == nil && err2 == nil && !end.After(start) {
		errs = append(errs, models.FieldError{Field: "FechaFin", Message: "la fecha de fin debe ser posterior a la fecha de inicio"})
	}
	return errs
}

func parseFecha(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
