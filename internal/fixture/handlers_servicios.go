package fixture

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/telecomplus/contratos/internal/models"
)

func (s *Server) handleListServicios(w http.ResponseWriter, r *http.Request) {
	tipo := r.URL.Query().Get("tipo")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, pagination := s.storage.ListServicios(tipo, page, limit)
	ok(w, r, map[string]any{
		"services":   items,
		"pagination": pagination,
	})
}

func (s *Server) handleGetServicio(w http.ResponseWriter, r *http.Request) {
	sv, err := s.storage.ServicioByID(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, http.StatusNotFound, ErrServicioNotFound.Error())
		return
	}
	ok(w, r, sv)
}

func (s *Server) handleCreateServicio(w http.ResponseWriter, r *http.Request) {
	var req models.CreateServicioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}
	if errs := s.fieldErrors(req); len(errs) > 0 {
		fail(w, r, http.StatusUnprocessableEntity, "datos inválidos", errs...)
		return
	}

	sv, err := s.storage.CreateServicio(req)
	if errors.Is(err, ErrDuplicateNombre) {
		fail(w, r, http.StatusConflict, ErrDuplicateNombre.Error())
		return
	}
	if err != nil {
		fail(w, r, http.StatusInternalServerError, "error interno")
		return
	}
	ok(w, r, sv)
}

func (s *Server) handleUpdateServicio(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateServicioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}
	if errs := s.fieldErrors(req); len(errs) > 0 {
		fail(w, r, http.StatusUnprocessableEntity, "datos inválidos", errs...)
		return
	}

	sv, err := s.storage.UpdateServicio(chi.URLParam(r, "id"), req)
	if errors.Is(err, ErrDuplicateNombre) {
		fail(w, r, http.StatusConflict, ErrDuplicateNombre.Error())
		return
	}
	if err != nil {
		fail(w, r, http.StatusNotFound, ErrServicioNotFound.Error())
		return
	}
	ok(w, r, sv)
}

func (s *Server) handleDeleteServicio(w http.ResponseWriter, r *http.Request) {
	err := s.storage.DeleteServicio(chi.URLParam(r, "id"))
	if errors.Is(err, ErrServicioEnUso) {
		fail(w, r, http.StatusConflict, ErrServicioEnUso.Error())
		return
	}
	if err != nil {
		fail(w, r, http.StatusNotFound, ErrServicioNotFound.Error())
		return
	}
	ok(w, r, map[string]any{"message": "servicio eliminado"})
}
