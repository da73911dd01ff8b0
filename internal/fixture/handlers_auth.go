package fixture

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator"

	"github.com/telecomplus/contratos/internal/lib/password"
	"github.com/telecomplus/contratos/internal/lib/sl"
	"github.com/telecomplus/contratos/internal/models"
	"github.com/telecomplus/contratos/internal/services/validate"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}
	if errs := s.fieldErrors(req); len(errs) > 0 {
		fail(w, r, http.StatusUnprocessableEntity, "datos inválidos", errs...)
		return
	}

	hash, err := password.GetHash(req.Password)
	if err != nil {
		s.log.Error("failed to hash password", sl.Err(err))
		fail(w, r, http.StatusInternalServerError, "error interno")
		return
	}
	u, err := s.storage.CreateUser(req.Nombre, req.Email, hash)
	if errors.Is(err, ErrEmailTaken) {
		fail(w, r, http.StatusConflict, ErrEmailTaken.Error())
		return
	}
	if err != nil {
		fail(w, r, http.StatusInternalServerError, "error interno")
		return
	}
	s.issueSession(w, r, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}
	if errs := s.fieldErrors(req); len(errs) > 0 {
		fail(w, r, http.StatusUnprocessableEntity, "datos inválidos", errs...)
		return
	}

	u, err := s.storage.UserByEmail(req.Email)
	if err != nil {
		fail(w, r, http.StatusUnauthorized, ErrInvalidCredentials.Error())
		return
	}
	if err := password.CompareHash(u.PasswordHash, req.Password); err != nil {
		fail(w, r, http.StatusUnauthorized, ErrInvalidCredentials.Error())
		return
	}
	s.issueSession(w, r, u)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	// Stateless tokens: nothing to revoke in the fixture.
	ok(w, r, map[string]any{"message": "sesión cerrada"})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	u, err := s.storage.UserByID(userID(r))
	if err != nil {
		fail(w, r, http.StatusUnauthorized, "token inválido o expirado")
		return
	}
	ok(w, r, u.Public())
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}
	if errs := s.fieldErrors(req); len(errs) > 0 {
		fail(w, r, http.StatusUnprocessableEntity, "datos inválidos", errs...)
		return
	}

	u, err := s.storage.UpdateUser(userID(r), req.Nombre, req.Email)
	if errors.Is(err, ErrEmailTaken) {
		fail(w, r, http.StatusConflict, ErrEmailTaken.Error())
		return
	}
	if err != nil {
		fail(w, r, http.StatusNotFound, ErrUserNotFound.Error())
		return
	}
	ok(w, r, u.Public())
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req models.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}
	if errs := s.fieldErrors(req); len(errs) > 0 {
		fail(w, r, http.StatusUnprocessableEntity, "datos inválidos", errs...)
		return
	}

	u, err := s.storage.UserByID(userID(r))
	if err != nil {
		fail(w, r, http.StatusUnauthorized, "token inválido o expirado")
		return
	}
	if err := password.CompareHash(u.PasswordHash, req.CurrentPassword); err != nil {
		fail(w, r, http.StatusUnprocessableEntity, "la contraseña actual no es correcta")
		return
	}
	hash, err := password.GetHash(req.NewPassword)
	if err != nil {
		fail(w, r, http.StatusInternalServerError, "error interno")
		return
	}
	if err := s.storage.SetPasswordHash(u.ID, hash); err != nil {
		fail(w, r, http.StatusInternalServerError, "error interno")
		return
	}
	ok(w, r, map[string]any{"message": "contraseña actualizada"})
}

func (s *Server) issueSession(w http.ResponseWriter, r *http.Request, u *User) {
	tok, err := s.maker.Generate(u.ID, u.Email)
	if err != nil {
		s.log.Error("failed to sign token", sl.Err(err))
		fail(w, r, http.StatusInternalServerError, "error interno")
		return
	}
	ok(w, r, map[string]any{
		"token": tok,
		"user":  u.Public(),
	})
}

// fieldErrors runs struct validation and maps violations to envelope field
// errors.
func (s *Server) fieldErrors(req any) []models.FieldError {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []models.FieldError{{Message: "datos inválidos"}}
	}
	fields := validate.Fields(verrs)
	out := make([]models.FieldError, 0, len(fields))
	for _, f := range fields {
		out = append(out, models.FieldError{Field: f.Field, Message: f.Message})
	}
	return out
}
