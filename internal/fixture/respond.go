package fixture

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/telecomplus/contratos/internal/models"
)

// response is the envelope convention of the real backend:
// { success, data, message?, errors? }.
type response struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  []models.FieldError `json:"errors,omitempty"`
}

func ok(w http.ResponseWriter, r *http.Request, data any) {
	render.JSON(w, r, response{Success: true, Data: data})
}

func fail(w http.ResponseWriter, r *http.Request, status int, message string, errs ...models.FieldError) {
	render.Status(r, status)
	render.JSON(w, r, response{Success: false, Message: message, Errors: errs})
}
