package models

// CreateContratoRequest is the payload for creating a contract. The contract
// number pattern and the date ordering rule are checked by the contract
// service before the request leaves the process.
type CreateContratoRequest struct {
	Numero       string   `json:"numero" validate:"required,min=3,max=20"`
	FechaInicio  string   `json:"fechaInicio" validate:"required"`
	FechaFin     string   `json:"fechaFin" validate:"required"`
	Estado       string   `json:"estado" validate:"required,oneof=Activo Inactivo Suspendido Cancelado"`
	ServiciosIDs []string `json:"servicios_ids" validate:"required,min=1"`
}

// UpdateContratoRequest is a partial contract update; nil fields are left
// untouched server-side.
type UpdateContratoRequest struct {
	Numero       *string  `json:"numero,omitempty" validate:"omitempty,min=3,max=20"`
	FechaInicio  *string  `json:"fechaInicio,omitempty"`
	FechaFin     *string  `json:"fechaFin,omitempty"`
	Estado       *string  `json:"estado,omitempty" validate:"omitempty,oneof=Activo Inactivo Suspendido Cancelado"`
	ServiciosIDs []string `json:"servicios_ids,omitempty" validate:"omitempty,min=1"`
}

// CreateServicioRequest is the payload for creating a catalog service.
type CreateServicioRequest struct {
	Nombre      string  `json:"nombre" validate:"required,min=2,max=100"`
	Descripcion string  `json:"descripcion" validate:"required,min=10,max=500"`
	Precio      float64 `json:"precio" validate:"gte=0"`
	Tipo        string  `json:"tipo" validate:"required,oneof=Internet Television"`
}

// UpdateServicioRequest is a partial catalog service update.
type UpdateServicioRequest struct {
	Nombre      *string  `json:"nombre,omitempty" validate:"omitempty,min=2,max=100"`
	Descripcion *string  `json:"descripcion,omitempty" validate:"omitempty,min=10,max=500"`
	Precio      *float64 `json:"precio,omitempty" validate:"omitempty,gte=0"`
	Tipo        *string  `json:"tipo,omitempty" validate:"omitempty,oneof=Internet Television"`
}

// LoginRequest carries the credentials exchanged for a token.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterRequest carries the fields of a new account.
type RegisterRequest struct {
	Nombre   string `json:"nombre" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// UpdateProfileRequest updates the current user's name and email.
type UpdateProfileRequest struct {
	Nombre *string `json:"nombre,omitempty" validate:"omitempty,min=2,max=100"`
	Email  *string `json:"email,omitempty" validate:"omitempty,email"`
}

// ChangePasswordRequest changes the current user's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}
