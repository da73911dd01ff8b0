package fixture

import "errors"

var (
	// ErrEmailTaken means a registration reused an existing email.
	ErrEmailTaken = errors.New("el email ya está registrado")
	// ErrInvalidCredentials means login with a wrong email or password.
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	// ErrUserNotFound means no user exists for the id.
	ErrUserNotFound = errors.New("usuario no encontrado")

	// ErrServicioNotFound means no catalog service exists for the id.
	ErrServicioNotFound = errors.New("servicio no encontrado")
	// ErrDuplicateNombre means a catalog service name is already in use.
	ErrDuplicateNombre = errors.New("ya existe un servicio con ese nombre")
	// ErrServicioEnUso rejects deleting a service referenced by a contract.
	ErrServicioEnUso = errors.New("el servicio está referenciado por un contrato existente")

	// ErrContratoNotFound means no contract exists for the id.
	ErrContratoNotFound = errors.New("contrato no encontrado")
	// ErrServicioDesconocido rejects a contract referencing a missing service.
	ErrServicioDesconocido = errors.New("uno de los servicios referenciados no existe")
)
