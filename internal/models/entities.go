// Package models contains the domain structures of the Telecom Plus
// contract manager: users, catalog services, contracts and the pagination
// and stats metadata attached to list responses.
package models

import (
	"encoding/json"
	"time"
)

// Contract states accepted by the backend.
const (
	EstadoActivo     = "Activo"
	EstadoInactivo   = "Inactivo"
	EstadoSuspendido = "Suspendido"
	EstadoCancelado  = "Cancelado"
)

// Catalog service types.
const (
	TipoInternet   = "Internet"
	TipoTelevision = "Television"
)

// Usuario is a registered user. The backend identifies users under either
// "_id" or "id" depending on the endpoint; Normalized maps both onto ID.
type Usuario struct {
	ID        string `json:"id,omitempty"`
	LegacyID  string `json:"_id,omitempty"`
	Nombre    string `json:"nombre"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Normalized returns a copy with the canonical id populated and the
// backend-specific one dropped.
func (u Usuario) Normalized() Usuario {
	if u.ID == "" {
		u.ID = u.LegacyID
	}
	u.LegacyID = ""
	return u
}

// Servicio is a purchasable catalog offering.
type Servicio struct {
	ID          string  `json:"_id"`
	Nombre      string  `json:"nombre"`
	Descripcion string  `json:"descripcion"`
	Precio      float64 `json:"precio"`
	Tipo        string  `json:"tipo"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

// ServiceRef is one element of a contract's servicios_ids field. The backend
// returns either a bare identifier or, when hydration was requested, the
// full service record in its place. Both shapes decode into the same type.
type ServiceRef struct {
	ID       string
	Servicio *Servicio
}

// UnmarshalJSON accepts either a string id or a hydrated service object.
func (r *ServiceRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		r.ID = id
		r.Servicio = nil
		return nil
	}
	var s Servicio
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	r.ID = s.ID
	r.Servicio = &s
	return nil
}

// MarshalJSON always emits the bare id so that payloads echoed back to the
// backend keep the un-hydrated wire shape.
func (r ServiceRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

// Contrato is a user's agreement referencing one or more catalog services.
type Contrato struct {
	ID           string       `json:"_id"`
	Numero       string       `json:"numero"`
	FechaInicio  string       `json:"fechaInicio"`
	FechaFin     string       `json:"fechaFin"`
	Estado       string       `json:"estado"`
	UsuarioID    string       `json:"usuario_id"`
	ServiciosIDs []ServiceRef `json:"servicios_ids"`
	Servicios    []Servicio   `json:"servicios,omitempty"`
	Usuario      *Usuario     `json:"usuario,omitempty"`
	CreatedAt    string       `json:"createdAt,omitempty"`
	UpdatedAt    string       `json:"updatedAt,omitempty"`
}

// ServiceIDs returns the referenced service identifiers regardless of
// whether the contract came back hydrated.
func (c *Contrato) ServiceIDs() []string {
	ids := make([]string, 0, len(c.ServiciosIDs))
	for _, ref := range c.ServiciosIDs {
		ids = append(ids, ref.ID)
	}
	return ids
}

// ExpiresWithin reports whether the contract end date falls inside the
// window starting at now. Contracts already ended are excluded.
func (c *Contrato) ExpiresWithin(now time.Time, window time.Duration) bool {
	end, err := time.Parse(time.RFC3339, c.FechaFin)
	if err != nil {
		if end, err = time.Parse("2006-01-02", c.FechaFin); err != nil {
			return false
		}
	}
	return end.After(now) && !end.After(now.Add(window))
}

// PaginationInfo describes the slice of a paginated list response.
type PaginationInfo struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

// DefaultPagination is the block substituted when a list response carries
// no pagination metadata.
func DefaultPagination(totalItems int) PaginationInfo {
	return PaginationInfo{
		CurrentPage:  1,
		TotalPages:   1,
		TotalItems:   totalItems,
		ItemsPerPage: 10,
		HasNextPage:  false,
		HasPrevPage:  false,
	}
}

// ContractStats aggregates contract counts by estado and by service tipo.
type ContractStats struct {
	Total           int            `json:"total"`
	PorEstado       map[string]int `json:"porEstado"`
	PorTipoServicio map[string]int `json:"porTipoServicio"`
}
