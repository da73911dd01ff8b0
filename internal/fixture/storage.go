package fixture

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/telecomplus/contratos/internal/models"
)

// User is the stored account record. The public projection emits the id
// under "_id", matching the real backend.
type User struct {
	ID           string
	Nombre       string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public returns the wire projection of the user.
func (u *User) Public() models.Usuario {
	return models.Usuario{
		LegacyID:  u.ID,
		Nombre:    u.Nombre,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}

// Storage is the in-memory state of the fixture backend. It is the swap-in
// fake for the real backend's database, guarded by one mutex.
type Storage struct {
	mu        sync.Mutex
	users     map[string]*User
	servicios map[string]*models.Servicio
	contratos map[string]*models.Contrato
}

// NewStorage creates empty storage.
func NewStorage() *Storage {
	return &Storage{
		users:     make(map[string]*User),
		servicios: make(map[string]*models.Servicio),
		contratos: make(map[string]*models.Contrato),
	}
}

// CreateUser registers a new account; emails are unique.
func (s *Storage) CreateUser(nombre, email, passwordHash string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return nil, ErrEmailTaken
		}
	}
	now := time.Now().UTC()
	u := &User{
		ID:           uuid.NewString(),
		Nombre:       nombre,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[u.ID] = u
	return u, nil
}

// UserByEmail returns the account for an email, or ErrInvalidCredentials.
func (s *Storage) UserByEmail(email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrInvalidCredentials
}

// UserByID returns the account for an id.
func (s *Storage) UserByID(id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// UpdateUser patches nombre and/or email of an account.
func (s *Storage) UpdateUser(id string, nombre, email *string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	if nombre != nil {
		u.Nombre = *nombre
	}
	if email != nil {
		for _, other := range s.users {
			if other.ID != id && strings.EqualFold(other.Email, *email) {
				return nil, ErrEmailTaken
			}
		}
		u.Email = *email
	}
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

// SetPasswordHash replaces the stored password hash.
func (s *Storage) SetPasswordHash(id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// CreateServicio adds a catalog service; names are unique.
func (s *Storage) CreateServicio(req models.CreateServicioRequest) (*models.Servicio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sv := range s.servicios {
		if strings.EqualFold(sv.Nombre, req.Nombre) {
			return nil, ErrDuplicateNombre
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	sv := &models.Servicio{
		ID:          uuid.NewString(),
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Precio:      req.Precio,
		Tipo:        req.Tipo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.servicios[sv.ID] = sv
	cp := *sv
	return &cp, nil
}

// ListServicios returns the page of services matching tipo.
func (s *Storage) ListServicios(tipo string, page, limit int) ([]models.Servicio, models.PaginationInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]models.Servicio, 0, len(s.servicios))
	for _, sv := range s.servicios {
		if tipo == "" || sv.Tipo == tipo {
			all = append(all, *sv)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt < all[j].CreatedAt })
	pageItems, pagination := paginate(len(all), page, limit)
	return all[pageItems[0]:pageItems[1]], pagination
}

// ServicioByID returns one service.
func (s *Storage) ServicioByID(id string) (*models.Servicio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sv, ok := s.servicios[id]
	if !ok {
		return nil, ErrServicioNotFound
	}
	cp := *sv
	return &cp, nil
}

// UpdateServicio patches a service; renames must stay unique.
func (s *Storage) UpdateServicio(id string, req models.UpdateServicioRequest) (*models.Servicio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sv, ok := s.servicios[id]
	if !ok {
		return nil, ErrServicioNotFound
	}
	if req.Nombre != nil {
		for _, other := range s.servicios {
			if other.ID != id && strings.EqualFold(other.Nombre, *req.Nombre) {
				return nil, ErrDuplicateNombre
			}
		}
		sv.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		sv.Descripcion = *req.Descripcion
	}
	if req.Precio != nil {
		sv.Precio = *req.Precio
	}
	if req.Tipo != nil {
		sv.Tipo = *req.Tipo
	}
	sv.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	cp := *sv
	return &cp, nil
}

// DeleteServicio removes a service unless a contract still references it.
func (s *Storage) DeleteServicio(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.servicios[id]; !ok {
		return ErrServicioNotFound
	}
	for _, c := range s.contratos {
		for _, ref := range c.ServiciosIDs {
			if ref.ID == id {
				return ErrServicioEnUso
			}
		}
	}
	delete(s.servicios, id)
	return nil
}

// CreateContrato adds a contract owned by userID. Every referenced service
// must exist.
func (s *Storage) CreateContrato(userID string, req models.CreateContratoRequest) (*models.Contrato, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	refs := make([]models.ServiceRef, 0, len(req.ServiciosIDs))
	for _, id := range req.ServiciosIDs {
		if _, ok := s.servicios[id]; !ok {
			return nil, ErrServicioDesconocido
		}
		refs = append(refs, models.ServiceRef{ID: id})
	}
	now := time.Now().UTC().Format(time.RFC3339)
	c := &models.Contrato{
		ID:           uuid.NewString(),
		Numero:       req.Numero,
		FechaInicio:  req.FechaInicio,
		FechaFin:     req.FechaFin,
		Estado:       req.Estado,
		UsuarioID:    userID,
		ServiciosIDs: refs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.contratos[c.ID] = c
	cp := *c
	return &cp, nil
}

// ListContratos returns the page of the user's contracts matching estado.
func (s *Storage) ListContratos(userID, estado string, page, limit int) ([]models.Contrato, models.PaginationInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]models.Contrato, 0, len(s.contratos))
	for _, c := range s.contratos {
		if c.UsuarioID != userID {
			continue
		}
		if estado == "" || c.Estado == estado {
			all = append(all, *c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt < all[j].CreatedAt })
	pageItems, pagination := paginate(len(all), page, limit)
	return all[pageItems[0]:pageItems[1]], pagination
}

// ContratoByID returns one contract, hydrating the referenced services when
// populate is set.
func (s *Storage) ContratoByID(id string, populate bool) (*models.Contrato, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contratos[id]
	if !ok {
		return nil, ErrContratoNotFound
	}
	cp := *c
	if populate {
		cp.Servicios = make([]models.Servicio, 0, len(c.ServiciosIDs))
		for _, ref := range c.ServiciosIDs {
			if sv, ok := s.servicios[ref.ID]; ok {
				cp.Servicios = append(cp.Servicios, *sv)
			}
		}
	}
	return &cp, nil
}

// UpdateContrato patches a contract; unset fields stay untouched.
func (s *Storage) UpdateContrato(id string, req models.UpdateContratoRequest) (*models.Contrato, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contratos[id]
	if !ok {
		return nil, ErrContratoNotFound
	}
	if req.Numero != nil {
		c.Numero = *req.Numero
	}
	if req.FechaInicio != nil {
		c.FechaInicio = *req.FechaInicio
	}
	if req.FechaFin != nil {
		c.FechaFin = *req.FechaFin
	}
	if req.Estado != nil {
		c.Estado = *req.Estado
	}
	if req.ServiciosIDs != nil {
		refs := make([]models.ServiceRef, 0, len(req.ServiciosIDs))
		for _, sid := range req.ServiciosIDs {
			if _, ok := s.servicios[sid]; !ok {
				return nil, ErrServicioDesconocido
			}
			refs = append(refs, models.ServiceRef{ID: sid})
		}
		c.ServiciosIDs = refs
	}
	c.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	cp := *c
	return &cp, nil
}

// DeleteContrato removes a contract.
func (s *Storage) DeleteContrato(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contratos[id]; !ok {
		return ErrContratoNotFound
	}
	delete(s.contratos, id)
	return nil
}

// Stats aggregates the user's contracts by estado and by service tipo.
func (s *Storage) Stats(userID string) models.ContractStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := models.ContractStats{
		PorEstado:       make(map[string]int),
		PorTipoServicio: make(map[string]int),
	}
	for _, c := range s.contratos {
		if c.UsuarioID != userID {
			continue
		}
		stats.Total++
		stats.PorEstado[c.Estado]++
		for _, ref := range c.ServiciosIDs {
			if sv, ok := s.servicios[ref.ID]; ok {
				stats.PorTipoServicio[sv.Tipo]++
			}
		}
	}
	return stats
}

// paginate clamps page/limit and returns the [from, to) bounds plus the
// pagination block.
func paginate(total, page, limit int) ([2]int, models.PaginationInfo) {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	totalPages := (total + limit - 1) / limit
	if totalPages == 0 {
		totalPages = 1
	}
	from := (page - 1) * limit
	if from > total {
		from = total
	}
	to := from + limit
	if to > total {
		to = total
	}
	return [2]int{from, to}, models.PaginationInfo{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1 && total > 0,
	}
}
