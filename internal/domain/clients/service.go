package clients

import (
	"context"
	"errors"
	"strings"
	"time"

	"rehab-client-registry/internal/domain/episodes"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidCPF   = errors.New("invalid cpf")
	ErrInvalidEmail = errors.New("invalid email")
	ErrNotFound     = errors.New("client not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// RegisterInput es el alta completa: cliente + primera ficha.
type RegisterInput struct {
	Name  string
	CPF   string
	Email string
	Phone string

	Episode episodes.EpisodeInput
}

// Register da de alta al cliente con su ficha inicial.
// Si el CPF ya existe no es error: la ficha se cuelga del cliente existente
// y created viene en false (merge por CPF).
func (s *Service) Register(ctx context.Context, in RegisterInput) (clientID int64, created bool, err error) {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	email := strings.TrimSpace(in.Email)

	if name == "" || phone == "" || email == "" || strings.TrimSpace(in.CPF) == "" {
		return 0, false, ErrInvalidInput
	}
	if !IsValidCPF(in.CPF) {
		return 0, false, ErrInvalidCPF
	}
	if !IsValidEmail(email) {
		return 0, false, ErrInvalidEmail
	}

	ep := in.Episode
	if err := ep.Normalize(); err != nil {
		return 0, false, ErrInvalidInput
	}
	ep.CreatedAt = s.now().UTC()

	c := Client{
		Name:  name,
		CPF:   NormalizeCPF(in.CPF),
		Email: email,
		Phone: phone,
	}
	return s.repo.RegisterWithEpisode(ctx, c, ep)
}

type UpdateInput struct {
	Name  string
	Email string
	Phone string
}

// Update edita los campos de contacto. El CPF no se toca nunca.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) error {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	email := strings.TrimSpace(in.Email)

	if name == "" || phone == "" {
		return ErrInvalidInput
	}
	if !IsValidEmail(email) {
		return ErrInvalidEmail
	}

	return s.repo.Update(ctx, Client{
		ID:    id,
		Name:  name,
		Email: email,
		Phone: phone,
	})
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetWithEpisodes(ctx context.Context, id int64) (ClientWithEpisodes, error) {
	return s.repo.GetWithEpisodes(ctx, id)
}

// List aplica búsqueda libre, filtro de status y rango de fecha de entrada.
func (s *Service) List(ctx context.Context, f ListFilter) (ListResult, error) {
	f.Query = strings.TrimSpace(f.Query)
	f.Status = strings.TrimSpace(f.Status)
	f.EntryFrom = strings.TrimSpace(f.EntryFrom)
	f.EntryTo = strings.TrimSpace(f.EntryTo)
	return s.repo.List(ctx, f)
}
