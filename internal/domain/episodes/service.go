package episodes

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("episode not found")
	ErrClientNotFound = errors.New("client not found")
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

// Add crea una ficha para un cliente ya registrado.
// El cliente debe existir; si no, ErrClientNotFound sin tocar nada.
func (s *Service) Add(ctx context.Context, clientID int64, in EpisodeInput) (Episode, error) {
	if err := in.Normalize(); err != nil {
		return Episode{}, err
	}

	ok, err := s.repo.ClientExists(ctx, clientID)
	if err != nil {
		return Episode{}, err
	}
	if !ok {
		return Episode{}, ErrClientNotFound
	}

	in.CreatedAt = s.now().UTC()
	return s.repo.Create(ctx, clientID, in)
}

// Update sobreescribe los escalares de la ficha y reemplaza la lista de
// medicamentos completa (borrar todo + reinsertar lo filtrado, atómico).
func (s *Service) Update(ctx context.Context, id int64, in EpisodeInput) error {
	if err := in.Normalize(); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, in)
}

// Delete borra la ficha (cascada sobre medicamentos) y devuelve el
// client_id dueño para el redirect.
func (s *Service) Delete(ctx context.Context, id int64) (int64, error) {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (EpisodeWithMedications, error) {
	return s.repo.GetByID(ctx, id)
}
