package memory

import (
	"context"

	"rehab-client-registry/internal/domain/episodes"
)

// EpisodesRepo adapta Store a episodes.Repository.
type EpisodesRepo struct {
	s *Store
}

func NewEpisodesRepo(s *Store) *EpisodesRepo {
	return &EpisodesRepo{s: s}
}

func (r *EpisodesRepo) Create(ctx context.Context, clientID int64, in episodes.EpisodeInput) (episodes.Episode, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertEpisodeLocked(clientID, in), nil
}

func (r *EpisodesRepo) Update(ctx context.Context, id int64, in episodes.EpisodeInput) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	ep, ok := s.episodes[id]
	if !ok {
		return episodes.ErrNotFound
	}

	ep.EntryDate = in.EntryDate
	ep.DischargeDate = in.DischargeDate
	ep.Notes = in.Notes
	s.episodes[id] = ep

	// replace total de la lista
	s.deleteMedicationsLocked(id)
	s.insertMedicationsLocked(id, in.Medications)
	return nil
}

func (r *EpisodesRepo) Delete(ctx context.Context, id int64) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	ep, ok := s.episodes[id]
	if !ok {
		return 0, episodes.ErrNotFound
	}

	delete(s.episodes, id)
	s.deleteMedicationsLocked(id)
	return ep.ClientID, nil
}

func (r *EpisodesRepo) GetByID(ctx context.Context, id int64) (episodes.EpisodeWithMedications, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	ep, ok := s.episodes[id]
	if !ok {
		return episodes.EpisodeWithMedications{}, episodes.ErrNotFound
	}

	return episodes.EpisodeWithMedications{
		Episode:     ep,
		Medications: s.medicationsOfLocked(id),
	}, nil
}

func (r *EpisodesRepo) ClientExists(ctx context.Context, clientID int64) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.clients[clientID]
	return ok, nil
}
