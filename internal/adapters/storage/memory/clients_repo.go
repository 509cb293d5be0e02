package memory

import (
	"context"
	"sort"
	"strings"

	"rehab-client-registry/internal/domain/clients"
	"rehab-client-registry/internal/domain/episodes"
)

// ClientsRepo adapta Store a clients.Repository.
type ClientsRepo struct {
	s *Store
}

func NewClientsRepo(s *Store) *ClientsRepo {
	return &ClientsRepo{s: s}
}

func (r *ClientsRepo) RegisterWithEpisode(ctx context.Context, c clients.Client, ep episodes.EpisodeInput) (int64, bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var clientID int64
	created := false

	for _, existing := range s.clients {
		if existing.CPF == c.CPF {
			clientID = existing.ID
			break
		}
	}
	if clientID == 0 {
		clientID = s.nextClientID
		s.nextClientID++
		c.ID = clientID
		s.clients[clientID] = c
		created = true
	}

	s.insertEpisodeLocked(clientID, ep)
	return clientID, created, nil
}

func (r *ClientsRepo) Update(ctx context.Context, c clients.Client) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.clients[c.ID]
	if !ok {
		return clients.ErrNotFound
	}

	cur.Name = c.Name
	cur.Email = c.Email
	cur.Phone = c.Phone
	s.clients[c.ID] = cur
	return nil
}

func (r *ClientsRepo) Delete(ctx context.Context, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[id]; !ok {
		return clients.ErrNotFound
	}
	delete(s.clients, id)

	// cascada: fichas del cliente y medicamentos de esas fichas
	for epID, ep := range s.episodes {
		if ep.ClientID != id {
			continue
		}
		delete(s.episodes, epID)
		s.deleteMedicationsLocked(epID)
	}
	return nil
}

func (r *ClientsRepo) GetWithEpisodes(ctx context.Context, id int64) (clients.ClientWithEpisodes, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[id]
	if !ok {
		return clients.ClientWithEpisodes{}, clients.ErrNotFound
	}

	return clients.ClientWithEpisodes{
		Client:   c,
		Episodes: s.episodesOfLocked(id, "", ""),
	}, nil
}

func (r *ClientsRepo) List(ctx context.Context, f clients.ListFilter) (clients.ListResult, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.clients))
	for id := range s.clients {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	q := strings.ToLower(f.Query)

	out := make([]clients.ClientWithEpisodes, 0)
	for _, id := range ids {
		c := s.clients[id]
		if !matchesQuery(c, q) {
			continue
		}

		eps := s.episodesOfLocked(id, f.EntryFrom, f.EntryTo)
		if !clients.StatusMatches(f.Status, eps) {
			continue
		}

		out = append(out, clients.ClientWithEpisodes{Client: c, Episodes: eps})
	}

	return clients.ListResult{Clients: out, Stats: s.statsLocked()}, nil
}
