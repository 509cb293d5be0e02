// Package memory implementa los repos sobre mapas con un mutex. Mismo
// contrato que el adapter sqlite (merge por CPF, cascadas, replace de
// medicamentos); sirve para dev sin archivo de base y para los tests.
package memory

import (
	"sort"
	"strings"
	"sync"

	"rehab-client-registry/internal/domain/clients"
	"rehab-client-registry/internal/domain/episodes"
)

// Store guarda las tres tablas bajo un solo lock, que hace de transacción:
// cada operación es atómica o no pasa nada, igual que el begin-immediate.
// Los dos repos comparten el mismo Store para que las cascadas funcionen.
type Store struct {
	mu sync.Mutex

	nextClientID  int64
	nextEpisodeID int64
	nextMedID     int64

	clients     map[int64]clients.Client
	episodes    map[int64]episodes.Episode
	medications map[int64]episodes.Medication
}

func NewStore() *Store {
	return &Store{
		nextClientID:  1,
		nextEpisodeID: 1,
		nextMedID:     1,
		clients:       map[int64]clients.Client{},
		episodes:      map[int64]episodes.Episode{},
		medications:   map[int64]episodes.Medication{},
	}
}

func (s *Store) insertEpisodeLocked(clientID int64, in episodes.EpisodeInput) episodes.Episode {
	ep := episodes.Episode{
		ID:            s.nextEpisodeID,
		ClientID:      clientID,
		EntryDate:     in.EntryDate,
		DischargeDate: in.DischargeDate,
		Notes:         in.Notes,
		CreatedAt:     in.CreatedAt,
	}
	s.nextEpisodeID++
	s.episodes[ep.ID] = ep

	s.insertMedicationsLocked(ep.ID, in.Medications)
	return ep
}

func (s *Store) insertMedicationsLocked(episodeID int64, meds []episodes.MedicationInput) {
	for _, m := range meds {
		s.medications[s.nextMedID] = episodes.Medication{
			ID:        s.nextMedID,
			EpisodeID: episodeID,
			Name:      m.Name,
			Dosage:    m.Dosage,
			Frequency: m.Frequency,
			Notes:     m.Notes,
		}
		s.nextMedID++
	}
}

func (s *Store) deleteMedicationsLocked(episodeID int64) {
	for medID, m := range s.medications {
		if m.EpisodeID == episodeID {
			delete(s.medications, medID)
		}
	}
}

// episodesOfLocked devuelve las fichas del cliente (id DESC) dentro del
// rango de entrada, con sus medicamentos (id ASC).
func (s *Store) episodesOfLocked(clientID int64, from, to string) []episodes.EpisodeWithMedications {
	out := make([]episodes.EpisodeWithMedications, 0)
	for _, ep := range s.episodes {
		if ep.ClientID != clientID {
			continue
		}
		if from != "" && ep.EntryDate < from {
			continue
		}
		if to != "" && ep.EntryDate > to {
			continue
		}
		out = append(out, episodes.EpisodeWithMedications{
			Episode:     ep,
			Medications: s.medicationsOfLocked(ep.ID),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *Store) medicationsOfLocked(episodeID int64) []episodes.Medication {
	out := make([]episodes.Medication, 0)
	for _, m := range s.medications {
		if m.EpisodeID == episodeID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) statsLocked() clients.Stats {
	var st clients.Stats

	withEpisodes := map[int64]struct{}{}
	for _, ep := range s.episodes {
		withEpisodes[ep.ClientID] = struct{}{}
		if ep.DischargeDate == nil {
			st.ActiveEpisodes++
		} else {
			st.FinishedEpisodes++
		}
	}
	st.ClientsWithEpisodes = len(withEpisodes)
	return st
}

func matchesQuery(c clients.Client, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(c.CPF, q) ||
		strings.Contains(strings.ToLower(c.Email), q)
}
