package clients

import "rehab-client-registry/internal/domain/episodes"

// Client es la persona en tratamiento, identificada de forma única por CPF.
// El CPF se guarda normalizado (solo dígitos) y es inmutable tras el alta.
type Client struct {
	ID    int64
	Name  string
	CPF   string
	Email string
	Phone string
}

// ClientWithEpisodes es el cliente con sus fichas, más reciente primero.
type ClientWithEpisodes struct {
	Client
	Episodes []episodes.EpisodeWithMedications
}

// LatestEpisode devuelve la ficha más reciente o nil si no hay ninguna.
func (c ClientWithEpisodes) LatestEpisode() *episodes.EpisodeWithMedications {
	if len(c.Episodes) == 0 {
		return nil
	}
	return &c.Episodes[0]
}
