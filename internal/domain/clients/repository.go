package clients

import (
	"context"

	"rehab-client-registry/internal/domain/episodes"
)

const (
	StatusActive   = "active"
	StatusFinished = "finished"
)

// ListFilter llega del querystring ya recortado.
// Las fechas son YYYY-MM-DD; el rango sobre entry_date es lexicográfico,
// correcto porque el borde solo deja pasar fechas ISO con cero a la izquierda.
type ListFilter struct {
	Query     string // substring sobre nombre, CPF o email
	Status    string // "", StatusActive o StatusFinished (sobre la última ficha)
	EntryFrom string
	EntryTo   string
}

// StatusMatches aplica el filtro de status sobre las fichas de un cliente
// (más reciente primero). Con status seteado, un cliente sin fichas no pasa.
func StatusMatches(status string, eps []episodes.EpisodeWithMedications) bool {
	switch status {
	case StatusActive:
		return len(eps) > 0 && eps[0].DischargeDate == nil
	case StatusFinished:
		return len(eps) > 0 && eps[0].DischargeDate != nil
	default:
		return true
	}
}

// Stats son los tres conteos del tablero, sin aplicar filtros.
type Stats struct {
	ClientsWithEpisodes int
	ActiveEpisodes      int
	FinishedEpisodes    int
}

type ListResult struct {
	Clients []ClientWithEpisodes
	Stats   Stats
}

type Repository interface {
	// RegisterWithEpisode hace find-or-create por CPF y cuelga la ficha del
	// cliente resultante, todo dentro de la misma transacción de escritura.
	// created indica si el cliente fue creado en esta operación.
	RegisterWithEpisode(ctx context.Context, c Client, ep episodes.EpisodeInput) (clientID int64, created bool, err error)

	// Update toca solo los campos mutables (nombre, email, teléfono).
	Update(ctx context.Context, c Client) error

	// Delete borra el cliente; la cascada se lleva fichas y medicamentos.
	Delete(ctx context.Context, id int64) error

	GetWithEpisodes(ctx context.Context, id int64) (ClientWithEpisodes, error)
	List(ctx context.Context, f ListFilter) (ListResult, error)
}
