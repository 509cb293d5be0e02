package episodes

import "context"

type Repository interface {
	Create(ctx context.Context, clientID int64, in EpisodeInput) (Episode, error)
	Update(ctx context.Context, id int64, in EpisodeInput) error
	// Delete devuelve el client_id dueño (lo necesita el redirect).
	Delete(ctx context.Context, id int64) (int64, error)
	GetByID(ctx context.Context, id int64) (EpisodeWithMedications, error)
	ClientExists(ctx context.Context, clientID int64) (bool, error)
}
