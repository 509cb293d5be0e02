package sqlite

import (
	"context"
	"database/sql"
	"time"

	"rehab-client-registry/internal/domain/episodes"
)

type EpisodesRepo struct {
	db *sql.DB
}

func NewEpisodesRepo(db *sql.DB) *EpisodesRepo {
	return &EpisodesRepo{db: db}
}

func (r *EpisodesRepo) Create(ctx context.Context, clientID int64, in episodes.EpisodeInput) (episodes.Episode, error) {
	const op = "create episode"

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return episodes.Episode{}, mapErr(op, err)
	}
	defer tx.Rollback()

	epID, err := insertEpisode(ctx, tx, clientID, in)
	if err != nil {
		return episodes.Episode{}, mapErr(op, err)
	}

	if err := tx.Commit(); err != nil {
		return episodes.Episode{}, mapErr(op, err)
	}

	return episodes.Episode{
		ID:            epID,
		ClientID:      clientID,
		EntryDate:     in.EntryDate,
		DischargeDate: in.DischargeDate,
		Notes:         in.Notes,
		CreatedAt:     in.CreatedAt,
	}, nil
}

// Update sobreescribe los escalares y reemplaza la lista de medicamentos:
// DELETE total + reinsert de la lista filtrada, en la misma transacción.
func (r *EpisodesRepo) Update(ctx context.Context, id int64, in episodes.EpisodeInput) error {
	const op = "update episode"

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapErr(op, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE episodes
		SET entry_date = ?, discharge_date = ?, notes = ?
		WHERE id = ?
	`, in.EntryDate, nullString(in.DischargeDate), in.Notes, id)
	if err != nil {
		return mapErr(op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return episodes.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM medications WHERE episode_id = ?`, id); err != nil {
		return mapErr(op, err)
	}
	if err := insertMedications(ctx, tx, id, in.Medications); err != nil {
		return mapErr(op, err)
	}

	if err := tx.Commit(); err != nil {
		return mapErr(op, err)
	}
	return nil
}

func (r *EpisodesRepo) Delete(ctx context.Context, id int64) (int64, error) {
	const op = "delete episode"

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, mapErr(op, err)
	}
	defer tx.Rollback()

	var clientID int64
	err = tx.QueryRowContext(ctx, `SELECT client_id FROM episodes WHERE id = ?`, id).Scan(&clientID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, episodes.ErrNotFound
		}
		return 0, mapErr(op, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM episodes WHERE id = ?`, id); err != nil {
		return 0, mapErr(op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, mapErr(op, err)
	}
	return clientID, nil
}

func (r *EpisodesRepo) GetByID(ctx context.Context, id int64) (episodes.EpisodeWithMedications, error) {
	const op = "get episode"

	var (
		out       episodes.EpisodeWithMedications
		discharge sql.NullString
		createdAt string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, client_id, entry_date, discharge_date, notes, created_at
		FROM episodes
		WHERE id = ?
	`, id).Scan(&out.ID, &out.ClientID, &out.EntryDate, &discharge, &out.Notes, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return episodes.EpisodeWithMedications{}, episodes.ErrNotFound
		}
		return episodes.EpisodeWithMedications{}, mapErr(op, err)
	}

	if discharge.Valid {
		d := discharge.String
		out.DischargeDate = &d
	}
	out.CreatedAt = parseCreatedAt(createdAt)

	meds, err := listMedications(ctx, r.db, id)
	if err != nil {
		return episodes.EpisodeWithMedications{}, mapErr(op, err)
	}
	out.Medications = meds

	return out, nil
}

func (r *EpisodesRepo) ClientExists(ctx context.Context, clientID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM clients WHERE id = ?`, clientID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, mapErr("client exists", err)
	}
	return true, nil
}

// insertEpisode inserta la ficha y sus medicamentos dentro de la tx del
// caller. La lista ya viene filtrada por el service (nombre y dosis).
func insertEpisode(ctx context.Context, tx *sql.Tx, clientID int64, in episodes.EpisodeInput) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO episodes (client_id, entry_date, discharge_date, notes, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, clientID, in.EntryDate, nullString(in.DischargeDate), in.Notes, in.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}

	epID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := insertMedications(ctx, tx, epID, in.Medications); err != nil {
		return 0, err
	}
	return epID, nil
}

func insertMedications(ctx context.Context, tx *sql.Tx, episodeID int64, meds []episodes.MedicationInput) error {
	for _, m := range meds {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO medications (episode_id, name, dosage, frequency, notes)
			VALUES (?, ?, ?, ?, ?)
		`, episodeID, m.Name, m.Dosage, m.Frequency, m.Notes)
		if err != nil {
			return err
		}
	}
	return nil
}

// listEpisodes trae las fichas de un cliente (más reciente primero) con sus
// medicamentos.
func listEpisodes(ctx context.Context, db *sql.DB, clientID int64) ([]episodes.EpisodeWithMedications, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, client_id, entry_date, discharge_date, notes, created_at
		FROM episodes
		WHERE client_id = ?
		ORDER BY id DESC
	`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]episodes.EpisodeWithMedications, 0)
	for rows.Next() {
		var (
			ep        episodes.EpisodeWithMedications
			discharge sql.NullString
			createdAt string
		)
		if err := rows.Scan(&ep.ID, &ep.ClientID, &ep.EntryDate, &discharge, &ep.Notes, &createdAt); err != nil {
			return nil, err
		}
		if discharge.Valid {
			d := discharge.String
			ep.DischargeDate = &d
		}
		ep.CreatedAt = parseCreatedAt(createdAt)
		out = append(out, ep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		meds, err := listMedications(ctx, db, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Medications = meds
	}

	return out, nil
}

func listMedications(ctx context.Context, db *sql.DB, episodeID int64) ([]episodes.Medication, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, episode_id, name, dosage, frequency, notes
		FROM medications
		WHERE episode_id = ?
		ORDER BY id ASC
	`, episodeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]episodes.Medication, 0)
	for rows.Next() {
		var m episodes.Medication
		if err := rows.Scan(&m.ID, &m.EpisodeID, &m.Name, &m.Dosage, &m.Frequency, &m.Notes); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
