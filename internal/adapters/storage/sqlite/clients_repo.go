package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"rehab-client-registry/internal/domain/clients"
	"rehab-client-registry/internal/domain/episodes"
)

type ClientsRepo struct {
	db *sql.DB
}

func NewClientsRepo(db *sql.DB) *ClientsRepo {
	return &ClientsRepo{db: db}
}

// RegisterWithEpisode: lookup-then-insert por CPF dentro de la transacción.
// Con _txlock=immediate el BEGIN ya tiene el write lock, así que el lookup
// no puede perder la carrera contra otro insert del mismo CPF.
func (r *ClientsRepo) RegisterWithEpisode(ctx context.Context, c clients.Client, ep episodes.EpisodeInput) (int64, bool, error) {
	const op = "register client"

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, mapErr(op, err)
	}
	defer tx.Rollback()

	var clientID int64
	created := false

	err = tx.QueryRowContext(ctx, `SELECT id FROM clients WHERE cpf = ?`, c.CPF).Scan(&clientID)
	switch {
	case err == sql.ErrNoRows:
		res, err := tx.ExecContext(ctx, `
			INSERT INTO clients (name, cpf, email, phone)
			VALUES (?, ?, ?, ?)
		`, c.Name, c.CPF, c.Email, c.Phone)
		if err != nil {
			return 0, false, mapErr(op, err)
		}
		clientID, err = res.LastInsertId()
		if err != nil {
			return 0, false, mapErr(op, err)
		}
		created = true
	case err != nil:
		return 0, false, mapErr(op, err)
	}

	if _, err := insertEpisode(ctx, tx, clientID, ep); err != nil {
		return 0, false, mapErr(op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, false, mapErr(op, err)
	}
	return clientID, created, nil
}

func (r *ClientsRepo) Update(ctx context.Context, c clients.Client) error {
	const op = "update client"

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapErr(op, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE clients
		SET name = ?, email = ?, phone = ?
		WHERE id = ?
	`, c.Name, c.Email, c.Phone, c.ID)
	if err != nil {
		return mapErr(op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return clients.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return mapErr(op, err)
	}
	return nil
}

func (r *ClientsRepo) Delete(ctx context.Context, id int64) error {
	const op = "delete client"

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapErr(op, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return mapErr(op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return clients.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return mapErr(op, err)
	}
	return nil
}

func (r *ClientsRepo) GetWithEpisodes(ctx context.Context, id int64) (clients.ClientWithEpisodes, error) {
	const op = "get client"

	var out clients.ClientWithEpisodes
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, cpf, email, phone
		FROM clients
		WHERE id = ?
	`, id).Scan(&out.ID, &out.Name, &out.CPF, &out.Email, &out.Phone)
	if err != nil {
		if err == sql.ErrNoRows {
			return clients.ClientWithEpisodes{}, clients.ErrNotFound
		}
		return clients.ClientWithEpisodes{}, mapErr(op, err)
	}

	eps, err := listEpisodes(ctx, r.db, id)
	if err != nil {
		return clients.ClientWithEpisodes{}, mapErr(op, err)
	}
	out.Episodes = eps

	return out, nil
}

// List junta clientes con sus fichas vía LEFT JOIN (los clientes sin ficha
// también aparecen) y agrupa en memoria preservando el orden id DESC.
// El rango de fechas va en el ON para no tirar clientes sin fichas que
// matcheen; el status se evalúa después, sobre la última ficha agrupada.
func (r *ClientsRepo) List(ctx context.Context, f clients.ListFilter) (clients.ListResult, error) {
	const op = "list clients"

	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			c.id, c.name, c.cpf, c.email, c.phone,
			e.id, e.entry_date, e.discharge_date, e.notes, e.created_at
		FROM clients c
		LEFT JOIN episodes e ON e.client_id = c.id
	`)

	args := []any{}

	if f.EntryFrom != "" {
		sb.WriteString(" AND e.entry_date >= ?")
		args = append(args, f.EntryFrom)
	}
	if f.EntryTo != "" {
		sb.WriteString(" AND e.entry_date <= ?")
		args = append(args, f.EntryTo)
	}

	if f.Query != "" {
		sb.WriteString(" WHERE (c.name LIKE ? OR c.cpf LIKE ? OR c.email LIKE ?)")
		q := "%" + f.Query + "%"
		args = append(args, q, q, q)
	}

	sb.WriteString(" ORDER BY c.id DESC, e.id DESC")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return clients.ListResult{}, mapErr(op, err)
	}
	defer rows.Close()

	byID := map[int64]int{}
	grouped := make([]clients.ClientWithEpisodes, 0)

	for rows.Next() {
		var c clients.Client
		var (
			epID      sql.NullInt64
			entry     sql.NullString
			discharge sql.NullString
			notes     sql.NullString
			createdAt sql.NullString
		)
		if err := rows.Scan(
			&c.ID, &c.Name, &c.CPF, &c.Email, &c.Phone,
			&epID, &entry, &discharge, &notes, &createdAt,
		); err != nil {
			return clients.ListResult{}, mapErr(op, err)
		}

		idx, ok := byID[c.ID]
		if !ok {
			idx = len(grouped)
			byID[c.ID] = idx
			grouped = append(grouped, clients.ClientWithEpisodes{
				Client:   c,
				Episodes: []episodes.EpisodeWithMedications{},
			})
		}

		if epID.Valid {
			ep := episodes.Episode{
				ID:        epID.Int64,
				ClientID:  c.ID,
				EntryDate: entry.String,
				Notes:     notes.String,
				CreatedAt: parseCreatedAt(createdAt.String),
			}
			if discharge.Valid {
				d := discharge.String
				ep.DischargeDate = &d
			}
			grouped[idx].Episodes = append(grouped[idx].Episodes, episodes.EpisodeWithMedications{Episode: ep})
		}
	}
	if err := rows.Err(); err != nil {
		return clients.ListResult{}, mapErr(op, err)
	}

	out := make([]clients.ClientWithEpisodes, 0, len(grouped))
	for _, c := range grouped {
		if !clients.StatusMatches(f.Status, c.Episodes) {
			continue
		}
		out = append(out, c)
	}

	stats, err := r.stats(ctx)
	if err != nil {
		return clients.ListResult{}, mapErr(op, err)
	}

	return clients.ListResult{Clients: out, Stats: stats}, nil
}

func (r *ClientsRepo) stats(ctx context.Context) (clients.Stats, error) {
	var s clients.Stats

	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT client_id) FROM episodes`).Scan(&s.ClientsWithEpisodes); err != nil {
		return clients.Stats{}, err
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM episodes WHERE discharge_date IS NULL`).Scan(&s.ActiveEpisodes); err != nil {
		return clients.Stats{}, err
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM episodes WHERE discharge_date IS NOT NULL`).Scan(&s.FinishedEpisodes); err != nil {
		return clients.Stats{}, err
	}

	return s, nil
}

func parseCreatedAt(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
