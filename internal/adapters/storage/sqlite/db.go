package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrIntegrity: violación de constraint fuera del camino esperado
	// (el merge por CPF se resuelve con lookup, no atrapando UNIQUE).
	ErrIntegrity = errors.New("integrity violation")

	// ErrBusy: no se consiguió el write lock dentro del busy_timeout.
	// El caller reintenta la operación completa, nunca statement a statement.
	ErrBusy = errors.New("database busy")
)

// Open abre el pool database/sql sobre el archivo SQLite.
// Pragmas del sistema: WAL (lectores no bloquean tras un writer),
// synchronous NORMAL, cache de 64MB, temp en memoria, busy_timeout 30s y
// foreign_keys para las cascadas. _txlock=immediate hace que toda
// transacción tome el write lock en el BEGIN: los writers se serializan al
// inicio en vez de pelear por el upgrade a mitad de camino.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?"+dsnParams())
	if err != nil {
		return nil, err
	}

	// conexiones de vida de proceso, nunca se cierran por idle
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func dsnParams() string {
	v := url.Values{}
	v.Add("_txlock", "immediate")
	for _, p := range []string{
		"journal_mode(WAL)",
		"synchronous(NORMAL)",
		"cache_size(-64000)",
		"temp_store(MEMORY)",
		"busy_timeout(30000)",
		"foreign_keys(1)",
	} {
		v.Add("_pragma", p)
	}
	return v.Encode()
}

const schema = `
CREATE TABLE IF NOT EXISTS clients (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	cpf TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL,
	phone TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS episodes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	client_id INTEGER NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
	entry_date TEXT NOT NULL,
	discharge_date TEXT,
	notes TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS medications (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	episode_id INTEGER NOT NULL REFERENCES episodes(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	dosage TEXT NOT NULL,
	frequency TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_episodes_client ON episodes(client_id);
CREATE INDEX IF NOT EXISTS idx_medications_episode ON medications(episode_id);
`

// InitSchema es idempotente: CREATE TABLE IF NOT EXISTS es toda la
// estrategia de versionado que tiene este sistema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

// mapErr traduce los códigos del engine a los errores del sistema y envuelve
// el resto con la operación para diagnóstico.
func mapErr(op string, err error) error {
	var se *sqlitedrv.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			return fmt.Errorf("%s: %w", op, ErrIntegrity)
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%s: %w", op, ErrBusy)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
