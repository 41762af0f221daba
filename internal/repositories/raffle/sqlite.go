package raffle

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KirkDiggler/raffled/internal/models"

	// registers the "sqlite" database/sql driver
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS raffles (
	id         TEXT PRIMARY KEY,
	version    INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	state      BLOB NOT NULL
)`

// SQLiteConfig holds configuration for the SQLite raffle repository
type SQLiteConfig struct {
	// DB is an open handle using the "sqlite" driver
	DB *sql.DB
}

// sqliteRepository implements the Repository interface on an embedded SQLite database
type sqliteRepository struct {
	db *sql.DB
}

// OpenSQLite opens the SQLite database at path
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// A single connection keeps writers serialized and avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	return db, nil
}

// NewSQLite creates a new SQLite-backed raffle repository, creating the schema if needed
func NewSQLite(cfg *SQLiteConfig) (*sqliteRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.DB == nil {
		return nil, errors.New("sqlite database cannot be nil")
	}

	if _, err := cfg.DB.ExecContext(context.Background(), sqliteSchema); err != nil {
		return nil, fmt.Errorf("failed to create raffle schema: %w", err)
	}

	return &sqliteRepository{
		db: cfg.DB,
	}, nil
}

// SaveRaffle inserts a new raffle or updates an existing one at the expected version
func (r *sqliteRepository) SaveRaffle(ctx context.Context, input *SaveRaffleInput) error {
	if err := validateSave(input); err != nil {
		return err
	}

	expected := input.Raffle.Version
	saved := *input.Raffle
	saved.Version = expected + 1

	raffleJSON, err := json.Marshal(&saved)
	if err != nil {
		return fmt.Errorf("failed to marshal raffle: %w", err)
	}

	var result sql.Result
	if expected == 0 {
		result, err = r.db.ExecContext(ctx,
			`INSERT INTO raffles (id, version, created_at, updated_at, state)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO NOTHING`,
			saved.ID, saved.Version, saved.CreatedAt.UnixNano(), saved.UpdatedAt.UnixNano(), raffleJSON)
	} else {
		result, err = r.db.ExecContext(ctx,
			`UPDATE raffles SET version = ?, updated_at = ?, state = ?
			 WHERE id = ? AND version = ?`,
			saved.Version, saved.UpdatedAt.UnixNano(), raffleJSON, saved.ID, expected)
	}
	if err != nil {
		return fmt.Errorf("failed to save raffle: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save raffle: %w", err)
	}
	if rows == 0 {
		return ErrConcurrentModification
	}

	input.Raffle.Version = saved.Version
	return nil
}

// GetRaffle retrieves a raffle by ID from SQLite
func (r *sqliteRepository) GetRaffle(ctx context.Context, input *GetRaffleInput) (*models.Raffle, error) {
	if input == nil || input.RaffleID == "" {
		return nil, errors.New("input and raffle ID cannot be empty")
	}

	var raffleJSON []byte
	err := r.db.QueryRowContext(ctx, `SELECT state FROM raffles WHERE id = ?`, input.RaffleID).Scan(&raffleJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRaffleNotFound
		}
		return nil, fmt.Errorf("failed to get raffle: %w", err)
	}

	var raffle models.Raffle
	if err := json.Unmarshal(raffleJSON, &raffle); err != nil {
		return nil, fmt.Errorf("failed to unmarshal raffle: %w", err)
	}

	return &raffle, nil
}

// ListRaffles retrieves all raffles from SQLite in creation order
func (r *sqliteRepository) ListRaffles(ctx context.Context, input *ListRafflesInput) (*ListRafflesOutput, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, state FROM raffles ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list raffles: %w", err)
	}
	defer rows.Close()

	raffles := []*models.Raffle{}
	for rows.Next() {
		var (
			raffleID   string
			raffleJSON []byte
		)
		if err := rows.Scan(&raffleID, &raffleJSON); err != nil {
			return nil, fmt.Errorf("failed to scan raffle: %w", err)
		}

		var raffle models.Raffle
		if err := json.Unmarshal(raffleJSON, &raffle); err != nil {
			return nil, fmt.Errorf("failed to unmarshal raffle %s: %w", raffleID, err)
		}

		raffles = append(raffles, &raffle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list raffles: %w", err)
	}

	return &ListRafflesOutput{
		Raffles: raffles,
	}, nil
}

// DeleteRaffle removes a raffle from SQLite
func (r *sqliteRepository) DeleteRaffle(ctx context.Context, input *DeleteRaffleInput) error {
	if input == nil || input.RaffleID == "" {
		return errors.New("input and raffle ID cannot be empty")
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM raffles WHERE id = ?`, input.RaffleID)
	if err != nil {
		return fmt.Errorf("failed to delete raffle: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete raffle: %w", err)
	}
	if rows == 0 {
		return ErrRaffleNotFound
	}

	return nil
}
