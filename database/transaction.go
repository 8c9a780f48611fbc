package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TxMode selects the isolation a transaction runs under
type TxMode int

const (
	// TxModeReadWrite runs serializable so concurrent redemptions cannot
	// both act on the same balance or receipt
	TxModeReadWrite TxMode = iota

	// TxModeReadOnly reads from one repeatable-read snapshot
	TxModeReadOnly
)

// TxOptions returns the pgx options for the mode
func (m TxMode) TxOptions() pgx.TxOptions {
	if m == TxModeReadOnly {
		return pgx.TxOptions{
			IsoLevel:   pgx.RepeatableRead,
			AccessMode: pgx.ReadOnly,
		}
	}
	return pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	}
}

func (m TxMode) String() string {
	if m == TxModeReadOnly {
		return "read_only"
	}
	return "read_write"
}

// BeginMode starts a transaction under the given mode
func (db *DB) BeginMode(ctx context.Context, mode TxMode) (pgx.Tx, error) {
	tx, err := db.BeginTx(ctx, mode.TxOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to begin %s transaction: %w", mode, err)
	}
	return tx, nil
}
