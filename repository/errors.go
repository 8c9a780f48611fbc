package repository

import (
	"errors"

	"fanhunt/domain/entities"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the ledger reacts to
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
)

const (
	scanReceiptsPrimaryKey    = "scan_receipts_pkey"
	usersTotalPointsNonNegCon = "users_total_points_non_negative"
)

// classifyError maps PostgreSQL failures that carry ledger meaning onto
// ledger error kinds. Anything else is returned unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgSerializationFailure, pgDeadlockDetected:
		return entities.WrapLedgerError(entities.KindTransactionConflict, err, nil)
	case pgUniqueViolation:
		if pgErr.ConstraintName == scanReceiptsPrimaryKey {
			return entities.WrapLedgerError(entities.KindAlreadyRedeemed, err, nil)
		}
	case pgCheckViolation:
		if pgErr.ConstraintName == usersTotalPointsNonNegCon {
			return entities.WrapLedgerError(entities.KindInsufficientPoints, err, nil)
		}
	}
	return err
}
