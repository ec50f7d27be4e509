package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	pkgerrors "github.com/honeynil/raffle-service/pkg/errors"
	"github.com/lib/pq"
)

const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"

	constraintOperationNumber = "purchases_operation_number_key"
	constraintReferralCode    = "referrals_code_key"
)

// classifyError maps driver errors onto the service error taxonomy.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", pkgerrors.ErrTransactionTimeout, err)
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, sql.ErrNoRows) {
		return err
	}

	var pqErr *pq.Error
	if !stderrors.As(err, &pqErr) {
		return fmt.Errorf("%w: %w", pkgerrors.ErrPersistence, err)
	}
	switch pqErr.Code {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return fmt.Errorf("%w: %v", pkgerrors.ErrTransactionConflict, err)
	case codeUniqueViolation:
		switch pqErr.Constraint {
		case constraintOperationNumber:
			return pkgerrors.NewFieldError("operationNumber", pkgerrors.ErrDuplicateOperationNumber)
		case constraintReferralCode:
			return pkgerrors.NewFieldError("code", pkgerrors.ErrReferralExists)
		}
	}
	return fmt.Errorf("%w: %w", pkgerrors.ErrPersistence, err)
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
