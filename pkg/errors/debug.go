package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// WriteDiagnostics is what the request error log carries for a failed
// operation: the coded error, the unwrap chain, and the Postgres driver
// detail when a write tripped a constraint. In this schema that is almost
// always the orders intent-id unique or the cart (user, product) unique.
type WriteDiagnostics struct {
	Message string `json:"message"`
	Code    Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
}

// Diagnose walks the error chain and pulls out whatever a log reader needs
// to identify the failing statement without re-running it. Both Postgres
// drivers in use are understood; anything else yields just the chain.
func Diagnose(err error) WriteDiagnostics {
	if err == nil {
		return WriteDiagnostics{}
	}

	diag := WriteDiagnostics{Message: err.Error()}
	if typed := As(err); typed != nil {
		diag.Code = typed.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		diag.Chain = append(diag.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgxErr):
		diag.PGCode = pgxErr.Code
		diag.PGConstraint = pgxErr.ConstraintName
		diag.PGDetail = pgxErr.Detail
	case errors.As(err, &pqErr):
		diag.PGCode = string(pqErr.Code)
		diag.PGConstraint = pqErr.Constraint
		diag.PGDetail = pqErr.Detail
	}

	return diag
}
