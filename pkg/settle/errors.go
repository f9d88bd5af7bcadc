package settle

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrNonPositiveAmount rejects transactions whose amount is zero or negative.
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
	// ErrSelfDebt rejects transactions where a person owes themselves.
	ErrSelfDebt = errors.New("debtor and creditor are the same person")
	// ErrAsymmetry marks a graph whose mirror edges disagree.
	ErrAsymmetry = errors.New("graph violates antisymmetry")
)

// InvalidTransactionError reports a transaction that cannot be applied to a
// graph. Index is the transaction's position in the input slice, or -1 when
// the transaction was applied on its own.
type InvalidTransactionError struct {
	Index int
	Tx    Transaction
	Err   error
}

func (e *InvalidTransactionError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("transaction %d (%s owes %s %s): %v",
			e.Index, e.Tx.Debtor, e.Tx.Creditor, e.Tx.Amount, e.Err)
	}
	return fmt.Sprintf("transaction (%s owes %s %s): %v",
		e.Tx.Debtor, e.Tx.Creditor, e.Tx.Amount, e.Err)
}

func (e *InvalidTransactionError) Unwrap() error { return e.Err }

// MalformedGraphError reports the first edge pair found to violate
// antisymmetry: graph[From][To] holds Forward while graph[To][From] holds
// Reverse (zero when the mirror edge is absent), and Forward != -Reverse.
// A nonzero self edge is reported the same way with From == To.
type MalformedGraphError struct {
	From    PersonID
	To      PersonID
	Forward decimal.Decimal
	Reverse decimal.Decimal
}

func (e *MalformedGraphError) Error() string {
	if e.From == e.To {
		return fmt.Sprintf("malformed graph: self edge %s -> %s holds %s", e.From, e.To, e.Forward)
	}
	return fmt.Sprintf("malformed graph: edge %s -> %s holds %s but mirror holds %s",
		e.From, e.To, e.Forward, e.Reverse)
}

func (e *MalformedGraphError) Unwrap() error { return ErrAsymmetry }
