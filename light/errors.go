package light

import (
	"fmt"
	"time"

	"github.com/lightring/lightring/types"
)

// ErrConfiguration means the driver's configuration does not match reality:
// a bad or missing type id, a cells-count mismatch, or a missing on-chain
// deployment. Unrecoverable locally; do not retry.
type ErrConfiguration struct {
	Reason string
	Err    error
}

func (e ErrConfiguration) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("configuration: %s", e.Reason)
}

func (e ErrConfiguration) Unwrap() error { return e.Err }

// ErrKeyAccess means the signing key is missing or unusable. Unrecoverable
// locally.
type ErrKeyAccess struct {
	KeyName string
	Reason  error
}

func (e ErrKeyAccess) Error() string {
	return fmt.Sprintf("key access (%s): %v", e.KeyName, e.Reason)
}

func (e ErrKeyAccess) Unwrap() error { return e.Reason }

// ErrAlignment means the native update batch and the on-chain state share no
// contiguous boundary, so a verifiable proof cannot be produced.
type ErrAlignment struct {
	ChainID string
	Reason  string
}

func (e ErrAlignment) Error() string {
	return fmt.Sprintf("cannot align updates for chain %s: %s", e.ChainID, e.Reason)
}

// ErrVerification means the cryptographic aggregation failed or produced an
// unusable record.
type ErrVerification struct {
	ChainID string
	From    types.Slot
	To      types.Slot
	Reason  error
}

func (e ErrVerification) Error() string {
	return fmt.Sprintf("verify chain %s slots [%d, %d] failed: %v", e.ChainID, e.From, e.To, e.Reason)
}

func (e ErrVerification) Unwrap() error { return e.Reason }

// ErrInsufficientUpdates means the verified slot span is below the family's
// minimal updates count; the transaction was never attempted. The caller may
// retry once more updates have accumulated.
type ErrInsufficientUpdates struct {
	Span uint64
	Want uint64
}

func (e ErrInsufficientUpdates) Error() string {
	return fmt.Sprintf("not enough updates to update multi-client: span %d below minimum %d", e.Span, e.Want)
}

// ErrSubmission means the broadcast was rejected. Diagnostics carries the
// node's pool snapshot when the rejection was a duplicate transaction.
type ErrSubmission struct {
	Reason      error
	Diagnostics string
}

func (e ErrSubmission) Error() string {
	if e.Diagnostics != "" {
		return fmt.Sprintf("send transaction: %v\n%s", e.Reason, e.Diagnostics)
	}
	return fmt.Sprintf("send transaction: %v", e.Reason)
}

func (e ErrSubmission) Unwrap() error { return e.Reason }

// ErrTimeout means the confirmation deadline passed without the transaction
// reaching a committed status. The transaction may still land later; this
// driver does not track it further.
type ErrTimeout struct {
	TxHash types.Hash
	After  time.Duration
}

func (e ErrTimeout) Error() string {
	return fmt.Sprintf("transaction %s not committed within %s", e.TxHash, e.After)
}

// ErrStorage means the local proof store failed to read, write or roll
// back. A rollback failure is reported in place of the error that triggered
// the rollback.
type ErrStorage struct {
	Op     string
	Reason error
}

func (e ErrStorage) Error() string {
	return fmt.Sprintf("proof store %s: %v", e.Op, e.Reason)
}

func (e ErrStorage) Unwrap() error { return e.Reason }

// ErrClientsAlreadyExist reports that a create was attempted against an
// already-bootstrapped family; Slot is the base slot the existing family
// was created at.
type ErrClientsAlreadyExist struct {
	Slot types.Slot
}

func (e ErrClientsAlreadyExist) Error() string {
	return fmt.Sprintf("multi-client cells already exist (created at slot %d)", e.Slot)
}
