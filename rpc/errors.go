package rpc

import (
	"errors"
	"strings"
)

// ErrTxDuplicate is the duplicate-transaction pool rejection. Transports
// should wrap it so the driver can attach pool diagnostics.
var ErrTxDuplicate = errors.New("duplicated transaction in the pool")

// IsDuplicateTx reports whether a broadcast failure is a duplicate-
// transaction condition. Besides the sentinel, the raw node message is
// sniffed because foreign transports surface it as plain text.
func IsDuplicateTx(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTxDuplicate) {
		return true
	}
	return strings.Contains(err.Error(), "PoolRejectedDuplicatedTransaction")
}
