package state

import (
	"errors"
	"strings"

	"github.com/meshledger/meshledger/foundation/blockchain/database"
)

// ErrMissingFields is returned when a submitted transaction lacks one or
// more of its required fields.
var ErrMissingFields = errors.New("missing fields")

// MissingFieldsError names the fields absent from a submitted transaction.
type MissingFieldsError struct {
	Fields []string
}

// Error implements the error interface.
func (e *MissingFieldsError) Error() string {
	return "missing fields: " + strings.Join(e.Fields, ", ")
}

// Unwrap allows errors.Is to match ErrMissingFields.
func (e *MissingFieldsError) Unwrap() error {
	return ErrMissingFields
}

// =============================================================================

// NewTx is a transaction as submitted by a client. A nil field was absent
// from the submission. An empty string is a present value.
type NewTx struct {
	ID        *string  `json:"id"`
	Channel   *string  `json:"channel"`
	Payload   *string  `json:"payload"`
	TimeStamp *float64 `json:"timestamp"`
}

// Tx checks every field is present and converts the submission into a
// transaction. The values must be recordable as checked by
// database.Tx.Validate.
func (ntx NewTx) Tx() (database.Tx, error) {
	var missing []string
	if ntx.ID == nil {
		missing = append(missing, "id")
	}
	if ntx.Channel == nil {
		missing = append(missing, "channel")
	}
	if ntx.Payload == nil {
		missing = append(missing, "payload")
	}
	if ntx.TimeStamp == nil {
		missing = append(missing, "timestamp")
	}

	if len(missing) > 0 {
		return database.Tx{}, &MissingFieldsError{Fields: missing}
	}

	tx := database.NewTx(*ntx.ID, *ntx.Channel, *ntx.Payload, *ntx.TimeStamp)
	if err := tx.Validate(); err != nil {
		return database.Tx{}, err
	}

	return tx, nil
}

// =============================================================================

// SubmitTransaction adds a new transaction to the mempool and returns the
// index of the block it is expected to land in.
func (s *State) SubmitTransaction(ntx NewTx) (uint64, error) {
	tx, err := ntx.Tx()
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	n := s.mempool.Add(tx)
	index := s.db.LatestBlock().Index + 1
	s.mu.Unlock()

	s.evHandler("state: SubmitTransaction: tx[%s]: pool[%d]: block[%d]", tx, n, index)

	// Let the worker know there is work to mine.
	s.Worker.SignalStartMining()

	return index, nil
}
