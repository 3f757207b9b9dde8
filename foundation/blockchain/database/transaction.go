package database

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
)

// ErrInvalidTx is returned when a transaction holds a value that can't be
// recorded into a block.
var ErrInvalidTx = errors.New("invalid transaction")

// Tx represents a single message observed on the network that is recorded
// into the blockchain. Field order is part of the canonical hash.
type Tx struct {
	ID        string  `json:"id"`        // Identifier of the device or node that produced the message.
	Channel   string  `json:"channel"`   // Medium the message travelled on: bluetooth, zigbee, wifi, ethernet.
	Payload   string  `json:"payload"`   // Opaque message content.
	TimeStamp float64 `json:"timestamp"` // Seconds since the epoch when the message was observed.
}

// NewTx constructs a new transaction.
func NewTx(id string, channel string, payload string, timeStamp float64) Tx {
	return Tx{
		ID:        id,
		Channel:   channel,
		Payload:   payload,
		TimeStamp: timeStamp,
	}
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:%s:%.3f", tx.ID, tx.Channel, tx.TimeStamp)
}

// Validate checks the transaction can be hashed canonically. Strings must be
// valid UTF-8 and the timestamp must be a finite number.
func (tx Tx) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"id", tx.ID},
		{"channel", tx.Channel},
		{"payload", tx.Payload},
	}

	for _, f := range fields {
		if !utf8.ValidString(f.value) {
			return fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalidTx, f.name)
		}
	}

	if !finite(tx.TimeStamp) {
		return fmt.Errorf("%w: timestamp %v is not a finite number", ErrInvalidTx, tx.TimeStamp)
	}

	return nil
}

// finite reports whether f is neither NaN nor an infinity.
func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
