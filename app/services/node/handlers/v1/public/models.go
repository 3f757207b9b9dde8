package public

import (
	"github.com/meshledger/meshledger/foundation/blockchain/database"
)

type submitted struct {
	Message string `json:"message"`
	Index   uint64 `json:"index"`
}

type mined struct {
	Message      string        `json:"message"`
	Index        uint64        `json:"index"`
	Transactions []database.Tx `json:"transactions"`
	Proof        uint64        `json:"proof"`
	PreviousHash string        `json:"previous_hash"`
}

// Registration is the body accepted to register a peer node.
type Registration struct {
	Node string `json:"node" validate:"required"`
}

type registered struct {
	Message string   `json:"message"`
	Nodes   []string `json:"nodes"`
}

type resolved struct {
	Message  string           `json:"message"`
	Replaced bool             `json:"replaced"`
	Chain    []database.Block `json:"chain"`
}
