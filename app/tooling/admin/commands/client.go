package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/meshledger/meshledger/business/web/errs"
	"github.com/meshledger/meshledger/foundation/blockchain/database"
	"github.com/meshledger/meshledger/foundation/blockchain/peer"
	"github.com/meshledger/meshledger/foundation/blockchain/state"
)

// Client talks to the public API of a node.
type Client struct {
	http *resty.Client
}

// NewClient constructs a client for the node at the specified address.
func NewClient(node string, timeout time.Duration) *Client {
	if !strings.Contains(node, "://") {
		node = "http://" + node
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(node, "/")+"/v1").
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{http: client}
}

// Submitted is the response to a submitted transaction.
type Submitted struct {
	Message string `json:"message"`
	Index   uint64 `json:"index"`
}

// Mined is the response to a mining request.
type Mined struct {
	Message      string        `json:"message"`
	Index        uint64        `json:"index"`
	Transactions []database.Tx `json:"transactions"`
	Proof        uint64        `json:"proof"`
	PreviousHash string        `json:"previous_hash"`
}

// Registered is the response to a node registration.
type Registered struct {
	Message string   `json:"message"`
	Nodes   []string `json:"nodes"`
}

// Resolved is the response to a consensus request.
type Resolved struct {
	Message  string           `json:"message"`
	Replaced bool             `json:"replaced"`
	Chain    []database.Block `json:"chain"`
}

// SubmitTransaction sends a transaction to the node.
func (c *Client) SubmitTransaction(ntx state.NewTx) (Submitted, error) {
	var resp Submitted
	err := c.do(c.http.R().SetBody(ntx).SetResult(&resp), "POST", "/transactions/new")
	return resp, err
}

// Mine asks the node to mine the next block.
func (c *Client) Mine() (Mined, error) {
	var resp Mined
	err := c.do(c.http.R().SetResult(&resp), "GET", "/mine")
	return resp, err
}

// Chain returns the chain held by the node.
func (c *Client) Chain() (peer.PeerChain, error) {
	var resp peer.PeerChain
	err := c.do(c.http.R().SetResult(&resp), "GET", "/chain")
	return resp, err
}

// RegisterNode registers a peer with the node.
func (c *Client) RegisterNode(address string) (Registered, error) {
	var resp Registered
	body := map[string]string{"node": address}
	err := c.do(c.http.R().SetBody(body).SetResult(&resp), "POST", "/nodes/register")
	return resp, err
}

// ResolveConsensus asks the node to resolve consensus with its peers.
func (c *Client) ResolveConsensus() (Resolved, error) {
	var resp Resolved
	err := c.do(c.http.R().SetResult(&resp), "GET", "/nodes/resolve")
	return resp, err
}

// Peers returns the peers known by the node.
func (c *Client) Peers() ([]string, error) {
	var resp []string
	err := c.do(c.http.R().SetResult(&resp), "GET", "/nodes/list")
	return resp, err
}

// Mempool returns the transactions waiting to be mined.
func (c *Client) Mempool() ([]database.Tx, error) {
	var resp []database.Tx
	err := c.do(c.http.R().SetResult(&resp), "GET", "/tx/uncommitted/list")
	return resp, err
}

// =============================================================================

func (c *Client) do(req *resty.Request, method string, path string) error {
	var er errs.Response
	req.SetError(&er)

	resp, err := req.Execute(method, path)
	if err != nil {
		return err
	}

	if resp.IsError() {
		msg := er.Error
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		if msg == "" {
			return errors.New(resp.Status())
		}
		if len(er.Fields) > 0 {
			return fmt.Errorf("%s: %s: %v", resp.Status(), msg, er.Fields)
		}
		return fmt.Errorf("%s: %s", resp.Status(), msg)
	}

	return nil
}
