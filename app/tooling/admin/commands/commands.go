package commands

import (
	"fmt"

	"github.com/meshledger/meshledger/foundation/blockchain/database"
	"github.com/meshledger/meshledger/foundation/blockchain/state"
	"github.com/spf13/cobra"
)

func submitCmd(client func() *Client) *cobra.Command {
	var (
		id        string
		channel   string
		payload   string
		timeStamp float64
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("timestamp") {
				timeStamp = database.Now()
			}

			resp, err := client().SubmitTransaction(state.NewTx{
				ID:        &id,
				Channel:   &channel,
				Payload:   &payload,
				TimeStamp: &timeStamp,
			})
			if err != nil {
				return fmt.Errorf("submitting transaction: %w", err)
			}

			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "sender id")
	cmd.Flags().StringVar(&channel, "channel", "", "channel the message belongs to")
	cmd.Flags().StringVar(&payload, "payload", "", "message payload")
	cmd.Flags().Float64Var(&timeStamp, "timestamp", 0, "seconds since the epoch, defaults to now")
	cmd.MarkFlagRequired("id")

	return cmd
}

func mineCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "Mine the next block",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client().Mine()
			if err != nil {
				return fmt.Errorf("mining: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func chainCmd(client func() *Client) *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Show the chain held by the node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pc, err := client().Chain()
			if err != nil {
				return fmt.Errorf("retrieving chain: %w", err)
			}

			if verify {
				if err := database.ValidateChain(pc.Chain); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "chain of %d blocks is valid\n", pc.Length)
				return nil
			}

			return printJSON(cmd.OutOrStdout(), pc)
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "validate the chain instead of printing it")

	return cmd
}

func registerCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "register <address>...",
		Short: "Register peers with the node",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp Registered
			for _, address := range args {
				var err error
				if resp, err = client().RegisterNode(address); err != nil {
					return fmt.Errorf("registering %q: %w", address, err)
				}
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func resolveCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Resolve consensus with the peers of the node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client().ResolveConsensus()
			if err != nil {
				return fmt.Errorf("resolving consensus: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: length %d\n", resp.Message, len(resp.Chain))
			return nil
		},
	}
}

func peersCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "peers",
		Short: "List the peers known by the node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			peers, err := client().Peers()
			if err != nil {
				return fmt.Errorf("listing peers: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), peers)
		},
	}
}

func poolCmd(client func() *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "pool",
		Short: "List the transactions waiting to be mined",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			trans, err := client().Mempool()
			if err != nil {
				return fmt.Errorf("listing mempool: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), trans)
		},
	}
}
