// Package commands contains the admin commands that talk to a node.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// NewRootCmd constructs the admin command tree. Flags can also be provided
// through MESHLEDGER_ prefixed environment variables or a config file.
func NewRootCmd(build string, log *zap.SugaredLogger) *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:          "admin",
		Short:        "Administer a meshledger node",
		Long:         `admin submits transactions, mines blocks and manages the peers of a meshledger node.`,
		Version:      build,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if path := v.GetString("config"); path != "" {
				v.SetConfigFile(path)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("reading config: %w", err)
				}
				log.Infow("admin", "status", "using config file", "file", v.ConfigFileUsed())
			}
			return nil
		},
	}

	root.PersistentFlags().String("config", "", "config file")
	root.PersistentFlags().StringP("node", "n", "http://localhost:8080", "address of the node")
	root.PersistentFlags().Duration("timeout", 30*time.Second, "request timeout")
	if err := v.BindPFlags(root.PersistentFlags()); err != nil {
		log.Errorw("admin", "status", "binding flags", "ERROR", err)
	}

	v.SetEnvPrefix("meshledger")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	client := func() *Client {
		return NewClient(v.GetString("node"), v.GetDuration("timeout"))
	}

	root.AddCommand(
		submitCmd(client),
		mineCmd(client),
		chainCmd(client),
		registerCmd(client),
		resolveCmd(client),
		peersCmd(client),
		poolCmd(client),
	)

	return root
}

// printJSON writes the value indented to the writer.
func printJSON(w io.Writer, val any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(val)
}
