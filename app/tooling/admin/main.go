// This program performs administrative tasks against a running node.
package main

import (
	"fmt"
	"os"

	"github.com/meshledger/meshledger/app/tooling/admin/commands"
	"github.com/meshledger/meshledger/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN", "stderr")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	root := commands.NewRootCmd(build, log)
	return root.Execute()
}
