package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/meshledger/meshledger/foundation/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.log")

	log, err := logger.New("NODE", path)
	require.NoError(t, err)

	log.Infow("startup", "status", "testing")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"service":"NODE"`)
	assert.Contains(t, string(data), `"msg":"startup"`)
	assert.Contains(t, string(data), `"status":"testing"`)
}
