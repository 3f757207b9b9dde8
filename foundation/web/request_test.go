package web_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/meshledger/meshledger/foundation/validate"
	"github.com/meshledger/meshledger/foundation/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registration struct {
	Node string `json:"node" validate:"required"`
}

func Test_Decode(t *testing.T) {
	t.Run("decodes a valid document", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/v1/nodes/register", strings.NewReader(`{"node":"10.0.0.2:5000"}`))

		var reg registration
		require.NoError(t, web.Decode(r, &reg))
		assert.Equal(t, "10.0.0.2:5000", reg.Node)
	})

	t.Run("reports field errors", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/v1/nodes/register", strings.NewReader(`{}`))

		var reg registration
		err := web.Decode(r, &reg)
		require.Error(t, err)
		assert.True(t, validate.IsFieldErrors(err))
	})

	t.Run("stops reading at the body limit", func(t *testing.T) {
		body := `{"node":"` + strings.Repeat("a", int(web.MaxBodyBytes)) + `"}`
		r := httptest.NewRequest(http.MethodPost, "/v1/nodes/register", strings.NewReader(body))

		var reg registration
		err := web.Decode(r, &reg)
		require.Error(t, err)
		assert.ErrorContains(t, err, "request body exceeds")
		assert.Empty(t, reg.Node)
	})
}
