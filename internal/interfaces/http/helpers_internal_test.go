package http

import (
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newRequest(path, lang string) *nethttp.Request {
	req := httptest.NewRequest(nethttp.MethodGet, path, nil)
	req.Header.Set("Accept-Language", lang)
	return req
}

func readBody(t *testing.T, resp *nethttp.Response) string {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}
