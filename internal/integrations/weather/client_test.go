package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubParams struct {
	value string
	err   error
	calls int
}

func (s *stubParams) GetParameter(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.value, s.err
}

func tokenParams() *stubParams {
	return &stubParams{value: `{"token":"test-api-key"}`}
}

func newTestServer(t *testing.T, status int, body string, gotQuery *map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/data/2.5/weather", r.URL.Path)
		if gotQuery != nil {
			q := map[string]string{}
			for k := range r.URL.Query() {
				q[k] = r.URL.Query().Get(k)
			}
			*gotQuery = q
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestNewClient_ValidatesArguments(t *testing.T) {
	_, err := NewClient(nil, "/prefix")
	require.Error(t, err)
	_, err = NewClient(tokenParams(), " ")
	require.Error(t, err)
}

func TestCurrentTemperature_QueryAndFloor(t *testing.T) {
	var query map[string]string
	srv := newTestServer(t, http.StatusOK, `{"main":{"temp":18.9}}`, &query)
	defer srv.Close()

	c, err := NewClient(tokenParams(), "/prefix", WithBaseURL(srv.URL))
	require.NoError(t, err)

	temp, err := c.CurrentTemperature(context.Background(), "123-4567", "JP")
	require.NoError(t, err)
	require.Equal(t, 18, temp)

	require.Equal(t, "metric", query["units"])
	require.Equal(t, "123-4567,JP", query["zip"])
	require.Equal(t, "test-api-key", query["appid"])
}

func TestCurrentTemperature_FloorsNegativeValues(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"main":{"temp":-0.5}}`, nil)
	defer srv.Close()

	c, err := NewClient(tokenParams(), "/prefix", WithBaseURL(srv.URL))
	require.NoError(t, err)

	temp, err := c.CurrentTemperature(context.Background(), "123-4567", "JP")
	require.NoError(t, err)
	require.Equal(t, -1, temp)
}

func TestCurrentTemperature_Non2xxFails(t *testing.T) {
	srv := newTestServer(t, http.StatusNotFound, `{"cod":"404"}`, nil)
	defer srv.Close()

	c, err := NewClient(tokenParams(), "/prefix", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = c.CurrentTemperature(context.Background(), "999-9999", "JP")
	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestCurrentTemperature_MalformedBodyFails(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `not-json`, nil)
	defer srv.Close()

	c, err := NewClient(tokenParams(), "/prefix", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = c.CurrentTemperature(context.Background(), "123-4567", "JP")
	require.Error(t, err)
}

func TestCurrentTemperature_APIKeyFetchedOnce(t *testing.T) {
	params := tokenParams()
	srv := newTestServer(t, http.StatusOK, `{"main":{"temp":20.0}}`, nil)
	defer srv.Close()

	c, err := NewClient(params, "/prefix", WithBaseURL(srv.URL))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := c.CurrentTemperature(context.Background(), "123-4567", "JP")
		require.NoError(t, err)
	}
	require.Equal(t, 1, params.calls)
}

func TestCurrentTemperature_KeyFetchFailure(t *testing.T) {
	c, err := NewClient(&stubParams{err: errors.New("ssm down")}, "/prefix")
	require.NoError(t, err)

	_, err = c.CurrentTemperature(context.Background(), "123-4567", "JP")
	require.Error(t, err)
}

func TestCurrentTemperature_RequiresInputs(t *testing.T) {
	c, err := NewClient(tokenParams(), "/prefix")
	require.NoError(t, err)

	_, err = c.CurrentTemperature(context.Background(), "", "JP")
	require.Error(t, err)
	_, err = c.CurrentTemperature(context.Background(), "123-4567", "")
	require.Error(t, err)
}
