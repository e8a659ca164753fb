package api_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/yamusic/yandex/api"
)

func newServer(t *testing.T, handler http.HandlerFunc) *api.HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return api.NewHTTPClient("secret", api.WithBaseURL(srv.URL), api.WithHTTPClient(srv.Client()))
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestRequestHeaders(t *testing.T) {
	t.Parallel()

	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "OAuth secret", r.Header.Get("Authorization"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "test-client", r.Header.Get("X-Yandex-Music-Client"))
		assert.Len(t, r.Header.Get("X-Request-Id"), 36)
		writeJSON(w, http.StatusOK, `{"result":{}}`)
	})
	client = api.NewHTTPClient("secret", api.WithBaseURL(client.BaseURL()), api.WithUserAgent("test-agent"), api.WithClientID("test-client"))

	_, err := client.AccountStatus(context.Background())
	require.NoError(t, err)
}

func TestRequestAnonymous(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"result":[]}`)
	}))
	t.Cleanup(srv.Close)

	client := api.NewHTTPClient("", api.WithBaseURL(srv.URL))
	_, err := client.AccountStatus(context.Background())
	require.NoError(t, err)
}

func TestRequestUnwrapsEnvelope(t *testing.T) {
	t.Parallel()

	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tracks", r.URL.Path)
		assert.Equal(t, "1,2", r.URL.Query().Get("track-ids"))
		assert.Equal(t, "false", r.URL.Query().Get("with-positions"))
		writeJSON(w, http.StatusOK, `{"invocationInfo":{"req-id":"x"},"result":[{"id":1},{"id":"2"}]}`)
	})

	resp, err := client.Tracks(context.Background(), []api.ID{"1", "2"}, false)
	require.NoError(t, err)
	require.True(t, resp.JSON)

	var tracks []struct {
		ID api.ID `json:"id"`
	}
	require.NoError(t, resp.Decode(&tracks))
	require.Len(t, tracks, 2)
	assert.Equal(t, api.ID("1"), tracks[0].ID)
	assert.Equal(t, api.ID("2"), tracks[1].ID)
}

func TestRequestWithoutEnvelope(t *testing.T) {
	t.Parallel()

	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":true}`)
	})

	resp, err := client.AccountStatus(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
}

func TestRequestText(t *testing.T) {
	t.Parallel()

	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "ok")
	})

	resp, err := client.AccountStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, resp.JSON)
	assert.Equal(t, "ok", resp.Text())
	require.Error(t, resp.Decode(&struct{}{}))
}

func TestRequestStatusErrors(t *testing.T) {
	t.Parallel()

	t.Run("NotFound", func(t *testing.T) {
		t.Parallel()
		client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, `{"error":{"name":"not-found","message":"Track not found"}}`)
		})

		_, err := client.DownloadInfo(context.Background(), "1")
		var notFound *api.NotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, http.StatusNotFound, notFound.StatusCode)
		assert.Equal(t, "not-found", notFound.Name)
		assert.Equal(t, "Track not found", notFound.Message)

		var httpErr *api.HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	})

	t.Run("Forbidden", func(t *testing.T) {
		t.Parallel()
		client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusForbidden, `{"error":"forbidden","error_description":"no subscription"}`)
		})

		_, err := client.DownloadInfo(context.Background(), "1")
		var forbidden *api.ForbiddenError
		require.True(t, errors.As(err, &forbidden))
		assert.Equal(t, "forbidden", forbidden.Name)
		assert.Equal(t, "no subscription", forbidden.Message)
	})

	t.Run("ServerError", func(t *testing.T) {
		t.Parallel()
		client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "bad gateway")
		})

		_, err := client.AccountStatus(context.Background())
		var serverErr *api.ServerError
		require.True(t, errors.As(err, &serverErr))
		assert.Equal(t, http.StatusBadGateway, serverErr.StatusCode)
		assert.Equal(t, "bad gateway", string(serverErr.Body))
	})

	t.Run("BadRequest", func(t *testing.T) {
		t.Parallel()
		client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, `{"error":{"name":"validate","message":"bad"}}`)
		})

		_, err := client.AccountStatus(context.Background())
		var httpErr *api.HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
		assert.Equal(t, "validate", httpErr.Name)

		var notFound *api.NotFoundError
		assert.False(t, errors.As(err, &notFound))
	})

	t.Run("TooManyRequestsFromEdge", func(t *testing.T) {
		t.Parallel()
		client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = io.WriteString(w, "<html>captcha</html>")
		})

		_, err := client.AccountStatus(context.Background())
		var httpErr *api.HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
		assert.True(t, httpErr.EdgeBlocked)
	})

	t.Run("TooManyRequestsFromAPI", func(t *testing.T) {
		t.Parallel()
		client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Via", "1.1 api")
			writeJSON(w, http.StatusTooManyRequests, `{"error":{"name":"rate-limit","message":"slow down"}}`)
		})

		_, err := client.AccountStatus(context.Background())
		var httpErr *api.HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.False(t, httpErr.EdgeBlocked)
		assert.Equal(t, "rate-limit", httpErr.Name)
	})
}

func TestRequestForm(t *testing.T) {
	t.Parallel()

	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/100/likes/tracks/add-multiple", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "1,2", r.PostForm.Get("track-ids"))
		writeJSON(w, http.StatusOK, `{"result":{"revision":5}}`)
	})

	resp, err := client.LikeTracks(context.Background(), "100", []api.ID{"1", "2"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"revision":5}`, string(resp.Body))
}

func TestRequestJSONBody(t *testing.T) {
	t.Parallel()

	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		b, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"a":1}`, string(b))
		writeJSON(w, http.StatusOK, `{"result":"ok"}`)
	})

	route, err := client.Route(http.MethodPost, "/echo", nil)
	require.NoError(t, err)
	resp, err := client.Request(context.Background(), route, api.RequestOptions{JSON: map[string]int{"a": 1}})
	require.NoError(t, err)
	assert.Equal(t, `"ok"`, string(resp.Body))
}

func TestEditPlaylistTracks(t *testing.T) {
	t.Parallel()

	t.Run("Success", func(t *testing.T) {
		t.Parallel()
		client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/users/owner/playlists/3/change-relative", r.URL.Path)
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "7", r.PostForm.Get("revision"))
			assert.Equal(t, "3", r.PostForm.Get("kind"))
			assert.JSONEq(t, `[{"op":"delete","from":0,"to":1}]`, r.PostForm.Get("diff"))
			writeJSON(w, http.StatusOK, `{"result":{"kind":3,"revision":8}}`)
		})

		_, err := client.EditPlaylistTracks(context.Background(), "owner", 3, 7, json.RawMessage(`[{"op":"delete","from":0,"to":1}]`))
		require.NoError(t, err)
	})

	t.Run("WrongRevision", func(t *testing.T) {
		t.Parallel()
		client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, `{"error":{"name":"wrong-revision","message":"Wrong revision"}}`)
		})

		_, err := client.EditPlaylistTracks(context.Background(), "owner", 3, 7, json.RawMessage(`[]`))
		var conflict *api.RevisionConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, 7, conflict.Revision)
		assert.Equal(t, "owner", conflict.Owner)

		var httpErr *api.HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	})

	t.Run("PreconditionFailed", func(t *testing.T) {
		t.Parallel()
		client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusPreconditionFailed)
		})

		_, err := client.EditPlaylistTracks(context.Background(), "owner", 3, 7, json.RawMessage(`[]`))
		var conflict *api.RevisionConflictError
		require.True(t, errors.As(err, &conflict))
	})
}

func TestDocumentAndStream(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/doc":
			w.Header().Set("Content-Type", "text/xml")
			_, _ = io.WriteString(w, "<download-info/>")
		case "/media":
			w.Header().Set("Content-Length", "5")
			_, _ = io.WriteString(w, "audio")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	client := api.NewHTTPClient("secret")

	doc, err := client.DownloadInfoDocument(context.Background(), srv.URL+"/doc")
	require.NoError(t, err)
	assert.Equal(t, "<download-info/>", string(doc))

	body, size, err := client.Stream(context.Background(), srv.URL+"/media")
	require.NoError(t, err)
	b, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	assert.Equal(t, "audio", string(b))
	assert.Equal(t, int64(5), size)

	_, _, err = client.Stream(context.Background(), srv.URL+"/missing")
	var notFound *api.NotFoundError
	require.True(t, errors.As(err, &notFound))
}

func TestRequestCanceled(t *testing.T) {
	t.Parallel()

	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.AccountStatus(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSearchQuery(t *testing.T) {
	t.Parallel()

	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, url.Values{
			"text":             {"Sting"},
			"nocorrect":        {"false"},
			"type":             {"all"},
			"page":             {"0"},
			"playlist-in-best": {"true"},
		}, q)
		writeJSON(w, http.StatusOK, `{"result":{}}`)
	})

	_, err := client.Search(context.Background(), "Sting", api.SearchAll, 0, false)
	require.NoError(t, err)
}
