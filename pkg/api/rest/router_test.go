package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delphi-social/server/pkg/bots"
	"github.com/delphi-social/server/pkg/llm"
	"github.com/delphi-social/server/pkg/pipeline"
	"github.com/delphi-social/server/pkg/posts"
)

type scriptedClient struct {
	responses []string
	calls     int
}

func (c *scriptedClient) Complete(ctx context.Context, system string, prompt string) (string, error) {
	resp := ""
	if c.calls < len(c.responses) {
		resp = c.responses[c.calls]
	}
	c.calls++
	return resp, nil
}

func newTestRouter(t *testing.T, client llm.Client) (*API, *chi.Mux) {
	t.Helper()
	dir := t.TempDir()
	store, err := posts.OpenStore(filepath.Join(dir, "tweets.json"))
	require.NoError(t, err)
	registry, err := bots.OpenRegistry(filepath.Join(dir, "bots.json"))
	require.NoError(t, err)
	debug := pipeline.NewDebugLog()
	api := &API{
		Store:     store,
		Bots:      registry,
		Debug:     debug,
		Responder: pipeline.NewResponder(store, registry, client, debug),
	}
	return api, Router(api)
}

func doRequest(t *testing.T, router *chi.Mux, method string, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResp(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestGetBotStatusEmpty(t *testing.T) {
	_, router := newTestRouter(t, nil)

	rec := doRequest(t, router, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"bots": []}`, rec.Body.String())
}

func TestCreateBotAndConflict(t *testing.T) {
	_, router := newTestRouter(t, nil)

	rec := doRequest(t, router, http.MethodPost, "/bots", map[string]string{"bot_name": "DelphiBot"})
	require.Equal(t, http.StatusOK, rec.Code)
	var list BotListResp
	decodeResp(t, rec, &list)
	require.Len(t, list.Bots, 1)
	assert.Equal(t, "DelphiBot", list.Bots[0].Name)
	assert.False(t, list.Bots[0].IsActive)

	rec = doRequest(t, router, http.MethodPost, "/bots", map[string]string{"bot_name": "delphibot"})
	require.Equal(t, http.StatusConflict, rec.Code)
	var errResp ErrResp
	decodeResp(t, rec, &errResp)
	assert.True(t, errResp.Error)
	assert.Equal(t, "botNameExists", errResp.Type)
}

func TestCreateBotValidation(t *testing.T) {
	_, router := newTestRouter(t, nil)

	rec := doRequest(t, router, http.MethodPost, "/bots", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToggleBot(t *testing.T) {
	_, router := newTestRouter(t, nil)

	doRequest(t, router, http.MethodPost, "/bots", map[string]string{"bot_name": "DelphiBot"})

	rec := doRequest(t, router, http.MethodPost, "/toggle", map[string]interface{}{"botName": "delphibot", "active": true})
	require.Equal(t, http.StatusOK, rec.Code)
	var status BotStatusListResp
	decodeResp(t, rec, &status)
	require.Len(t, status.Bots, 1)
	assert.True(t, status.Bots[0].Active)

	rec = doRequest(t, router, http.MethodPost, "/toggle", map[string]interface{}{"botName": "nobody", "active": true})
	require.Equal(t, http.StatusNotFound, rec.Code)
	var errResp ErrResp
	decodeResp(t, rec, &errResp)
	assert.Equal(t, "notFound", errResp.Type)
}

func TestCreateAndListTweets(t *testing.T) {
	_, router := newTestRouter(t, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/tweets", map[string]string{"text": "hello world", "author": "alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	var created TweetResp
	decodeResp(t, rec, &created)
	assert.NotEmpty(t, created.Tweet.Id)
	assert.Equal(t, "hello world", created.Tweet.Text)

	rec = doRequest(t, router, http.MethodGet, "/api/tweets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var feed []posts.Post
	decodeResp(t, rec, &feed)
	require.Len(t, feed, 1)
	assert.Equal(t, created.Tweet.Id, feed[0].Id)
}

func TestCreateTweetValidation(t *testing.T) {
	_, router := newTestRouter(t, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/tweets", map[string]string{"author": "alice"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var errResp ErrResp
	decodeResp(t, rec, &errResp)
	assert.Equal(t, "badRequest", errResp.Type)
	assert.Contains(t, errResp.Fields, "text")
}

func TestGetTweetThread(t *testing.T) {
	_, router := newTestRouter(t, nil)

	var root TweetResp
	decodeResp(t, doRequest(t, router, http.MethodPost, "/api/tweets", map[string]string{"text": "root", "author": "alice"}), &root)
	var reply1 TweetResp
	decodeResp(t, doRequest(t, router, http.MethodPost, "/api/tweets", map[string]interface{}{"text": "one", "author": "bob", "parent_id": root.Tweet.Id}), &reply1)
	var reply2 TweetResp
	decodeResp(t, doRequest(t, router, http.MethodPost, "/api/tweets", map[string]interface{}{"text": "two", "author": "carol", "parent_id": reply1.Tweet.Id}), &reply2)

	// A reply resolves to the whole thread.
	rec := doRequest(t, router, http.MethodGet, "/api/tweets/"+reply1.Tweet.Id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var thread []posts.Post
	decodeResp(t, rec, &thread)
	assert.Len(t, thread, 2)

	// The root has no thread id and comes back alone.
	rec = doRequest(t, router, http.MethodGet, "/api/tweets/"+root.Tweet.Id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	thread = nil
	decodeResp(t, rec, &thread)
	require.Len(t, thread, 1)
	assert.Equal(t, root.Tweet.Id, thread[0].Id)

	rec = doRequest(t, router, http.MethodGet, "/api/tweets/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetDebugInfoDefault(t *testing.T) {
	_, router := newTestRouter(t, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/debug/whatever", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snapshot pipeline.Snapshot
	decodeResp(t, rec, &snapshot)
	assert.Equal(t, pipeline.Snapshot{}, snapshot)
}

func TestClearSweepsBothStores(t *testing.T) {
	_, router := newTestRouter(t, nil)

	doRequest(t, router, http.MethodPost, "/api/tweets", map[string]string{"text": "temp", "author": "alice"})
	doRequest(t, router, http.MethodPost, "/bots", map[string]string{"bot_name": "TempBot"})

	rec := doRequest(t, router, http.MethodDelete, "/api/tweets/clear", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "success"}`, rec.Body.String())

	var feed []posts.Post
	decodeResp(t, doRequest(t, router, http.MethodGet, "/api/tweets", nil), &feed)
	assert.Empty(t, feed)

	var status BotStatusListResp
	decodeResp(t, doRequest(t, router, http.MethodGet, "/", nil), &status)
	assert.Empty(t, status.Bots)
}

func TestMentionTriggersBotReply(t *testing.T) {
	client := &scriptedClient{responses: []string{"wants a greeting", "hello right back"}}
	api, router := newTestRouter(t, client)

	doRequest(t, router, http.MethodPost, "/bots", map[string]string{"bot_name": "DelphiBot"})
	doRequest(t, router, http.MethodPost, "/toggle", map[string]interface{}{"botName": "DelphiBot", "active": true})

	rec := doRequest(t, router, http.MethodPost, "/api/tweets", map[string]string{"text": "hi @DelphiBot", "author": "alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	var created TweetResp
	decodeResp(t, rec, &created)

	// The creating request never waits on the pipeline; the reply shows up
	// afterwards.
	require.Eventually(t, func() bool {
		snapshot, ok := api.Debug.Latest(created.Tweet.Id)
		return ok && snapshot.Step == pipeline.StepCompleted
	}, 2*time.Second, 10*time.Millisecond)

	var feed []posts.Post
	decodeResp(t, doRequest(t, router, http.MethodGet, "/api/tweets", nil), &feed)
	require.Len(t, feed, 2)
	assert.Equal(t, "DelphiBot", feed[0].Author)
	assert.Equal(t, "@alice hello right back", feed[0].Text)

	rec = doRequest(t, router, http.MethodGet, "/api/debug/"+created.Tweet.Id, nil)
	var snapshot pipeline.Snapshot
	decodeResp(t, rec, &snapshot)
	assert.Equal(t, pipeline.StepCompleted, snapshot.Step)
	assert.Equal(t, "wants a greeting", snapshot.AnalysisResponse)
}
