package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wwwzy/RagAgent/internal/agent"
	"github.com/wwwzy/RagAgent/internal/provider"
	"github.com/wwwzy/RagAgent/internal/rag"
	"github.com/wwwzy/RagAgent/internal/storage"
	"github.com/wwwzy/RagAgent/internal/tools"
)

type fixedProvider struct {
	text string
}

func (p *fixedProvider) Name() string { return "fixed" }

func (p *fixedProvider) Chat(_ context.Context, _ provider.ChatRequest) (*provider.Message, error) {
	return &provider.Message{Role: provider.RoleAssistant, Content: p.text}, nil
}

type recordingContexts struct {
	lastTopK int
}

func (c *recordingContexts) Assemble(_ context.Context, _ string, topK int) []rag.ContextBlock {
	c.lastTopK = topK
	return nil
}

type constEmbedder struct{}

func (constEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	return []float64{1, 0}, nil
}

func newTestServer(t *testing.T) (*Server, *recordingContexts, *storage.Storage) {
	t.Helper()

	store, err := storage.Open(context.Background(), storage.Config{
		Path: filepath.Join(t.TempDir(), "ragagent.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	contexts := &recordingContexts{}
	svc, err := agent.NewService(&fixedProvider{text: "hello"}, contexts, tools.NewRegistry(), agent.Config{})
	require.NoError(t, err)

	seeder, err := rag.NewSeeder(constEmbedder{}, store)
	require.NoError(t, err)

	srv, err := New(Config{}, svc, seeder, store)
	require.NoError(t, err)
	return srv, contexts, store
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleAgent(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/api/agent", `{"query":"what is the return policy?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"text":"hello"`)
	assert.Contains(t, rec.Body.String(), `"rag_context_used":false`)
}

func TestHandleAgent_Validation(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/api/agent", `{"query":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "query is required")

	rec = postJSON(t, srv.Handler(), "/api/agent", `{bad json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/agent", nil)
	getRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(getRec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, getRec.Code)
}

func TestHandleAgent_TopKClamped(t *testing.T) {
	srv, contexts, _ := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/api/agent", `{"query":"q","top_k":99}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, maxTopK, contexts.lastTopK)
}

func TestHandleAnswer(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/api/answer", `{"query":"shipping time?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"text":"hello"`)

	rec = postJSON(t, srv.Handler(), "/api/answer", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSeed_DefaultDocuments(t *testing.T) {
	srv, _, store := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/api/seed", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"seeded":8`)

	count, err := store.CountDocumentChunks(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 8, count)
}

func TestHandleSeed_CustomDocuments(t *testing.T) {
	srv, _, store := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/api/seed",
		`{"docs":[{"chunk_id":"custom_v1","source":"s","text":"custom text"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"seeded":1`)

	chunk, err := store.GetDocumentChunk(context.Background(), "custom_v1")
	require.NoError(t, err)
	require.NotNil(t, chunk)
	assert.Equal(t, "custom text", chunk.Text)
}

func TestHandleHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
