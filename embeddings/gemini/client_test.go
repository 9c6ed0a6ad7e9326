package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type batchRequest struct {
	Requests []struct {
		Model   string `json:"model"`
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		TaskType int `json:"taskType"`
	} `json:"requests"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	c, err := New(context.Background(), "test-key", "", option.WithEndpoint(server.URL), option.WithHTTPClient(server.Client()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNew_MissingKey(t *testing.T) {
	c, err := New(context.Background(), "", "")
	require.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Nil(t, c)
}

func TestVectors(t *testing.T) {
	testCases := []struct {
		description string
		resp        *genai.BatchEmbedContentsResponse
		expected    int
		want        [][]float32
		wantErr     bool
	}{
		{
			description: "keeps provider order",
			resp: &genai.BatchEmbedContentsResponse{Embeddings: []*genai.ContentEmbedding{
				{Values: []float32{0.1, 0.2}},
				{Values: []float32{0.3, 0.4}},
			}},
			expected: 2,
			want:     [][]float32{{0.1, 0.2}, {0.3, 0.4}},
		},
		{description: "nil response", resp: nil, expected: 1, wantErr: true},
		{
			description: "count mismatch",
			resp:        &genai.BatchEmbedContentsResponse{Embeddings: []*genai.ContentEmbedding{{Values: []float32{1}}}},
			expected:    2,
			wantErr:     true,
		},
		{
			description: "nil embedding",
			resp:        &genai.BatchEmbedContentsResponse{Embeddings: []*genai.ContentEmbedding{nil}},
			expected:    1,
			wantErr:     true,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			got, err := vectors(testCase.resp, testCase.expected)
			if testCase.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestClient_CloseNil(t *testing.T) {
	var c *Client
	assert.NoError(t, c.Close())
}

func TestClient_Embed(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/"+DefaultModel+":batchEmbedContents", r.URL.Path)
		var req batchRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		var texts []string
		for _, item := range req.Requests {
			assert.Equal(t, "models/"+DefaultModel, item.Model)
			assert.Equal(t, int(genai.TaskTypeRetrievalDocument), item.TaskType)
			for _, part := range item.Content.Parts {
				texts = append(texts, part.Text)
			}
		}
		assert.Equal(t, []string{"Patient Intake Form", "Triage protocol", "Discharge summary"}, texts)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"embeddings":[{"values":[0.1,0.2]},{"values":[0.3,0.4]},{"values":[0.5,0.6]}]}`))
	})

	vecs, err := c.EmbedDocuments(context.Background(), []string{"Patient Intake Form", "Triage protocol", "Discharge summary"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, [][]float32{{0.1, 0.2}, {0.3, 0.4}, {0.5, 0.6}}, vecs)
}

func TestClient_EmbedEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	})
	vecs, err := c.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}

func TestClient_EmbedErrors(t *testing.T) {
	testCases := []struct {
		description string
		status      int
		body        string
	}{
		{description: "rate limited", status: http.StatusTooManyRequests, body: `{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`},
		{description: "server error", status: http.StatusInternalServerError, body: `{"error":{"code":500,"message":"Internal error","status":"INTERNAL"}}`},
		{description: "short response", status: http.StatusOK, body: `{"embeddings":[{"values":[0.1]}]}`},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(testCase.status)
				_, _ = w.Write([]byte(testCase.body))
			})
			_, err := c.EmbedDocuments(context.Background(), []string{"first page text", "second page text"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "gemini embed:")
		})
	}
}
