package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEmbeddingURL(t *testing.T) {
	cases := map[string]string{
		"http://localhost:11434":               "http://localhost:11434/v1/embeddings",
		"http://localhost:11434/v1":            "http://localhost:11434/v1/embeddings",
		"http://localhost:11434/v1/":           "http://localhost:11434/v1/embeddings",
		"http://localhost:11434/v1/embeddings": "http://localhost:11434/v1/embeddings",
	}

	for input, want := range cases {
		assert.Equal(t, want, buildEmbeddingURL(input), "input=%s", input)
	}
}

func TestClient_EmbedQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req EmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"公共艺术"}, req.Input)

		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{0.1, 0.2, 0.3}, "index": 0},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")

	vector, err := client.EmbedQuery(context.Background(), "公共艺术")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
}

func TestClient_EmbedTexts_OrderByIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 响应乱序返回，客户端按 index 归位
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{0.2}, "index": 1},
				{"embedding": []float32{0.1}, "index": 0},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "test-model")

	vectors, err := client.EmbedTexts(context.Background(), []string{"甲", "乙"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{0.1}, vectors[0])
	assert.Equal(t, []float32{0.2}, vectors[1])
}

func TestClient_EmbedTexts_Empty(t *testing.T) {
	client := NewClient("http://localhost:11434", "", "test-model")

	_, err := client.EmbedTexts(context.Background(), nil)
	assert.Error(t, err)
}

func TestClient_EmbedQuery_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "test-model")

	_, err := client.EmbedQuery(context.Background(), "公共艺术")
	assert.Error(t, err)
}
