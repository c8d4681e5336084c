package typesense

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/patientqueue/pkg/config"
)

// fakeTypesense answers the health and collection endpoints used at startup
type fakeTypesense struct {
	mu          sync.Mutex
	collections []map[string]interface{}
	created     []string
}

func (f *fakeTypesense) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/health":
		_, _ = w.Write([]byte(`{"ok":true}`))
	case r.Method == http.MethodGet && r.URL.Path == "/collections":
		_ = json.NewEncoder(w).Encode(f.collections)
	case r.Method == http.MethodPost && r.URL.Path == "/collections":
		var schema map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&schema)
		name, _ := schema["name"].(string)
		f.created = append(f.created, name)
		schema["num_documents"] = 0
		schema["created_at"] = 1
		f.collections = append(f.collections, schema)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(schema)
	default:
		http.NotFound(w, r)
	}
}

func TestClient_InitSchemaCreatesOnce(t *testing.T) {
	fake := &fakeTypesense{collections: []map[string]interface{}{}}
	server := httptest.NewServer(fake)
	defer server.Close()

	client, err := NewClient(&config.TypesenseConfig{URL: server.URL, APIKey: "xyz"})
	require.NoError(t, err)
	require.NotNil(t, client.Client())

	ctx := context.Background()
	require.NoError(t, client.InitSchema(ctx))
	require.NoError(t, client.InitSchema(ctx))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, []string{QueuesCollection}, fake.created)
}
