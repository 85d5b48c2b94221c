package integration_tests

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/perfgrid/internal/app"
	"github.com/vk/perfgrid/internal/testutil/harness"
)

// Test for: http datasets are downloaded before the run and uploaded after it.
func TestCoreExecution_RemoteDatasets(t *testing.T) {
	// --- Arrange ---
	var mu sync.Mutex
	bucket := map[string]string{"/raw.csv": "Name,Score\na,1\nb,\nc,3\nd,4\n"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if r.Method == http.MethodPut {
			body, _ := io.ReadAll(r.Body)
			bucket[r.URL.Path] = string(body)
			return
		}
		body, ok := bucket[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, body)
	}))
	defer srv.Close()

	hcl := fmt.Sprintf(`
dataset "raw" {
  type    = "http"
  url     = "%[1]s/raw.csv"
  timeout = "5s"
}

dataset "train" {
  type = "http"
  url  = "%[1]s/out/train.csv?signature=abc"
}

dataset "train_row_count" {
  type   = "http"
  url    = "%[1]s/out/train_row_count"
  format = "json"
}
`, srv.URL)

	// --- Act ---
	result := harness.RunIntegrationTest(t, map[string]string{"perfgrid.hcl": hcl}, app.Config{Pipeline: "scenario"}, scenarioModule(t))

	// --- Assert ---
	require.NoError(t, result.Err, result.LogOutput)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "Name,Score\na,1\n", bucket["/out/train.csv"])
	var count int
	require.NoError(t, json.Unmarshal([]byte(bucket["/out/train_row_count"]), &count))
	assert.Equal(t, 1, count)
	assert.NotContains(t, result.LogOutput, "signature=abc")
}
