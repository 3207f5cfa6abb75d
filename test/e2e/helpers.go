//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/api/handlers"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/cli/client"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/cli/daemon"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/config"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/server"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/testutil"
)

const (
	rustfsCredential = "rustfsadmin"
	snapshotBucket   = "devdoc-e2e"
)

// E2ETestEnv holds the containers shared by one test.
type E2ETestEnv struct {
	T         *testing.T
	Ctx       context.Context
	PostgresC *testutil.PostgresContainer
	RustFSC   *testutil.RustFSContainer
	DocsDir   string
	BinaryDir string
}

// SetupE2EEnv starts pgvector and RustFS containers and writes a small
// documentation tree.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	env := &E2ETestEnv{
		T:         t,
		Ctx:       ctx,
		PostgresC: testutil.NewPostgresContainer(ctx, t),
		RustFSC:   testutil.NewRustFSContainer(ctx, t),
		DocsDir:   t.TempDir(),
	}

	files := map[string]string{
		"auth.md":       "# Authentication\n\nEvery request must send the API key in the Authorization header as a bearer token.",
		"deploy.txt":    "Deploy devdocd with the Helm chart. Set replicas to at least two for high availability.",
		"webhooks.html": "<html><body><h1>Webhooks</h1><p>Webhooks are signed with an HMAC secret.</p></body></html>",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(env.DocsDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	return env
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
	if e.BinaryDir != "" {
		os.RemoveAll(e.BinaryDir)
	}
}

// Config returns a configuration with the local providers and the given
// index backend. The memory backend snapshots to the RustFS bucket.
func (e *E2ETestEnv) Config(backend string) *config.Config {
	cfg := &config.Config{
		Port:                     "0",
		LLMProvider:              config.ProviderLocal,
		EmbeddingProvider:        config.ProviderLocal,
		LocalEmbeddingDimensions: 256,
		ChunkSize:                400,
		ChunkOverlap:             40,
		TopK:                     3,
		EmbedBatchSize:           8,
		IngestWorkers:            2,
		EnableMemory:             true,
		MaxConversationHistory:   10,
		SessionTimeout:           time.Hour,
		HistoryTurns:             6,
		LLMTimeout:               10 * time.Second,
		LLMMaxRetries:            1,
		LLMBackoffInitial:        10 * time.Millisecond,
		LLMBackoffMax:            100 * time.Millisecond,
		IndexBackend:             backend,
		SnapshotInterval:         time.Minute,
		DocsDirectory:            e.DocsDir,
		DatabaseURL:              e.PostgresC.ConnectionString(),
		S3Endpoint:               e.RustFSC.Endpoint(),
		S3AccessKey:              rustfsCredential,
		S3SecretKey:              rustfsCredential,
		S3Bucket:                 snapshotBucket,
		S3Region:                 "us-east-1",
		S3Key:                    "index/" + backend + ".zst",
		Environment:              "test",
	}
	if err := cfg.Validate(); err != nil {
		e.T.Fatalf("invalid config: %v", err)
	}
	return cfg
}

// StartServer builds the application for cfg and serves it on a free port.
func (e *E2ETestEnv) StartServer(cfg *config.Config) (*daemon.App, string, func()) {
	app, err := daemon.Build(e.Ctx, cfg, daemon.BuildOptions{})
	if err != nil {
		e.T.Fatalf("failed to build app: %v", err)
	}

	var saver handlers.SnapshotSaver
	if app.Snapshot != nil {
		saver = app.Snapshot
	}
	router := server.NewRouter(server.RouterConfig{
		QueryHandler:  handlers.NewQueryHandler(app.Query),
		IngestHandler: handlers.NewIngestHandler(app.Ingest, cfg.DocsDirectory, saver),
		Version:       "e2e",
	})

	port, err := getFreePort()
	if err != nil {
		e.T.Fatalf("failed to get free port: %v", err)
	}
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			e.T.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(e.T, serverURL, 10*time.Second)

	return app, serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
		app.Close()
	}
}

// Client returns an API client for serverURL.
func (e *E2ETestEnv) Client(serverURL string) *client.APIClient {
	return client.NewAPIClientWithConfig(serverURL)
}

// BuildCLI builds the devdoc binary.
func (e *E2ETestEnv) BuildCLI() {
	tmpDir, err := os.MkdirTemp("", "devdoc-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, "devdoc"), "./cmd/devdoc")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build devdoc: %v\n%s", err, out)
	}
}

// RunDevdoc runs the devdoc CLI against serverURL with an isolated config
// directory.
func (e *E2ETestEnv) RunDevdoc(serverURL string, args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "devdoc"), append(args, "--no-color")...)
	cmd.Env = append(os.Environ(),
		"DEVDOC_API_URL="+serverURL,
		"XDG_CONFIG_HOME="+e.T.TempDir(),
		"HOME="+e.T.TempDir(),
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
