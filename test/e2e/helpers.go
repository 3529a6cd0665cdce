//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/novanote/novanote/internal/api/handlers"
	"github.com/novanote/novanote/internal/domain"
	"github.com/novanote/novanote/internal/extract"
	"github.com/novanote/novanote/internal/rag"
	"github.com/novanote/novanote/internal/repository"
	"github.com/novanote/novanote/internal/server"
	"github.com/novanote/novanote/internal/service"
	"github.com/novanote/novanote/internal/storage"
	"github.com/novanote/novanote/internal/testutil"
)

const dimensions = 1536

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	PostgresC  *testutil.PostgresContainer
	RustFSC    *testutil.RustFSContainer
	Pool       *pgxpool.Pool
	Server     *httptest.Server
	S3Client   *storage.S3Client
	Completer  *scriptedCompleter
	HTTPClient *http.Client
}

// SetupE2EEnv starts Postgres and RustFS and serves the full router with
// a deterministic embedder and completer in place of the model provider.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "e2e-pdfs",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	completer := &scriptedCompleter{reply: "The answer is in the notes [1]."}
	env := &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		RustFSC:    s3C,
		Pool:       pool,
		S3Client:   s3Client,
		Completer:  completer,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	env.Server = httptest.NewServer(newRouter(pool, s3Client, completer))
	return env
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.Server != nil {
		e.Server.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		_ = e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		_ = e.PostgresC.Terminate(e.Ctx)
	}
}

func newRouter(pool *pgxpool.Pool, objects *storage.S3Client, completer rag.Completer) http.Handler {
	users := repository.NewUserRepository(pool)
	keys := repository.NewAPIKeyRepository(pool)
	collections := repository.NewCollectionRepository(pool)
	items := repository.NewItemRepository(pool)
	tx := repository.NewTxRunner(pool)

	gateway := rag.NewGateway(hashEmbedder{}, repository.NewDocumentRepository(pool), rag.DefaultGatewayConfig())
	indexer := rag.NewIndexer(rag.DefaultChunker(), gateway)
	chat := rag.NewChatOrchestrator(gateway, rag.NewSynthesizer(completer, 10*time.Second), rag.DefaultSearchK)

	uuidGen := &service.DefaultUUIDGenerator{}
	auth := service.NewAuthService(users, keys, uuidGen)
	itemSvc := service.NewItemService(service.ItemServiceDeps{
		Collections: collections,
		Items:       items,
		Tx:          tx,
		Indexer:     indexer,
		Index:       gateway,
		Fetcher:     extract.NewCrawler(5 * time.Second),
		PDFs:        extract.NewPDFExtractor(),
		Objects:     objects,
		UUIDGen:     uuidGen,
	})

	return server.NewRouter(server.RouterConfig{
		AuthValidator:     auth,
		AuthHandler:       handlers.NewAuthHandler(auth),
		CollectionHandler: handlers.NewCollectionHandler(service.NewCollectionService(collections, items, tx, gateway, objects, uuidGen)),
		ItemHandler:       handlers.NewItemHandler(itemSvc),
		ChatHandler:       handlers.NewChatHandler(service.NewChatService(collections, chat)),
		LimitsHandler:     handlers.NewLimitsHandler(service.NewLimitsService(collections, items)),
	})
}

// hashEmbedder maps each lowercased word to a bucket so texts sharing
// words land close together.
type hashEmbedder struct{}

func (hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, dimensions)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(word, ".,?!")))
		vec[h.Sum32()%dimensions]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	if norm == 0 {
		vec[0] = 1
		return vec, nil
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec, nil
}

// scriptedCompleter returns a fixed reply and records the last prompt.
type scriptedCompleter struct {
	reply    string
	messages []domain.Message
}

func (c *scriptedCompleter) Complete(_ context.Context, messages []domain.Message, _ float32) (string, error) {
	c.messages = messages
	return c.reply, nil
}

// Response is the decoded API envelope plus the status code.
type Response struct {
	Status int
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
	Stage  string          `json:"stage"`
}

func (r *Response) Decode(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Data, v); err != nil {
		t.Fatalf("failed to decode %s: %v", r.Data, err)
	}
}

func (e *E2ETestEnv) Do(method, path string, body any, token string) *Response {
	e.T.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			e.T.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	return e.send(method, path, reader, "application/json", token)
}

func (e *E2ETestEnv) Upload(path, filename string, content []byte, token string) *Response {
	e.T.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		e.T.Fatalf("failed to create form file: %v", err)
	}
	_, _ = part.Write(content)
	_ = mw.Close()
	return e.send(http.MethodPost, path, &buf, mw.FormDataContentType(), token)
}

func (e *E2ETestEnv) send(method, path string, body io.Reader, contentType, token string) *Response {
	e.T.Helper()
	req, err := http.NewRequestWithContext(e.Ctx, method, e.Server.URL+path, body)
	if err != nil {
		e.T.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		e.T.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	out := &Response{Status: resp.StatusCode}
	data, _ := io.ReadAll(resp.Body)
	if len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			e.T.Fatalf("%s %s: invalid JSON %q", method, path, data)
		}
	}
	return out
}

// Register creates a user and returns its API token.
func (e *E2ETestEnv) Register(username string) string {
	e.T.Helper()
	resp := e.Do(http.MethodPost, "/v1/register", map[string]string{"username": username}, "")
	if resp.Status != http.StatusCreated {
		e.T.Fatalf("register %s: status %d: %s", username, resp.Status, resp.Error)
	}
	var out struct {
		Token string `json:"token"`
	}
	resp.Decode(e.T, &out)
	return out.Token
}

// CreateCollection creates a collection and returns its ID.
func (e *E2ETestEnv) CreateCollection(token, name string, shared bool) string {
	e.T.Helper()
	resp := e.Do(http.MethodPost, "/v1/collections", map[string]any{"name": name, "is_shared": shared}, token)
	if resp.Status != http.StatusCreated {
		e.T.Fatalf("create collection: status %d: %s", resp.Status, resp.Error)
	}
	var out struct {
		ID string `json:"id"`
	}
	resp.Decode(e.T, &out)
	return out.ID
}

func path(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
