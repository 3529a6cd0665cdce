package admin

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/novanote/novanote/internal/cache"
	"github.com/novanote/novanote/internal/config"
	"github.com/novanote/novanote/internal/database"
	"github.com/novanote/novanote/internal/domain"
	"github.com/novanote/novanote/internal/extract"
	"github.com/novanote/novanote/internal/openai"
	"github.com/novanote/novanote/internal/qdrant"
	"github.com/novanote/novanote/internal/rag"
	"github.com/novanote/novanote/internal/repository"
	"github.com/novanote/novanote/internal/service"
	"github.com/novanote/novanote/internal/storage"
	goopenai "github.com/sashabaranov/go-openai"
)

// app holds the long-lived components shared by serve and the admin
// commands that need the indexing pipeline.
type app struct {
	cfg  *config.Config
	pool *pgxpool.Pool

	users       *repository.UserRepository
	apiKeys     *repository.APIKeyRepository
	collections *repository.CollectionRepository
	itemRepo    *repository.ItemRepository
	jobRepo     *repository.IndexJobRepository

	gateway *rag.Gateway
	chat    *rag.ChatOrchestrator

	auth       *service.AuthService
	collectSvc *service.CollectionService
	itemSvc    *service.ItemService
	chatSvc    *service.ChatService
	limitsSvc  *service.LimitsService

	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}

// newApp wires storage, the RAG pipeline, and the services. The caller
// must Close the result.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	if !cfg.HasOpenAI() {
		return nil, domain.NewDomainError(domain.ErrCodeInvalidConfiguration, "NOVANOTE_OPENAI_API_KEY or NOVANOTE_API_KEY is required")
	}

	pool, err := openPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, pool: pool}
	a.closers = append(a.closers, pool.Close)
	log.Println("connected to database")

	a.users = repository.NewUserRepository(pool)
	a.apiKeys = repository.NewAPIKeyRepository(pool)
	a.collections = repository.NewCollectionRepository(pool)
	a.itemRepo = repository.NewItemRepository(pool)
	a.jobRepo = repository.NewIndexJobRepository(pool)

	store, err := a.vectorStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	llm := openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		BaseURL:             cfg.OpenAIBaseURL,
		EmbeddingModel:      goopenai.EmbeddingModel(cfg.EmbeddingModel),
		EmbeddingDimensions: cfg.EmbeddingDimensions,
		ChatModel:           cfg.ChatModel,
	})

	var embedder rag.Embedder = llm
	if cfg.HasRedis() {
		client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Printf("embedding cache disabled: %v", err)
		} else {
			a.closers = append(a.closers, func() { _ = client.Close() })
			embedder = cache.NewCachedEmbedder(llm, client, cfg.EmbeddingModel, cfg.EmbeddingCacheTTL)
			log.Printf("embedding cache enabled (redis %s)", cfg.RedisAddr)
		}
	}

	chunker, err := rag.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.gateway = rag.NewGateway(embedder, store, rag.GatewayConfig{
		EmbedTimeout:  cfg.EmbedTimeout,
		SearchTimeout: cfg.SearchTimeout,
		WriteTimeout:  cfg.WriteTimeout,
		DefaultK:      cfg.SearchK,
	})
	indexer := rag.NewIndexer(chunker, a.gateway)
	synth := rag.NewSynthesizer(llm, cfg.CompletionTimeout)
	a.chat = rag.NewChatOrchestrator(a.gateway, synth, cfg.SearchK)

	var objects service.ObjectStorage
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		objects = s3Client
	}

	uuidGen := &service.DefaultUUIDGenerator{}
	tx := repository.NewTxRunner(pool)

	a.auth = service.NewAuthService(a.users, a.apiKeys, uuidGen)
	a.collectSvc = service.NewCollectionService(a.collections, a.itemRepo, tx, a.gateway, objects, uuidGen)
	a.itemSvc = service.NewItemService(service.ItemServiceDeps{
		Collections: a.collections,
		Items:       a.itemRepo,
		Tx:          tx,
		Indexer:     indexer,
		Index:       a.gateway,
		Fetcher:     extract.NewCrawler(cfg.CrawlTimeout),
		PDFs:        extract.NewPDFExtractor(),
		Objects:     objects,
		UUIDGen:     uuidGen,
	})
	a.chatSvc = service.NewChatService(a.collections, a.chat)
	a.limitsSvc = service.NewLimitsService(a.collections, a.itemRepo)

	return a, nil
}

func (a *app) vectorStore(ctx context.Context) (rag.VectorStore, error) {
	if !a.cfg.UsesQdrant() {
		log.Println("vector store: pgvector")
		return repository.NewDocumentRepository(a.pool), nil
	}

	store, err := qdrant.NewStore(a.cfg.QdrantAddr, a.cfg.QdrantCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}
	a.closers = append(a.closers, func() { _ = store.Close() })
	if err := store.EnsureCollection(ctx, a.cfg.EmbeddingDimensions); err != nil {
		return nil, fmt.Errorf("failed to ensure qdrant collection: %w", err)
	}
	log.Printf("vector store: qdrant %s/%s", a.cfg.QdrantAddr, a.cfg.QdrantCollection)
	return store, nil
}
