package vector

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/qdrant/go-client/qdrant"

	domain "github.com/artqa/backend/internal/domain/chat"
	"github.com/artqa/backend/internal/infrastructure/config"
	"github.com/artqa/backend/internal/infrastructure/embedding"
	applog "github.com/artqa/backend/internal/infrastructure/log"
)

// 文献集合的 payload 键
const (
	payloadContent = "content"
	payloadSource  = "source"
	payloadPage    = "page"
)

// Searcher 基于 Qdrant 的文献检索器。
// 先调用嵌入服务把查询向量化，再在文献集合中做相似度检索。
// 连接延迟建立：Qdrant 不可用时构造不报错，由调用方决定检索失败是否致命。
type Searcher struct {
	embedClient *embedding.Client
	manager     *config.Manager
	logger      *slog.Logger

	mu     sync.Mutex
	client *qdrant.Client
}

// NewSearcher 创建文献检索器
func NewSearcher(embedClient *embedding.Client, manager *config.Manager) *Searcher {
	return &Searcher{
		embedClient: embedClient,
		manager:     manager,
		logger:      applog.NewModuleLogger("vector", "searcher"),
	}
}

// getClient 获取 Qdrant 客户端，首次调用时建立连接
func (s *Searcher) getClient() (*qdrant.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}

	cfg := s.manager.Snapshot().Retrieval
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: cfg.Host,
		Port: cfg.GRPCPort,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	s.client = client
	return client, nil
}

// Close 关闭 Qdrant 连接
func (s *Searcher) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		err := s.client.Close()
		s.client = nil
		return err
	}
	return nil
}

// Search 检索与查询最相关的文献片段，按相似度降序返回。
// 低于阈值的结果由 Qdrant 过滤，空结果集是合法输出。
func (s *Searcher) Search(ctx context.Context, query string, k int, scoreThreshold float32) ([]domain.RetrievedRecord, error) {
	// 1. 向量化查询文本
	queryVector, err := s.embedClient.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	s.logger.Debug("Query embedded", "vector_dim", len(queryVector))

	client, err := s.getClient()
	if err != nil {
		return nil, err
	}

	// 2. 执行相似度检索
	collection := s.manager.Snapshot().Retrieval.Collection
	limit := uint64(k)
	hits, err := client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
		ScoreThreshold: &scoreThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query qdrant: %w", err)
	}

	s.logger.Info("Qdrant search completed",
		"collection", collection,
		"hits_count", len(hits),
	)

	// 3. 转换结果
	records := make([]domain.RetrievedRecord, 0, len(hits))
	for _, hit := range hits {
		if record, ok := hitToRecord(hit); ok {
			records = append(records, record)
		}
	}
	return records, nil
}

// hitToRecord 将 Qdrant 命中转换为文献记录
func hitToRecord(hit *qdrant.ScoredPoint) (domain.RetrievedRecord, bool) {
	payload := hit.GetPayload()
	if payload == nil {
		return domain.RetrievedRecord{}, false
	}

	content := extractStringValue(payload[payloadContent])
	if content == "" {
		return domain.RetrievedRecord{}, false
	}

	// 页码键缺失视为未知页码
	page := -1
	if pageVal, ok := payload[payloadPage]; ok && pageVal != nil {
		page = int(extractIntValue(pageVal))
	}

	return domain.RetrievedRecord{
		Content:     content,
		SourceLabel: extractStringValue(payload[payloadSource]),
		Page:        page,
		Score:       hit.GetScore(),
	}, true
}

// extractStringValue 从 qdrant.Value 提取字符串值
func extractStringValue(val *qdrant.Value) string {
	if val == nil {
		return ""
	}
	return val.GetStringValue()
}

// extractIntValue 从 qdrant.Value 提取整数值
func extractIntValue(val *qdrant.Value) int64 {
	if val == nil {
		return 0
	}
	if intVal := val.GetIntegerValue(); intVal != 0 {
		return intVal
	}
	if dblVal := val.GetDoubleValue(); dblVal != 0 {
		return int64(dblVal)
	}
	return 0
}

// EnsureCollection 确保文献集合存在，不存在时按配置的向量维度创建
func (s *Searcher) EnsureCollection(ctx context.Context) error {
	client, err := s.getClient()
	if err != nil {
		return err
	}

	cfg := s.manager.Snapshot().Retrieval

	existing, err := client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	for _, name := range existing {
		if name == cfg.Collection {
			return nil
		}
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: cfg.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     cfg.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", cfg.Collection, err)
	}

	s.logger.Info("Collection created",
		"collection", cfg.Collection,
		"vector_size", cfg.VectorSize,
	)
	return nil
}

// 编译时检查接口实现
var _ domain.Searcher = (*Searcher)(nil)
