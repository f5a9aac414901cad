package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/artqa/backend/internal/infrastructure/config"
	"github.com/artqa/backend/internal/infrastructure/embedding"
	"github.com/artqa/backend/internal/infrastructure/llm"
)

// Version 服务版本号
const Version = "1.0.0"

// probeTimeout 单个下游服务连通性探测超时
const probeTimeout = 2 * time.Second

// HealthHandler 健康检查处理器
type HealthHandler struct {
	manager     *config.Manager
	generator   *llm.Client
	embedClient *embedding.Client
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(manager *config.Manager, generator *llm.Client, embedClient *embedding.Client) *HealthHandler {
	return &HealthHandler{
		manager:     manager,
		generator:   generator,
		embedClient: embedClient,
	}
}

// Check 健康检查，同时被单例锁用于探测已有实例。
// 默认返回快速的静态状态；带 detail=1 时额外探测生成与嵌入服务连通性。
func (h *HealthHandler) Check(c *gin.Context) {
	cfg := h.manager.Snapshot()
	payload := gin.H{
		"status":        "healthy",
		"version":       Version,
		"store_backend": cfg.Store.Backend,
	}

	if c.Query("detail") != "" {
		payload["services"] = gin.H{
			"generation": h.probe(c.Request.Context(), h.testGenerator),
			"embedding":  h.probe(c.Request.Context(), h.testEmbedding),
		}
	}

	c.JSON(http.StatusOK, payload)
}

func (h *HealthHandler) probe(ctx context.Context, test func(context.Context) error) string {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := test(ctx); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

func (h *HealthHandler) testGenerator(ctx context.Context) error {
	return h.generator.TestConnection(ctx)
}

func (h *HealthHandler) testEmbedding(ctx context.Context) error {
	return h.embedClient.TestConnection(ctx)
}
