package enricher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultEmbeddingModel 固定使用的向量模型
	DefaultEmbeddingModel    = string(openai.SmallEmbedding3)
	DefaultEmbeddingEndpoint = "https://api.openai.com"
)

// Embedder 把一段文本转换为向量
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// OpenAIEmbedder 调用 OpenAI 格式的 /v1/embeddings 接口
type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewOpenAIEmbedder endpoint 为服务根地址（不含 /v1），兼容 OpenAI 格式的自建服务
func NewOpenAIEmbedder(endpoint, apiKey, model string, timeout time.Duration) *OpenAIEmbedder {
	if endpoint == "" {
		endpoint = DefaultEmbeddingEndpoint
	}
	if model == "" {
		model = DefaultEmbeddingModel
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(endpoint, "/") + "/v1"
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.EmbeddingModel(model),
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("embedding: empty input")
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding: create: %w", err)
	}
	for _, d := range resp.Data {
		if d.Index == 0 && len(d.Embedding) > 0 {
			return d.Embedding, nil
		}
	}
	return nil, errors.New("embedding: no vector returned")
}
