package embedder

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

type OpenAICompatibleConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int // optional; 0 means provider default
	Timeout    time.Duration
}

// OpenAICompatibleEmbedder talks to any OpenAI-compatible embeddings
// endpoint. Vectors are L2-normalized before they are returned so cosine
// distance in the gloss-vector store stays well-behaved.
type OpenAICompatibleEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
}

var _ Embedder = (*OpenAICompatibleEmbedder)(nil)

func NewOpenAICompatible(cfg OpenAICompatibleConfig) (*OpenAICompatibleEmbedder, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	openaiCfg := openai.DefaultConfig(cfg.APIKey)
	openaiCfg.BaseURL = cfg.BaseURL
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	openaiCfg.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAICompatibleEmbedder{
		client:     openai.NewClientWithConfig(openaiCfg),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

func (e *OpenAICompatibleEmbedder) Model() string   { return e.model }
func (e *OpenAICompatibleEmbedder) Dimensions() int { return e.dimensions }

func (e *OpenAICompatibleEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(vecs))
	}
	return vecs[0], nil
}

func (e *OpenAICompatibleEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	req := openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	out := make([][]float32, len(resp.Data))
	for i, row := range resp.Data {
		vec := make([]float32, len(row.Embedding))
		for j, v := range row.Embedding {
			vec[j] = float32(v)
		}
		l2NormalizeInPlace(vec)
		out[i] = vec
	}
	return out, nil
}

// l2NormalizeInPlace normalizes vec to unit L2 norm. Empty or all-zero
// vectors are left unchanged.
func l2NormalizeInPlace(vec []float32) {
	var sumSq float64
	for _, v := range vec {
		f := float64(v)
		sumSq += f * f
	}
	if sumSq <= 0 {
		return
	}
	invNorm := float32(1.0 / math.Sqrt(sumSq))
	for i := range vec {
		vec[i] *= invNorm
	}
}
