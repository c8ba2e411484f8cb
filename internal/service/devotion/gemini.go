package devotion

import (
	"context"
	"errors"
	"strings"

	"church_app_server/internal/config"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const systemPrompt = `你是一位温和的教会灵修同工。
根据用户给出的经文出处（以及可能附带的经文内容），写一段 150 到 250 字的中文默想。
包括：经文要点、一个生活应用、一句简短的祷告。
不要编造经文原文，不要讨论与经文无关的话题，只输出默想正文。`

var errEmptyResponse = errors.New("gemini returned no content")

// GeminiGenerator 基于 Gemini 的默想生成器
type GeminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiGenerator ApiKey 为空时返回 nil, nil，调用方据此关闭该功能
func NewGeminiGenerator(ctx context.Context, cfg config.GeminiConfig) (*GeminiGenerator, error) {
	if cfg.ApiKey == "" {
		return nil, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.ApiKey))
	if err != nil {
		return nil, err
	}
	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))
	model.GenerationConfig.ResponseMIMEType = "text/plain"
	maxTokens := int32(600)
	temperature := float32(0.6)
	model.GenerationConfig.MaxOutputTokens = &maxTokens
	model.GenerationConfig.Temperature = &temperature
	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate 生成一段默想
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errEmptyResponse
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", errEmptyResponse
	}
	return strings.TrimSpace(b.String()), nil
}

func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}
