package openai

import (
	"context"
	"errors"
	"fmt"
	"io"

	"ai-scribe-be/pkg/llm"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIProvider struct {
	client    *openai.Client
	modelName string
}

// Ensure OpenAIProvider implements LLMProvider
var _ llm.LLMProvider = &OpenAIProvider{}

func NewOpenAIProvider(apiKey, modelName string) *OpenAIProvider {
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}
	return &OpenAIProvider{
		client:    openai.NewClient(apiKey),
		modelName: modelName,
	}
}

func (p *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	if p.client == nil {
		return "", errors.New("openai client not initialized")
	}

	options := applyOptions(opts)
	resp, err := p.client.CreateChatCompletion(ctx, p.buildRequest(history, options))
	if err != nil {
		return "", fmt.Errorf("openai chat failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// ChatStream opens a completion stream and forwards deltas as chunks.
func (p *OpenAIProvider) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (<-chan llm.StreamChunk, error) {
	if p.client == nil {
		return nil, errors.New("openai client not initialized")
	}

	options := applyOptions(opts)
	req := p.buildRequest(history, options)
	req.Stream = true

	stream, err := p.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai stream failed: %w", err)
	}

	chunks := make(chan llm.StreamChunk)
	go func() {
		defer close(chunks)
		defer stream.Close()

		for {
			part, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				if ctx.Err() == nil {
					chunks <- llm.StreamChunk{Err: fmt.Errorf("openai stream recv: %w", err)}
				}
				return
			}
			if len(part.Choices) == 0 {
				continue
			}
			delta := part.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			select {
			case chunks <- llm.StreamChunk{Content: delta}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return chunks, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func (p *OpenAIProvider) buildRequest(history []llm.Message, options *llm.Options) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, m := range history {
		role := m.Role
		if role == "model" {
			role = openai.ChatMessageRoleAssistant
		}
		if role != openai.ChatMessageRoleSystem && role != openai.ChatMessageRoleUser && role != openai.ChatMessageRoleAssistant {
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	model := p.modelName
	if options.Model != "" {
		model = options.Model
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: float32(options.Temperature),
	}
	if options.MaxTokens > 0 {
		req.MaxTokens = options.MaxTokens
	}
	return req
}

func applyOptions(opts []llm.Option) *llm.Options {
	options := &llm.Options{
		Temperature: 0.3, // Clinical drafts want low variance
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
