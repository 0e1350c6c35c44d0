package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// PlaceholderAnswer is returned while no tutor model is configured.
const PlaceholderAnswer = "AI tutor functionality will be available soon! This is a placeholder response."

// maxMaterialRunes bounds how much study material is sent with a question.
const maxMaterialRunes = 30000

type Tutor interface {
	// Answer replies to question. material is optional study text the answer
	// should be grounded in.
	Answer(ctx context.Context, question, material string) (string, error)
}

type PlaceholderTutor struct{}

func (PlaceholderTutor) Answer(ctx context.Context, question, material string) (string, error) {
	return PlaceholderAnswer, nil
}

// GeminiTutor answers through a Gemini model, with at most concurrentReqs
// calls in flight.
type GeminiTutor struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	rateChan chan struct{}
}

func NewGeminiTutor(ctx context.Context, apiKey, modelName string, concurrentReqs int) (*GeminiTutor, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.3)
	model.SetTopP(0.95)

	if concurrentReqs < 1 {
		concurrentReqs = 1
	}
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiTutor{client: client, model: model, rateChan: rateChan}, nil
}

func (t *GeminiTutor) Close() {
	t.client.Close()
}

func (t *GeminiTutor) acquireRate(ctx context.Context) error {
	select {
	case <-t.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (t *GeminiTutor) releaseRate() {
	t.rateChan <- struct{}{}
}

func (t *GeminiTutor) Answer(ctx context.Context, question, material string) (string, error) {
	if err := t.acquireRate(ctx); err != nil {
		return "", err
	}
	defer t.releaseRate()

	resp, err := t.model.GenerateContent(ctx, genai.Text(buildTutorPrompt(question, material)))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	answer := strings.TrimSpace(extractText(resp))
	if answer == "" {
		return "", fmt.Errorf("Gemini returned an empty answer")
	}
	return answer, nil
}

func buildTutorPrompt(question, material string) string {
	material = truncateRunes(strings.TrimSpace(material), maxMaterialRunes)
	if material == "" {
		return "Answer clearly in 3-6 bullet points:\n\n" + question
	}
	return "From the following study material, answer the question in 3-6 bullet points:\n\n" +
		"Study Material:\n" + material + "\n\nQuestion: " + question
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
