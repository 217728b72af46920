// Package gemini generates outreach text with Google's Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/lumina/partnerdesk/internal/config"
	"github.com/lumina/partnerdesk/internal/domain"
)

// ErrEmptyResponse is returned when the model produced no text. An empty
// generation is a failure, never a valid result.
var ErrEmptyResponse = errors.New("gemini returned an empty response")

// generator is the slice of the genai client the adapter uses, extracted so
// tests can script responses.
type generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Client drafts outreach copy.
type Client struct {
	gen generator
}

type genaiGenerator struct {
	client *genai.Client
	model  string
}

func (g *genaiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return result.Text(), nil
}

// NewClient creates a Gemini client from config.
func NewClient(ctx context.Context, cfg config.GeminiConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Client{gen: &genaiGenerator{client: client, model: cfg.Model}}, nil
}

// Generate returns raw model text for a prompt. Empty output is an error.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := c.gen.GenerateText(ctx, prompt)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// DraftOutreach writes a short first-contact pitch for a scraped profile.
func (c *Client) DraftOutreach(ctx context.Context, p domain.ScrapedProfile) (string, error) {
	name := p.Name
	if name == "" {
		name = strings.TrimPrefix(p.Handle, "@")
	}
	prompt := fmt.Sprintf(
		"Escreva um e-mail curto e caloroso em português convidando a criadora de conteúdo %s (%s no %s, %d seguidores) "+
			"para uma parceria paga com a marca Lumina. Tom profissional mas próximo. "+
			"Não use placeholders; assine como 'Equipe de Parcerias Lumina'.",
		name, p.Handle, p.Platform, p.Followers)
	return c.Generate(ctx, prompt)
}
