package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"sondalog-backend/internal/models"

	"google.golang.org/genai"
)

// Gemini pergunta ao modelo qual material do catálogo corresponde à busca.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("cliente Gemini não criado: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Name() string { return "gemini" }

var matchSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"sku":       {Type: genai.TypeString},
		"reasoning": {Type: genai.TypeString},
	},
}

func buildPrompt(query string, catalog []models.Material) string {
	var list strings.Builder
	for _, m := range catalog {
		fmt.Fprintf(&list, "%s: %s (%s)\n", m.SKU, m.Description, m.Category)
	}
	return fmt.Sprintf(`Você é o almoxarife de uma sonda de perfuração.
Um colaborador procura um material descrito assim: "%s".

Materiais cadastrados:
---
%s---

Escolha o material que melhor corresponde à descrição. Se nenhum servir,
responda com sku vazio.

Responda apenas em JSON: {"sku": "SKU escolhido", "reasoning": "explicação curta da escolha"}`, query, list.String())
}

func (g *Gemini) Find(ctx context.Context, query string, catalog []models.Material) (*Match, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(buildPrompt(query, catalog)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   matchSchema,
	})
	if err != nil {
		return nil, err
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var m Match
	if err := json.Unmarshal([]byte(text), &m); err != nil {
		return nil, fmt.Errorf("resposta do modelo não é JSON válido: %w", err)
	}
	if m.SKU == "" {
		return nil, nil
	}
	return &m, nil
}
