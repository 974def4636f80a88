package lookup

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"sondalog-backend/internal/models"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Local compara palavras da busca com SKU, descrição e categoria, sem
// diferenciar acentos nem maiúsculas.
type Local struct{}

func (Local) Name() string { return "local" }

var (
	tokenSplit = regexp.MustCompile(`[^a-z0-9]+`)
	stopwords  = map[string]bool{
		"de": true, "da": true, "do": true, "das": true, "dos": true,
		"para": true, "com": true, "sem": true, "um": true, "uma": true,
		"o": true, "a": true, "e": true, "pol": true,
	}
)

// fold: "Óculos de Proteção" -> "oculos de protecao"
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

func tokens(s string) []string {
	var out []string
	for _, tok := range tokenSplit.Split(fold(s), -1) {
		if len(tok) < 2 || stopwords[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// matches aceita prefixo de pelo menos 4 letras ("luvas" casa com "luva").
func matches(q, w string) bool {
	if q == w {
		return true
	}
	n := min(len(q), len(w))
	return n >= 4 && q[:n] == w[:n]
}

func (Local) Find(_ context.Context, query string, catalog []models.Material) (*Match, error) {
	queryTokens := tokens(query)
	if len(queryTokens) == 0 {
		return nil, nil
	}

	whole := fold(strings.TrimSpace(query))
	for _, m := range catalog {
		if fold(m.SKU) == whole {
			return &Match{SKU: m.SKU, Reasoning: "Código informado diretamente: " + m.Description}, nil
		}
	}

	var best *models.Material
	bestScore := 0
	var bestHits []string
	for i := range catalog {
		m := &catalog[i]
		words := tokens(m.Description + " " + m.Category)

		score := 0
		var hits []string
		for _, q := range queryTokens {
			for _, w := range words {
				if matches(q, w) {
					score++
					hits = append(hits, q)
					break
				}
			}
		}
		if score > bestScore {
			best, bestScore, bestHits = m, score, hits
		}
	}

	if best == nil {
		return nil, nil
	}
	return &Match{
		SKU:       best.SKU,
		Reasoning: fmt.Sprintf("%s corresponde aos termos: %s", best.Description, strings.Join(bestHits, ", ")),
	}, nil
}
