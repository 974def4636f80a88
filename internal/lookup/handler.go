package lookup

import (
	"strings"

	"sondalog-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Catalog fornece a lista atual de materiais.
type Catalog interface {
	ListMaterials() ([]models.Material, error)
}

type LookupRequest struct {
	Query string `json:"query"`
	Token string `json:"token"` // devolvido como veio; o cliente descarta respostas antigas
}

type MatchResponse struct {
	SKU         string `json:"sku"`
	Description string `json:"description"`
	Unit        string `json:"unit"`
	Category    string `json:"category"`
	Reasoning   string `json:"reasoning"`
}

type LookupResponse struct {
	Token    string         `json:"token,omitempty"`
	Provider string         `json:"provider"`
	Match    *MatchResponse `json:"match"`
}

// POST /api/lookup/materials
func FindMaterialHandler(a *Assistant, catalog Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LookupRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}
		if strings.TrimSpace(body.Query) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Informe o que está procurando")
		}

		materials, err := catalog.ListMaterials()
		if err != nil {
			return err
		}

		res := LookupResponse{Token: body.Token, Provider: a.ProviderName()}
		if m := a.Find(c.UserContext(), body.Query, materials); m != nil {
			for _, mat := range materials {
				if mat.SKU == m.SKU {
					res.Match = &MatchResponse{
						SKU:         mat.SKU,
						Description: mat.Description,
						Unit:        string(mat.Unit),
						Category:    mat.Category,
						Reasoning:   m.Reasoning,
					}
					break
				}
			}
		}
		return c.JSON(res)
	}
}
