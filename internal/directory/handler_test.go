package directory

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"sondalog-backend/internal/access"
	"sondalog-backend/internal/models"
	"sondalog-backend/internal/session"
	"sondalog-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
)

func TestRespondAdminUpdateWithoutClaimsStillIssuesToken(t *testing.T) {
	sessions := session.NewManager("test-secret-with-at-least-32-characters!!", time.Hour, session.NewMemoryRevoker())
	actor := testutil.CommonAdmin()

	app := fiber.New()
	app.Put("/account", func(c *fiber.Ctx) error {
		// principal sem claims na sessão
		renamed := models.Admin{ID: "almox", Name: actor.Name, Role: models.AdminRoleCommon}
		return respondAdminUpdate(c, sessions, actor, actor.ID, renamed)
	})

	resp, err := app.Test(httptest.NewRequest("PUT", "/account", nil), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	data, _ := io.ReadAll(resp.Body)
	var res AdminUpdateResponse
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.Token == "" || res.Admin.ID != "almox" {
		t.Fatalf("unexpected response: %s", data)
	}

	claims, err := sessions.Parse(t.Context(), res.Token)
	if err != nil {
		t.Fatalf("Parse new token: %v", err)
	}
	if claims.Kind != access.KindAdmin || claims.Subject != "almox" {
		t.Errorf("claims = %+v", claims)
	}
}
