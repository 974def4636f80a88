package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"sondalog-backend/internal/audit"
	"sondalog-backend/internal/auth"
	"sondalog-backend/internal/catalog"
	"sondalog-backend/internal/dashboard"
	"sondalog-backend/internal/directory"
	"sondalog-backend/internal/export"
	"sondalog-backend/internal/lookup"
	"sondalog-backend/internal/requests"
	"sondalog-backend/internal/session"
	"sondalog-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
)

const testSecret = "test-secret-with-at-least-32-characters!!"

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db := testutil.SetupSeededDB(t)
	reqs := requests.NewService(db)
	return New(Deps{
		DB:          db,
		CORSOrigins: "http://localhost:5173",
		Sessions:    session.NewManager(testSecret, time.Hour, session.NewMemoryRevoker()),
		Auth:        auth.NewService(db),
		Catalog:     catalog.NewService(db),
		Directory:   directory.NewService(db),
		Requests:    reqs,
		Export:      export.NewService(db, reqs),
		Audit:       audit.NewService(db),
		Dashboard:   dashboard.NewService(db),
		Lookup:      lookup.NewAssistant(lookup.Local{}, time.Second),
	})
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, data
}

func login(t *testing.T, app *fiber.App, path string, body any) string {
	t.Helper()
	resp, data := call(t, app, http.MethodPost, path, "", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: %d %s", path, resp.StatusCode, data)
	}
	var res auth.LoginResponse
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("unmarshal login: %v", err)
	}
	return res.Token
}

func adminToken(t *testing.T, app *fiber.App, id, password string) string {
	return login(t, app, "/api/auth/admin/login", auth.AdminLoginRequest{ID: id, Password: password})
}

func supervisorToken(t *testing.T, app *fiber.App, id string) string {
	return login(t, app, "/api/auth/supervisor/login", auth.SupervisorLoginRequest{EmployeeID: id, Password: "prrecv"})
}

func errorMessage(t *testing.T, data []byte) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("unmarshal error body %q: %v", data, err)
	}
	return body.Error
}

func TestLoginFailuresShareMessage(t *testing.T) {
	app := newTestApp(t)

	r1, d1 := call(t, app, http.MethodPost, "/api/auth/admin/login", "", auth.AdminLoginRequest{ID: "ninguem", Password: "x"})
	r2, d2 := call(t, app, http.MethodPost, "/api/auth/admin/login", "", auth.AdminLoginRequest{ID: "luantorres", Password: "x"})
	r3, d3 := call(t, app, http.MethodPost, "/api/auth/supervisor/login", "", auth.SupervisorLoginRequest{EmployeeID: "MAT001", Password: ""})
	for _, r := range []*http.Response{r1, r2, r3} {
		if r.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status = %d", r.StatusCode)
		}
	}
	m1, m2, m3 := errorMessage(t, d1), errorMessage(t, d2), errorMessage(t, d3)
	if m1 != m2 || m2 != m3 {
		t.Fatalf("messages differ: %q %q %q", m1, m2, m3)
	}
}

func TestCommonAdminCannotAddRigThroughAPI(t *testing.T) {
	app := newTestApp(t)
	token := adminToken(t, app, "almoxarife", "user123")

	resp, _ := call(t, app, http.MethodPost, "/api/admin/rigs", token, catalog.RigBody{ID: "S09", Name: "Sonda Delta 09"})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}

	resp, _ = call(t, app, http.MethodPost, "/api/admin/materials", token, catalog.MaterialBody{SKU: "NEW-1", Description: "Novo", Unit: "UN"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("material create status = %d", resp.StatusCode)
	}

	resp, _ = call(t, app, http.MethodGet, "/api/admin/audit-logs", token, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("audit logs status = %d, want 403", resp.StatusCode)
	}
}

func TestRouteGroupsRequireMatchingSession(t *testing.T) {
	app := newTestApp(t)
	admin := adminToken(t, app, "luantorres", "1905")
	sup := supervisorToken(t, app, "SUP001")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"no token", http.MethodGet, "/api/supervisor/requests", "", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/auth/me", "abc", http.StatusUnauthorized},
		{"admin on supervisor panel", http.MethodGet, "/api/supervisor/requests", admin, http.StatusForbidden},
		{"supervisor on admin panel", http.MethodGet, "/api/admin/admins", sup, http.StatusForbidden},
		{"supervisor panel", http.MethodGet, "/api/supervisor/requests?status=history", sup, http.StatusOK},
		{"dashboard", http.MethodGet, "/api/supervisor/dashboard/requests?period=weekly", sup, http.StatusOK},
		{"bad period", http.MethodGet, "/api/supervisor/dashboard/requests?period=yearly", sup, http.StatusBadRequest},
		{"bad partition", http.MethodGet, "/api/supervisor/requests?status=todas", sup, http.StatusBadRequest},
		{"public catalog", http.MethodGet, "/api/catalog/materials", "", http.StatusOK},
		{"public supervisors", http.MethodGet, "/api/supervisors", "", http.StatusOK},
		{"health", http.MethodGet, "/healthz", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := call(t, app, tt.method, tt.path, tt.token, nil)
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d (%s)", resp.StatusCode, tt.want, data)
			}
		})
	}
}

func TestRequestLifecycleAndExportOverHTTP(t *testing.T) {
	app := newTestApp(t)

	resp, data := call(t, app, http.MethodPost, "/api/requests", "", requests.CreateRequestBody{
		RigID: "S01", EmployeeID: "MAT001", SupervisorID: "SUP001",
		Items: []requests.ItemBody{{SKU: "EQP-001", Quantity: 2}},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d %s", resp.StatusCode, data)
	}
	var created requests.RequestResponse
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	sup1 := supervisorToken(t, app, "SUP001")
	sup2 := supervisorToken(t, app, "SUP002")

	resp, data = call(t, app, http.MethodGet, "/api/supervisor/requests/pending-count", sup1, nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(data), `"pending":1`) {
		t.Fatalf("pending count: %d %s", resp.StatusCode, data)
	}

	resp, _ = call(t, app, http.MethodPost, "/api/supervisor/requests/"+created.ID+"/approve", sup2, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign approve status = %d", resp.StatusCode)
	}

	resp, data = call(t, app, http.MethodPost, "/api/supervisor/requests/"+created.ID+"/reject", sup1, requests.DecisionBody{Note: "Revisar"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reject: %d %s", resp.StatusCode, data)
	}
	resp, _ = call(t, app, http.MethodDelete, "/api/supervisor/requests/"+created.ID+"?version=1", sup1, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("stale purge status = %d", resp.StatusCode)
	}
	resp, data = call(t, app, http.MethodPost, "/api/supervisor/requests/"+created.ID+"/restore", sup1, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("restore: %d %s", resp.StatusCode, data)
	}

	resp, data = call(t, app, http.MethodPost, "/api/supervisor/exports", sup1, export.ExportBody{
		Partition: "approved", RequestIDs: []string{created.ID}, IncludeStatus: true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export: %d %s", resp.StatusCode, data)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv;charset=utf-8;" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "sondalog_export_aprovados_") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	wantRow := `EQP-001,"Capacete de Segurança Classe B","Sonda Alpha 01","Carlos Silva",MAT001,2,UN,APROVADO`
	if !strings.HasSuffix(string(data), "\n"+wantRow) {
		t.Errorf("export body = %q", data)
	}

	resp, data = call(t, app, http.MethodPost, "/api/supervisor/exports", sup1, export.ExportBody{Partition: "approved"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty export status = %d", resp.StatusCode)
	}
	if msg := errorMessage(t, data); !strings.Contains(msg, "Selecione") {
		t.Errorf("empty export message = %q", msg)
	}
}

func TestAdminSelfRenameRefreshesSession(t *testing.T) {
	app := newTestApp(t)
	oldToken := adminToken(t, app, "almoxarife", "user123")

	resp, data := call(t, app, http.MethodPut, "/api/admin/account", oldToken, directory.AdminBody{ID: "almox", Name: "Almoxarifado"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update account: %d %s", resp.StatusCode, data)
	}
	var res directory.AdminUpdateResponse
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.Token == "" || res.Admin.ID != "almox" {
		t.Fatalf("unexpected response: %s", data)
	}

	resp, _ = call(t, app, http.MethodGet, "/api/auth/me", oldToken, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("old token status = %d", resp.StatusCode)
	}
	resp, data = call(t, app, http.MethodGet, "/api/auth/me", res.Token, nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(data), `"id":"almox"`) {
		t.Fatalf("new token: %d %s", resp.StatusCode, data)
	}

	// Senha antiga continua valendo, pois foi enviada em branco
	adminToken(t, app, "almox", "user123")
}

func TestLogoutRevokesToken(t *testing.T) {
	app := newTestApp(t)
	token := supervisorToken(t, app, "SUP002")

	resp, _ := call(t, app, http.MethodPost, "/api/auth/logout", token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status = %d", resp.StatusCode)
	}
	resp, _ = call(t, app, http.MethodGet, "/api/auth/me", token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status after logout = %d", resp.StatusCode)
	}
}

func TestRoleRouteAcceptsEscapedNames(t *testing.T) {
	app := newTestApp(t)
	token := adminToken(t, app, "luantorres", "1905")

	resp, data := call(t, app, http.MethodDelete, "/api/admin/roles/"+url.PathEscape("Técnico de Segurança"), token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete role: %d %s", resp.StatusCode, data)
	}
}

func TestLookupEchoesToken(t *testing.T) {
	app := newTestApp(t)

	resp, data := call(t, app, http.MethodPost, "/api/lookup/materials", "", lookup.LookupRequest{Query: "oculos de protecao", Token: "q-7"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("lookup: %d %s", resp.StatusCode, data)
	}
	var res lookup.LookupResponse
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.Token != "q-7" || res.Match == nil || res.Match.SKU != "EQP-003" {
		t.Fatalf("unexpected lookup response: %s", data)
	}

	resp, _ = call(t, app, http.MethodPost, "/api/lookup/materials", "", lookup.LookupRequest{Query: "   "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank query status = %d", resp.StatusCode)
	}
}
