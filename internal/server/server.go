// Package server monta o app Fiber com todas as rotas da API.
package server

import (
	"errors"
	"log"
	"strings"

	"sondalog-backend/internal/access"
	"sondalog-backend/internal/audit"
	"sondalog-backend/internal/auth"
	"sondalog-backend/internal/catalog"
	"sondalog-backend/internal/dashboard"
	"sondalog-backend/internal/directory"
	"sondalog-backend/internal/export"
	"sondalog-backend/internal/lookup"
	"sondalog-backend/internal/metrics"
	"sondalog-backend/internal/requests"
	"sondalog-backend/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"
)

type Deps struct {
	DB          *gorm.DB
	CORSOrigins string
	Sessions    *session.Manager
	Auth        *auth.Service
	Catalog     *catalog.Service
	Directory   *directory.Service
	Requests    *requests.Service
	Export      *export.Service
	Audit       *audit.Service
	Dashboard   *dashboard.Service
	Lookup      *lookup.Assistant
}

func errorHandler(c *fiber.Ctx, err error) error {
	var e *fiber.Error
	if errors.As(err, &e) {
		return c.Status(e.Code).JSON(fiber.Map{
			"error": e.Message,
		})
	}
	log.Println("[ERROR] Erro inesperado:", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Erro inesperado no servidor",
	})
}

func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
		UnescapePath: true, // cargos com acento e espaço em /roles/:name
		AppName:      "sondalog-backend",
	})

	corsOrigins := strings.Split(d.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(corsOrigins, ","),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		ExposeHeaders: "Content-Disposition, X-Export-Rows",
	}))

	app.Get("/healthz", healthHandler(d.DB))
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")

	// Públicas: login, formulário de solicitação e listas de apoio
	api.Post("/auth/supervisor/login", auth.SupervisorLoginHandler(d.Auth, d.Sessions))
	api.Post("/auth/admin/login", auth.AdminLoginHandler(d.Auth, d.Sessions))
	api.Get("/supervisors", directory.ListSupervisorsHandler(d.Directory))
	api.Get("/employees", directory.ListEmployeesHandler(d.Directory))
	api.Get("/catalog/materials", catalog.ListMaterialsHandler(d.Catalog))
	api.Get("/catalog/rigs", catalog.ListRigsHandler(d.Catalog))
	api.Get("/catalog/roles", catalog.ListRolesHandler(d.Catalog))
	api.Post("/requests", requests.CreateRequestHandler(d.Requests))
	api.Post("/lookup/materials", lookup.FindMaterialHandler(d.Lookup, d.Catalog))

	protected := api.Group("")
	protected.Use(session.Middleware(d.Sessions, d.Auth.LoadPrincipal))

	protected.Post("/auth/logout", auth.LogoutHandler(d.Sessions))
	protected.Get("/auth/me", auth.MeHandler())

	// Painel do supervisor
	sup := protected.Group("/supervisor")
	sup.Use(session.RequireKind(access.KindSupervisor))

	sup.Get("/requests", requests.ListRequestsHandler(d.Requests))
	sup.Get("/requests/pending-count", requests.PendingCountHandler(d.Requests))
	sup.Post("/requests/:id/approve", requests.DecisionHandler(d.Requests, "approve"))
	sup.Post("/requests/:id/reject", requests.DecisionHandler(d.Requests, "reject"))
	sup.Post("/requests/:id/restore", requests.DecisionHandler(d.Requests, "restore"))
	sup.Delete("/requests/:id", requests.PurgeRequestHandler(d.Requests))
	sup.Post("/exports", export.ExportHandler(d.Export))
	sup.Get("/dashboard/requests", dashboard.RequestChartHandler(d.Dashboard))
	sup.Put("/password", auth.ChangePasswordHandler(d.Auth))

	// Administração; o nível MASTER/COMMON é conferido em cada operação
	adm := protected.Group("/admin")
	adm.Use(session.RequireKind(access.KindAdmin))

	adm.Post("/materials", catalog.CreateMaterialHandler(d.Catalog))
	adm.Post("/materials/import", catalog.ImportMaterialsHandler(d.Catalog))
	adm.Put("/materials/:sku", catalog.UpdateMaterialHandler(d.Catalog))
	adm.Delete("/materials/:sku", catalog.DeleteMaterialHandler(d.Catalog))

	adm.Post("/rigs", catalog.CreateRigHandler(d.Catalog))
	adm.Put("/rigs/:id", catalog.UpdateRigHandler(d.Catalog))
	adm.Delete("/rigs/:id", catalog.DeleteRigHandler(d.Catalog))

	adm.Post("/roles", catalog.CreateRoleHandler(d.Catalog))
	adm.Put("/roles/:name", catalog.UpdateRoleHandler(d.Catalog))
	adm.Delete("/roles/:name", catalog.DeleteRoleHandler(d.Catalog))

	adm.Post("/employees", directory.CreateEmployeeHandler(d.Directory))
	adm.Put("/employees/:id", directory.UpdateEmployeeHandler(d.Directory))
	adm.Delete("/employees/:id", directory.DeleteEmployeeHandler(d.Directory))

	adm.Post("/supervisors", directory.CreateSupervisorHandler(d.Directory))
	adm.Put("/supervisors/:id", directory.UpdateSupervisorHandler(d.Directory))
	adm.Delete("/supervisors/:id", directory.DeleteSupervisorHandler(d.Directory))

	adm.Get("/admins", directory.ListAdminsHandler(d.Directory))
	adm.Post("/admins", directory.CreateAdminHandler(d.Directory))
	adm.Put("/admins/:id", directory.UpdateAdminHandler(d.Directory, d.Sessions))
	adm.Delete("/admins/:id", directory.DeleteAdminHandler(d.Directory))

	adm.Put("/account", directory.UpdateOwnAccountHandler(d.Directory, d.Sessions))
	adm.Get("/audit-logs", audit.ListAuditLogsHandler(d.Audit))

	return app
}

// GET /healthz
func healthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			log.Printf("[WARN] Healthcheck: banco indisponível: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
