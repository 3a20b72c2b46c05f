package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"

	mdf "github.com/froncalli-softcrylic/MDF-Simulator-sub000"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/builder"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/catalog"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/layout"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/postgres"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/profile"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/repair"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/rules"
	"github.com/froncalli-softcrylic/MDF-Simulator-sub000/validate"
)

type wizardRequest struct {
	Wizard  profile.WizardData `json:"wizard"`
	Profile string             `json:"profile,omitempty"`
}

type templateRequest struct {
	Nodes []mdf.Node `json:"nodes"`
	Edges []mdf.Edge `json:"edges"`
}

type validateRequest struct {
	Graph   mdf.Graph           `json:"graph"`
	Profile string              `json:"profile,omitempty"`
	Wizard  *profile.WizardData `json:"wizard,omitempty"`
}

type repairRequest struct {
	Graph   mdf.Graph `json:"graph"`
	Profile string    `json:"profile,omitempty"`
}

type applyRequest struct {
	Graph mdf.Graph   `json:"graph"`
	Plan  repair.Plan `json:"plan"`
}

type connectCheckRequest struct {
	SourceCategory string `json:"source_category"`
	TargetCategory string `json:"target_category"`
	SourcePort     string `json:"source_port,omitempty"`
	TargetPort     string `json:"target_port,omitempty"`
}

func newApp(store mdf.Store) *fiber.App {
	b := builder.New(nil)
	planner := repair.New(nil, nil)
	engine := layout.New(nil)

	app := fiber.New()

	// ── Schema ────────────────────────────────────────────────────────
	app.Post("/schema", func(c fiber.Ctx) error {
		if err := store.CreateSchema(c.Context()); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"message": "schema created"})
	})

	app.Delete("/schema", func(c fiber.Ctx) error {
		if err := store.DropSchema(c.Context()); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"message": "schema dropped"})
	})

	// ── Catalog & profiles ────────────────────────────────────────────
	app.Get("/catalog", func(c fiber.Ctx) error {
		return c.JSON(catalog.All())
	})

	app.Get("/profiles", func(c fiber.Ctx) error {
		return c.JSON(profile.All())
	})

	// ── Diagram generation ────────────────────────────────────────────
	app.Post("/generate/profile/:id", func(c fiber.Ctx) error {
		def, ok := profile.Get(c.Params("id"))
		if !ok {
			return c.Status(404).JSON(fiber.Map{"error": "profile not found"})
		}
		g := b.FromProfile(def)
		return c.JSON(fiber.Map{"graph": g, "stats": mdf.Summarize(g)})
	})

	app.Post("/generate/wizard", func(c fiber.Ctx) error {
		var req wizardRequest
		if err := c.Bind().JSON(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		g, conflicts := b.FromWizard(req.Wizard, req.Profile)
		return c.JSON(fiber.Map{"graph": g, "conflicts": conflicts, "stats": mdf.Summarize(g)})
	})

	app.Post("/generate/template", func(c fiber.Ctx) error {
		var req templateRequest
		if err := c.Bind().JSON(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		return c.JSON(fiber.Map{"graph": b.FromTemplate(req.Nodes, req.Edges)})
	})

	// ── Validation, repair, layout ────────────────────────────────────
	app.Post("/validate", func(c fiber.Ctx) error {
		var req validateRequest
		if err := c.Bind().JSON(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		var def *profile.Definition
		if d, ok := profile.Get(req.Profile); ok {
			def = &d
		}
		result := validate.Validate(req.Graph, def, req.Wizard)
		return c.JSON(fiber.Map{"result": result, "stats": mdf.Summarize(req.Graph)})
	})

	app.Post("/repair", func(c fiber.Ctx) error {
		var req repairRequest
		if err := c.Bind().JSON(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		var def *profile.Definition
		if d, ok := profile.Get(req.Profile); ok {
			def = &d
		}
		return c.JSON(planner.Generate(req.Graph, def))
	})

	app.Post("/repair/apply", func(c fiber.Ctx) error {
		var req applyRequest
		if err := c.Bind().JSON(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		return c.JSON(fiber.Map{"graph": planner.Apply(req.Graph, req.Plan)})
	})

	app.Post("/layout", func(c fiber.Ctx) error {
		var g mdf.Graph
		if err := c.Bind().JSON(&g); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		g = mdf.Sanitize(g)
		return c.JSON(fiber.Map{"nodes": engine.AutoLayout(g), "edges": g.Edges})
	})

	app.Post("/connect/check", func(c fiber.Ctx) error {
		var req connectCheckRequest
		if err := c.Bind().JSON(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		v := rules.Check(
			catalog.Category(req.SourceCategory),
			catalog.Category(req.TargetCategory),
			catalog.PortType(req.SourcePort),
			catalog.PortType(req.TargetPort),
		)
		return c.JSON(v)
	})

	// ── Projects ──────────────────────────────────────────────────────
	app.Post("/projects", func(c fiber.Ctx) error {
		var p mdf.Project
		if err := c.Bind().JSON(&p); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		saved, err := store.SaveProject(c.Context(), &p)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(saved)
	})

	app.Get("/projects", func(c fiber.Ctx) error {
		projects, err := store.ListProjects(c.Context())
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(projects)
	})

	app.Get("/projects/:id", func(c fiber.Ctx) error {
		p, err := store.GetProject(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		if p == nil {
			return c.Status(404).JSON(fiber.Map{"error": "project not found"})
		}
		return c.JSON(p)
	})

	app.Delete("/projects/:id", func(c fiber.Ctx) error {
		if err := store.DeleteProject(c.Context(), c.Params("id")); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.SendStatus(204)
	})

	// ── Shares ────────────────────────────────────────────────────────
	app.Post("/projects/:id/share", func(c fiber.Ctx) error {
		share, err := store.CreateShare(c.Context(), c.Params("id"))
		if errors.Is(err, mdf.ErrProjectNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "project not found"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(share)
	})

	app.Get("/shares/:id", func(c fiber.Ctx) error {
		share, err := store.GetShare(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		if share == nil {
			return c.Status(404).JSON(fiber.Map{"error": "share not found"})
		}
		return c.JSON(share)
	})

	return app
}

func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	var store mdf.Store = postgres.New(pool)

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":3000"
	}
	log.Fatal(newApp(store).Listen(addr))
}
