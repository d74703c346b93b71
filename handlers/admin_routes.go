// handlers/admin_routes.go
package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/SkyeLoft/HTMLBattlepass/middleware"
	"github.com/SkyeLoft/HTMLBattlepass/models"
	"github.com/SkyeLoft/HTMLBattlepass/services"
	"github.com/SkyeLoft/HTMLBattlepass/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

var titleCaser = cases.Title(language.English)

// displayName turns a slugged pool name back into something readable for
// the admin UI ("winter-2025" → "Winter 2025").
func displayName(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, "-", " "))
}

type poolRequest struct {
	Name      string     `json:"name"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

func SetupAdminRoutes(app *fiber.App, lifecycleService *services.LifecycleService, catalogService *services.CatalogService, eligibilityService *services.EligibilityService) {
	admin := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireAdmin())

	// Snapshot of the current rotation — what draws can return right now.
	admin.Get("/eligible", func(c *fiber.Ctx) error {
		items, err := eligibilityService.ResolveEligible(time.Now())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to resolve eligible set",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"items": items,
			"count": len(items),
		})
	})

	// --- Season lifecycle ---

	admin.Post("/seasons", func(c *fiber.Ctx) error {
		var req poolRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
		}
		if req.StartDate.IsZero() {
			req.StartDate = time.Now()
		}

		season, err := lifecycleService.CreateSeason(c.Context(), req.Name, req.StartDate, req.EndDate)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create season",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"season":         season,
			"display_name":   displayName(season.Name),
			"companion_pool": models.CompanionPool(season.Name),
		})
	})

	admin.Get("/seasons", func(c *fiber.Ctx) error {
		seasons, err := lifecycleService.ListSeasons()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list seasons",
				"cause": err.Error(),
			})
		}
		response := make([]fiber.Map, len(seasons))
		for i, season := range seasons {
			response[i] = fiber.Map{
				"season":       season,
				"display_name": displayName(season.Name),
			}
		}
		return c.JSON(response)
	})

	admin.Post("/seasons/:name/current", func(c *fiber.Ctx) error {
		season, err := lifecycleService.SetCurrentSeason(c.Params("name"))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "season not found"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to set current season",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"season": season})
	})

	admin.Post("/seasons/:name/toggle", func(c *fiber.Ctx) error {
		season, err := lifecycleService.ToggleSeasonEnabled(c.Params("name"))
		switch {
		case errors.Is(err, services.ErrSeasonIsCurrent):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "is current",
			})
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "season not found"})
		case err != nil:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to toggle season",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"season": season})
	})

	admin.Delete("/seasons/:name", func(c *fiber.Ctx) error {
		err := lifecycleService.DeleteSeason(c.Params("name"))
		switch {
		case errors.Is(err, services.ErrSeasonIsCurrent):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "is current",
			})
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "season not found"})
		case err != nil:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to delete season",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"deleted": true})
	})

	// --- Event lifecycle ---

	admin.Post("/events", func(c *fiber.Ctx) error {
		var req poolRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
		}
		if req.StartDate.IsZero() {
			req.StartDate = time.Now()
		}

		event, err := lifecycleService.CreateEvent(req.Name, req.StartDate, req.EndDate)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create event",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"event":        event,
			"display_name": displayName(event.Name),
			"active":       event.Active(time.Now()),
		})
	})

	admin.Get("/events", func(c *fiber.Ctx) error {
		events, err := lifecycleService.ListEvents()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list events",
				"cause": err.Error(),
			})
		}
		now := time.Now()
		response := make([]fiber.Map, len(events))
		for i, event := range events {
			response[i] = fiber.Map{
				"event":        event,
				"display_name": displayName(event.Name),
				"active":       event.Active(now),
			}
		}
		return c.JSON(response)
	})

	admin.Post("/events/:name/toggle", func(c *fiber.Ctx) error {
		event, err := lifecycleService.ToggleEventEnabled(c.Params("name"))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "event not found"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to toggle event",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"event": event})
	})

	admin.Delete("/events/:name", func(c *fiber.Ctx) error {
		err := lifecycleService.DeleteEvent(c.Params("name"))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "event not found"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to delete event",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"deleted": true})
	})

	// --- Catalog management ---

	admin.Get("/catalog", func(c *fiber.Ctx) error {
		items, err := catalogService.ListItems()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list catalog",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"items": items,
			"count": len(items),
		})
	})

	admin.Post("/catalog/sync", func(c *fiber.Ctx) error {
		if err := catalogService.Sync(c.Context()); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "catalog sync failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"synced": true})
	})

	admin.Patch("/catalog/:itemID/level", func(c *fiber.Ctx) error {
		type Req struct {
			RequiredLevel int `json:"required_level"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.RequiredLevel < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "required_level must be non-negative",
			})
		}

		item, err := catalogService.SetRequiredLevel(c.Params("itemID"), req.RequiredLevel)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "item not found"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to update item",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"item": item})
	})

	// Upload an image to R2 and register it immediately, so admins don't
	// wait for the next sweep.
	admin.Post("/images", func(c *fiber.Ctx) error {
		imageFile, err := c.FormFile("image")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image is required"})
		}
		pool := services.PoolName(c.FormValue("pool"))
		if pool == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "pool is required"})
		}
		if !utils.IsImageKey(imageFile.Filename) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported image type"})
		}
		requiredLevel, _ := strconv.Atoi(c.FormValue("required_level", "0"))
		if requiredLevel < 0 {
			requiredLevel = 0
		}

		key := pool + "/" + imageFile.Filename
		url, err := utils.UploadImageToR2(imageFile, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to upload image",
				"cause": err.Error(),
			})
		}

		item, err := catalogService.UpsertItem(imageFile.Filename, pool, requiredLevel)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to register image",
				"cause": err.Error(),
			})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"item":      item,
			"image_url": url,
		})
	})
}
