// handlers/feed_routes.go
package handlers

import (
	"errors"

	"github.com/SkyeLoft/HTMLBattlepass/middleware"
	"github.com/SkyeLoft/HTMLBattlepass/models"
	"github.com/SkyeLoft/HTMLBattlepass/services"
	"github.com/SkyeLoft/HTMLBattlepass/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupFeedRoutes(app *fiber.App, feedService *services.FeedService) {
	// 🔐 Secured routes — the Gateway forwards user context (userID, roles)
	secured := app.Group("/s", middleware.UserContextMiddleware())

	// The gacha pull: one random eligible image per request.
	secured.Get("/feed", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		item, awarded, err := feedService.Draw(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "draw failed",
				"cause": err.Error(),
			})
		}
		if item == nil {
			// Empty pool is a normal state, not an error.
			return c.JSON(fiber.Map{
				"image":   nil,
				"message": "No images available",
			})
		}

		return c.JSON(fiber.Map{
			"image":         item,
			"image_url":     utils.ImageURL(item.Pool + "/" + item.Filename),
			"season":        item.Pool,
			"token_awarded": awarded,
		})
	})

	secured.Post("/unlock/:itemID", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		itemID := c.Params("itemID")

		err := feedService.Unlock(userID, itemID)
		switch {
		case errors.Is(err, services.ErrInsufficientTokens):
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
				"success": false,
				"message": "Not enough tokens",
			})
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "image not found",
			})
		case err != nil:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "unlock failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"success": true})
	})

	secured.Post("/experience", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Amount int `json:"amount"`
		}
		req := Req{Amount: 10} // default gain per activity tick
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "invalid JSON",
					"cause": err.Error(),
				})
			}
		}
		if req.Amount < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "amount must be non-negative",
			})
		}

		prog, err := feedService.GainExperience(userID, req.Amount)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "experience gain failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"experience_points": prog.ExperiencePoints,
			"battle_pass_level": prog.BattlePassLevel,
		})
	})

	secured.Get("/collection", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		items, err := feedService.ListViewed(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list collection",
				"cause": err.Error(),
			})
		}

		response := make([]fiber.Map, len(items))
		for i, item := range items {
			response[i] = fiber.Map{
				"image":     item,
				"image_url": utils.ImageURL(item.Pool + "/" + item.Filename),
			}
		}
		return c.JSON(fiber.Map{
			"items": response,
			"count": len(items),
		})
	})

	secured.Get("/battlepass", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		track, err := feedService.CompanionTrack(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load battle pass",
				"cause": err.Error(),
			})
		}
		prog, err := feedService.EnsureProgression(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load progression",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"items":             track,
			"battle_pass_level": prog.BattlePassLevel,
			"experience_points": prog.ExperiencePoints,
		})
	})

	secured.Get("/user/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		prog, err := feedService.EnsureProgression(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load progression",
				"cause": err.Error(),
			})
		}

		var viewedCount int64
		if err := feedService.DB.Model(&models.ViewedItem{}).
			Where("external_user_id = ?", userID).
			Count(&viewedCount).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to count viewed items",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"id":                prog.ID,
			"tokens":            prog.Tokens,
			"experience_points": prog.ExperiencePoints,
			"battle_pass_level": prog.BattlePassLevel,
			"viewed_count":      viewedCount,
		})
	})
}
