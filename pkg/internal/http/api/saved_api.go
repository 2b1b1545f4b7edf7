package api

import (
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/http/exts"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services/queries"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

func (v *Controller) toggleSave(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	id, err := exts.ParamID(c, "postId")
	if err != nil {
		return err
	}

	saved, err := services.ToggleSave(c.UserContext(), v.db, principal.ID, id)
	if err != nil {
		return err
	}
	return exts.OK(c, fiber.Map{"is_saved": saved}, lo.Ternary(saved, "Post saved successfully", "Post unsaved successfully"))
}

func (v *Controller) listSavedPosts(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	page, err := queries.ListSavedPosts(c.UserContext(), v.db, principal.ID, exts.PageRequestOf(c, queries.FeedPageLimit))
	if err != nil {
		return err
	}
	return exts.OK(c, page, "Saved posts fetched successfully")
}
