package api

import (
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/http/exts"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services/queries"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

func (v *Controller) toggleLike(param string, kind models.LikeTargetKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, _ := exts.GetPrincipal(c)
		id, err := exts.ParamID(c, param)
		if err != nil {
			return err
		}

		liked, err := services.ToggleLike(c.UserContext(), v.db, principal.ID, kind, id)
		if err != nil {
			return err
		}
		return exts.OK(c, fiber.Map{"is_liked": liked}, lo.Ternary(liked, "Liked successfully", "Unliked successfully"))
	}
}

func (v *Controller) listPostLikers(c *fiber.Ctx) error {
	id, err := exts.ParamID(c, "postId")
	if err != nil {
		return err
	}

	page, err := queries.ListPostLikers(c.UserContext(), v.db, id, exts.ViewerOf(c), exts.PageRequestOf(c, queries.DefaultPageLimit))
	if err != nil {
		return err
	}
	return exts.OK(c, page, "Profiles fetched successfully")
}
