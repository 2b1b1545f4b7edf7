package api

import (
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/http/exts"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services/queries"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

func (v *Controller) toggleFollow(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	id, err := exts.ParamID(c, "profileId")
	if err != nil {
		return err
	}

	following, err := services.ToggleFollow(c.UserContext(), v.db, principal.ID, id)
	if err != nil {
		return err
	}
	return exts.OK(c, fiber.Map{"is_followed_by_me": following}, lo.Ternary(following, "Followed successfully", "Unfollowed successfully"))
}

func (v *Controller) listFollowers(c *fiber.Ctx) error {
	page, err := queries.ListFollowers(c.UserContext(), v.db, c.Params("username"), exts.ViewerOf(c), exts.PageRequestOf(c, queries.DefaultPageLimit))
	if err != nil {
		return err
	}
	return exts.OK(c, page, "Followers fetched successfully")
}

func (v *Controller) listFollowings(c *fiber.Ctx) error {
	page, err := queries.ListFollowings(c.UserContext(), v.db, c.Params("username"), exts.ViewerOf(c), exts.PageRequestOf(c, queries.DefaultPageLimit))
	if err != nil {
		return err
	}
	return exts.OK(c, page, "Followings fetched successfully")
}

func (v *Controller) listSuggestedProfiles(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	page, err := queries.ListSuggestedProfiles(c.UserContext(), v.db, principal.ID, exts.PageRequestOf(c, queries.DefaultPageLimit))
	if err != nil {
		return err
	}
	return exts.OK(c, page, "Suggested profiles fetched successfully")
}
