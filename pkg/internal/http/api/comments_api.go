package api

import (
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/http/exts"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services/queries"
	"github.com/gofiber/fiber/v2"
)

type contentBody struct {
	Content string `json:"content" validate:"required,max=4096"`
}

func (v *Controller) createComment(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	var data struct {
		PostID  uint   `json:"post_id" validate:"required"`
		Content string `json:"content" validate:"required,max=4096"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	item, err := services.CreateComment(c.UserContext(), v.db, principal.ID, data.PostID, data.Content)
	if err != nil {
		return err
	}
	return exts.Created(c, item, "Comment created successfully")
}

func (v *Controller) updateComment(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	id, err := exts.ParamID(c, "commentId")
	if err != nil {
		return err
	}
	var data contentBody
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	item, err := services.UpdateComment(c.UserContext(), v.db, principal.ID, id, data.Content)
	if err != nil {
		return err
	}
	return exts.OK(c, item, "Comment updated successfully")
}

func (v *Controller) deleteComment(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	id, err := exts.ParamID(c, "commentId")
	if err != nil {
		return err
	}

	item, err := services.DeleteComment(c.UserContext(), v.db, principal.ID, id)
	if err != nil {
		return err
	}
	return exts.OK(c, item, "Comment deleted successfully")
}

func (v *Controller) listComments(c *fiber.Ctx) error {
	id, err := exts.ParamID(c, "postId")
	if err != nil {
		return err
	}

	page, err := queries.ListComments(c.UserContext(), v.db, id, exts.ViewerOf(c), exts.PageRequestOf(c, queries.DefaultPageLimit))
	if err != nil {
		return err
	}
	return exts.OK(c, page, "Comments fetched successfully")
}
