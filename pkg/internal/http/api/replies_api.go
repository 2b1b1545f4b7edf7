package api

import (
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/http/exts"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services/queries"
	"github.com/gofiber/fiber/v2"
)

func (v *Controller) createReply(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	var data struct {
		CommentID uint   `json:"comment_id" validate:"required"`
		Content   string `json:"content" validate:"required,max=4096"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	item, err := services.CreateReply(c.UserContext(), v.db, principal.ID, data.CommentID, data.Content)
	if err != nil {
		return err
	}
	return exts.Created(c, item, "Reply created successfully")
}

func (v *Controller) updateReply(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	id, err := exts.ParamID(c, "replyId")
	if err != nil {
		return err
	}
	var data contentBody
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	item, err := services.UpdateReply(c.UserContext(), v.db, principal.ID, id, data.Content)
	if err != nil {
		return err
	}
	return exts.OK(c, item, "Reply updated successfully")
}

func (v *Controller) deleteReply(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	id, err := exts.ParamID(c, "replyId")
	if err != nil {
		return err
	}

	item, err := services.DeleteReply(c.UserContext(), v.db, principal.ID, id)
	if err != nil {
		return err
	}
	return exts.OK(c, item, "Reply deleted successfully")
}

func (v *Controller) listReplies(c *fiber.Ctx) error {
	id, err := exts.ParamID(c, "commentId")
	if err != nil {
		return err
	}

	page, err := queries.ListReplies(c.UserContext(), v.db, id, exts.ViewerOf(c), exts.PageRequestOf(c, queries.DefaultPageLimit))
	if err != nil {
		return err
	}
	return exts.OK(c, page, "Replies fetched successfully")
}
