package api

import (
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/http/exts"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services/queries"
	"github.com/gofiber/fiber/v2"
)

func (v *Controller) createPost(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	var data struct {
		Title      string `json:"title" form:"title" validate:"max=1024"`
		Content    string `json:"content" form:"content"`
		Type       string `json:"type" form:"type"`
		Visibility string `json:"visibility" form:"visibility"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	path, cleanup, err := exts.SaveUploadedFile(c, "asset")
	defer cleanup()
	if err != nil {
		return err
	}

	item, err := services.CreatePost(c.UserContext(), v.db, v.store, v.searcher, principal.ID, services.PostInput{
		Title:      data.Title,
		Content:    data.Content,
		Type:       data.Type,
		Visibility: data.Visibility,
		AssetPath:  path,
	})
	if err != nil {
		return err
	}
	return exts.Created(c, item, "Post created successfully")
}

func (v *Controller) forkPost(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	var data struct {
		PostID     uint   `json:"post_id" validate:"required"`
		Title      string `json:"title" validate:"max=1024"`
		Visibility string `json:"visibility"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	item, err := services.ForkPost(c.UserContext(), v.db, v.searcher, principal.ID, data.PostID, data.Title, data.Visibility)
	if err != nil {
		return err
	}
	return exts.Created(c, item, "Post forked successfully")
}

func (v *Controller) updatePost(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	id, err := exts.ParamID(c, "postId")
	if err != nil {
		return err
	}
	var data struct {
		Title      *string `json:"title" validate:"omitempty,max=1024"`
		Content    *string `json:"content"`
		Visibility *string `json:"visibility"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	item, err := services.UpdatePost(c.UserContext(), v.db, v.searcher, principal.ID, id, services.PostPatch{
		Title:      data.Title,
		Content:    data.Content,
		Visibility: data.Visibility,
	})
	if err != nil {
		return err
	}
	return exts.OK(c, item, "Post updated successfully")
}

func (v *Controller) deletePost(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	id, err := exts.ParamID(c, "postId")
	if err != nil {
		return err
	}

	if err := services.DeletePost(c.UserContext(), v.db, v.store, v.searcher, principal.ID, id); err != nil {
		return err
	}
	return exts.OK(c, fiber.Map{}, "Post deleted successfully")
}

func (v *Controller) getPost(c *fiber.Ctx) error {
	id, err := exts.ParamID(c, "postId")
	if err != nil {
		return err
	}

	item, err := queries.GetPostDetail(c.UserContext(), v.db, id, exts.ViewerOf(c))
	if err != nil {
		return err
	}
	return exts.OK(c, item, "Post fetched successfully")
}

func (v *Controller) listPosts(c *fiber.Ctx) error {
	page, err := queries.ListPostFeed(c.UserContext(), v.db, queries.FeedFilter{
		Type:       c.Query("type", "all"),
		Visibility: c.Query("visibility", "public"),
		Author:     c.Query("author"),
	}, exts.ViewerOf(c), exts.PageRequestOf(c, queries.FeedPageLimit))
	if err != nil {
		return err
	}
	return exts.OK(c, page, "Posts fetched successfully")
}
