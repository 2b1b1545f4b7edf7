package api

import (
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/http/exts"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services/queries"
	"github.com/gofiber/fiber/v2"
)

func (v *Controller) createGroup(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	var data struct {
		GroupName   string `json:"group_name" form:"group_name" validate:"required"`
		Description string `json:"description" form:"description"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	path, cleanup, err := exts.SaveUploadedFile(c, "image")
	defer cleanup()
	if err != nil {
		return err
	}

	group, err := services.CreateGroup(c.UserContext(), v.db, v.store, v.searcher, principal.ID, services.GroupInput{
		GroupName:   data.GroupName,
		Description: data.Description,
		IconPath:    path,
	})
	if err != nil {
		return err
	}
	return exts.Created(c, group, "Group created successfully")
}

func (v *Controller) updateGroup(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	id, err := exts.ParamID(c, "groupId")
	if err != nil {
		return err
	}
	var data struct {
		GroupName   *string `json:"group_name"`
		Description *string `json:"description"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	group, err := services.UpdateGroup(c.UserContext(), v.db, v.searcher, principal.ID, id, services.GroupPatch{
		GroupName:   data.GroupName,
		Description: data.Description,
	})
	if err != nil {
		return err
	}
	return exts.OK(c, group, "Group updated successfully")
}

func (v *Controller) updateGroupImage(field, kind string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, _ := exts.GetPrincipal(c)
		id, err := exts.ParamID(c, "groupId")
		if err != nil {
			return err
		}
		path, cleanup, err := exts.SaveUploadedFile(c, field)
		defer cleanup()
		if err != nil {
			return err
		}

		group, err := services.UpdateGroupImage(c.UserContext(), v.db, v.store, principal.ID, id, kind, path)
		if err != nil {
			return err
		}
		return exts.OK(c, group, "Group "+field+" updated successfully")
	}
}

func (v *Controller) updateGroupSettings(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	id, err := exts.ParamID(c, "groupId")
	if err != nil {
		return err
	}
	var data struct {
		OnlyAdminCanEditGroupSettings *bool `json:"only_admin_can_edit_group_settings" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	group, err := services.UpdateGroupSettings(c.UserContext(), v.db, principal.ID, id, *data.OnlyAdminCanEditGroupSettings)
	if err != nil {
		return err
	}
	return exts.OK(c, group, "Group settings updated successfully")
}

func (v *Controller) deleteGroup(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	id, err := exts.ParamID(c, "groupId")
	if err != nil {
		return err
	}

	if err := services.DeleteGroup(c.UserContext(), v.db, v.store, v.searcher, principal.ID, id); err != nil {
		return err
	}
	return exts.OK(c, fiber.Map{}, "Group deleted successfully")
}

func (v *Controller) getGroup(c *fiber.Ctx) error {
	id, err := exts.ParamID(c, "groupId")
	if err != nil {
		return err
	}

	group, err := queries.GetGroupDetail(c.UserContext(), v.db, id, exts.ViewerOf(c))
	if err != nil {
		return err
	}
	return exts.OK(c, group, "Group fetched successfully")
}

func (v *Controller) listGroupMembers(c *fiber.Ctx) error {
	id, err := exts.ParamID(c, "groupId")
	if err != nil {
		return err
	}

	page, err := queries.ListGroupMembers(c.UserContext(), v.db, id, exts.ViewerOf(c), exts.PageRequestOf(c, queries.DefaultPageLimit))
	if err != nil {
		return err
	}
	return exts.OK(c, page, "Members fetched successfully")
}
