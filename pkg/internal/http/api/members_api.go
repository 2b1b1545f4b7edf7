package api

import (
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/http/exts"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func groupAndUser(c *fiber.Ctx, userParam string) (uint, uint, error) {
	group, err := exts.ParamID(c, "groupId")
	if err != nil {
		return 0, 0, err
	}
	user, err := exts.ParamID(c, userParam)
	if err != nil {
		return 0, 0, err
	}
	return group, user, nil
}

func (v *Controller) toggleAdminRole(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	group, user, err := groupAndUser(c, "userId")
	if err != nil {
		return err
	}

	member, err := services.ToggleAdminRole(c.UserContext(), v.db, principal.ID, group, user)
	if err != nil {
		return err
	}
	return exts.OK(c, member, "Member role updated successfully")
}

func (v *Controller) addMember(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	group, user, err := groupAndUser(c, "userId")
	if err != nil {
		return err
	}

	member, err := services.AddMember(c.UserContext(), v.db, principal.ID, group, user)
	if err != nil {
		return err
	}
	return exts.Created(c, member, "Member added successfully")
}

func (v *Controller) joinGroup(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	group, admin, err := groupAndUser(c, "adminId")
	if err != nil {
		return err
	}

	member, err := services.JoinGroup(c.UserContext(), v.db, principal.ID, group, admin)
	if err != nil {
		return err
	}
	return exts.Created(c, member, "Joined group successfully")
}

func (v *Controller) leaveGroup(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	group, err := exts.ParamID(c, "groupId")
	if err != nil {
		return err
	}

	if err := services.LeaveGroup(c.UserContext(), v.db, principal.ID, group); err != nil {
		return err
	}
	return exts.OK(c, fiber.Map{}, "Left group successfully")
}

func (v *Controller) removeMember(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	group, user, err := groupAndUser(c, "userId")
	if err != nil {
		return err
	}

	if err := services.RemoveMember(c.UserContext(), v.db, principal.ID, group, user); err != nil {
		return err
	}
	return exts.OK(c, fiber.Map{}, "Member removed successfully")
}
