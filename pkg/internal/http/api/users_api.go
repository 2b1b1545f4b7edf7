package api

import (
	"time"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/http/exts"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services/queries"
	"github.com/gofiber/fiber/v2"
)

func (v *Controller) setCookie(c *fiber.Ctx, name, value string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   v.cookieSecure,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}

func (v *Controller) registerUser(c *fiber.Ctx) error {
	var data struct {
		Username string `json:"username" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
		FullName string `json:"full_name" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	user, err := services.RegisterUser(c.UserContext(), v.db, v.mailer, v.searcher, services.RegisterInput{
		Username: data.Username,
		Email:    data.Email,
		Password: data.Password,
		FullName: data.FullName,
	})
	if err != nil {
		return err
	}
	return exts.Created(c, fiber.Map{
		"id":        user.ID,
		"username":  user.Username,
		"email":     user.Email,
		"full_name": user.FullName,
	}, "User created successfully")
}

func (v *Controller) verifyUser(c *fiber.Ctx) error {
	var data struct {
		Identifier string `json:"identifier" validate:"required"`
		OTP        string `json:"otp" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	session, err := services.VerifyOTP(c.UserContext(), v.db, v.tokens, data.Identifier, data.OTP)
	if err != nil {
		return err
	}
	v.setCookie(c, exts.AccessTokenCookie, session.AccessToken, v.tokens.AccessTTL())
	v.setCookie(c, exts.RefreshTokenCookie, session.RefreshToken, v.tokens.RefreshTTL())
	return exts.OK(c, session, "User logged in successfully")
}

func (v *Controller) loginUser(c *fiber.Ctx) error {
	var data struct {
		Identifier string `json:"identifier" validate:"required"`
		Password   string `json:"password" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	if err := services.LoginUser(c.UserContext(), v.db, v.mailer, data.Identifier, data.Password); err != nil {
		return err
	}
	return exts.OK(c, fiber.Map{}, "OTP sent to your email")
}

func (v *Controller) logoutUser(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	everywhere := c.QueryBool("fromAllDevice", false)
	if err := services.LogoutUser(c.UserContext(), v.db, principal.ID, exts.RefreshTokenOf(c), everywhere); err != nil {
		return err
	}
	c.ClearCookie(exts.AccessTokenCookie, exts.RefreshTokenCookie)
	return exts.OK(c, fiber.Map{}, "User logged out successfully")
}

func (v *Controller) getCurrentUser(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	return exts.OK(c, principal, "User found")
}

func (v *Controller) getCurrentUserDetails(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	user, err := services.GetUser(c.UserContext(), v.db, principal.ID)
	if err != nil {
		return err
	}
	return exts.OK(c, user, "User found")
}

func (v *Controller) refreshAccessToken(c *fiber.Ctx) error {
	access, err := services.RefreshAccessToken(c.UserContext(), v.db, v.tokens, exts.RefreshTokenOf(c))
	if err != nil {
		return err
	}
	v.setCookie(c, exts.AccessTokenCookie, access, v.tokens.AccessTTL())
	return exts.OK(c, fiber.Map{"access_token": access}, "Token refreshed successfully")
}

func (v *Controller) changePassword(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	var data struct {
		OldPassword string `json:"old_password" validate:"required"`
		NewPassword string `json:"new_password" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	if err := services.ChangePassword(c.UserContext(), v.db, principal.ID, data.OldPassword, data.NewPassword, exts.RefreshTokenOf(c)); err != nil {
		return err
	}
	return exts.OK(c, fiber.Map{}, "Password changed successfully")
}

func (v *Controller) forgotPassword(c *fiber.Ctx) error {
	var data struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	if err := services.ForgotPassword(c.UserContext(), v.db, v.mailer, data.Email); err != nil {
		return err
	}
	return exts.OK(c, fiber.Map{}, "OTP sent to your email")
}

func (v *Controller) resetPassword(c *fiber.Ctx) error {
	var data struct {
		Email       string `json:"email" validate:"required,email"`
		OTP         string `json:"otp" validate:"required"`
		NewPassword string `json:"new_password" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	if err := services.ResetPassword(c.UserContext(), v.db, data.Email, data.OTP, data.NewPassword); err != nil {
		return err
	}
	return exts.OK(c, fiber.Map{}, "Password reset successfully")
}

func (v *Controller) requestEmailChange(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	var data struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	if err := services.RequestEmailChange(c.UserContext(), v.db, v.mailer, principal.ID, data.Email); err != nil {
		return err
	}
	return exts.OK(c, fiber.Map{}, "OTP sent to your new email")
}

func (v *Controller) verifyEmailChange(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	var data struct {
		Email string `json:"email" validate:"required,email"`
		OTP   string `json:"otp" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	user, err := services.VerifyEmailChange(c.UserContext(), v.db, principal.ID, data.Email, data.OTP)
	if err != nil {
		return err
	}
	return exts.OK(c, user, "Email changed successfully")
}

func (v *Controller) updateUserDetails(c *fiber.Ctx) error {
	principal, _ := exts.GetPrincipal(c)
	var data struct {
		FullName  *string    `json:"full_name" validate:"omitempty,max=128"`
		Dob       *time.Time `json:"dob"`
		Gender    *string    `json:"gender" validate:"omitempty,oneof=F M O"`
		Education *string    `json:"education" validate:"omitempty,max=256"`
		About     *string    `json:"about" validate:"omitempty,max=1024"`
		Address   *string    `json:"address" validate:"omitempty,max=256"`
		Links     []string   `json:"links" validate:"omitempty,dive,url"`
		Interests []string   `json:"interests"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	user, err := services.UpdateUserDetails(c.UserContext(), v.db, v.searcher, principal.ID, services.UserPatch{
		FullName:  data.FullName,
		Dob:       data.Dob,
		Gender:    data.Gender,
		Education: data.Education,
		About:     data.About,
		Address:   data.Address,
		Links:     data.Links,
		Interests: data.Interests,
	})
	if err != nil {
		return err
	}
	return exts.OK(c, user, "User details updated successfully")
}

func (v *Controller) updateUserImage(c *fiber.Ctx, field, kind, message string) error {
	principal, _ := exts.GetPrincipal(c)
	path, cleanup, err := exts.SaveUploadedFile(c, field)
	defer cleanup()
	if err != nil {
		return err
	}

	user, err := services.UpdateUserImage(c.UserContext(), v.db, v.store, principal.ID, kind, path)
	if err != nil {
		return err
	}
	return exts.OK(c, user, message)
}

func (v *Controller) updateAvatar(c *fiber.Ctx) error {
	return v.updateUserImage(c, "avatar", services.ImageAvatar, "Avatar updated successfully")
}

func (v *Controller) updateCoverPhoto(c *fiber.Ctx) error {
	return v.updateUserImage(c, "cover_photo", services.ImageCoverPhoto, "Cover photo updated successfully")
}

func (v *Controller) checkUsername(c *fiber.Ctx) error {
	if err := services.IsUsernameAvailable(c.UserContext(), v.db, c.Params("username")); err != nil {
		return err
	}
	return exts.OK(c, fiber.Map{}, "Username available")
}

func (v *Controller) getProfile(c *fiber.Ctx) error {
	profile, err := queries.GetProfile(c.UserContext(), v.db, c.Params("username"), exts.ViewerOf(c))
	if err != nil {
		return err
	}
	return exts.OK(c, profile, "User found")
}
