package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/auth"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/mail"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/models"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/search"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/storage"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OTPLifetime is how long a mailed one-time code stays valid.
const OTPLifetime = 10 * time.Minute

const (
	MinPasswordLength = 8
	MaxUsernameLength = 64
	passwordSpecials  = "!@#$%^&*"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ValidationError("password must be at least %d characters long", MinPasswordLength)
	}
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	switch {
	case !lower:
		return ValidationError("password must contain at least one lowercase letter")
	case !upper:
		return ValidationError("password must contain at least one uppercase letter")
	case !digit:
		return ValidationError("password must contain at least one digit")
	case !special:
		return ValidationError("password must contain at least one special character")
	}
	return nil
}

// ValidateUsername accepts lowercase letters, digits and inner hyphens, starting with a letter.
func ValidateUsername(username string) error {
	if username == "" {
		return ValidationError("username is required")
	}
	if len(username) > MaxUsernameLength {
		return ValidationError("username should not exceed %d characters", MaxUsernameLength)
	}
	if strings.HasPrefix(username, "-") || strings.HasSuffix(username, "-") {
		return ValidationError("username cannot start or end with '-'")
	}
	for _, r := range username {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '-' {
			return ValidationError("username can only contain lowercase letters, numbers and hyphens")
		}
	}
	if username[0] >= '0' && username[0] <= '9' {
		return ValidationError("username cannot start with a number")
	}
	return nil
}

func ValidateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return ValidationError("invalid email address")
	}
	return nil
}

func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func otpMatches(stored *string, expires *time.Time, given string) error {
	if stored == nil || subtle.ConstantTimeCompare([]byte(*stored), []byte(given)) != 1 {
		return NotFoundError("invalid otp")
	}
	if expires == nil || expires.Before(time.Now()) {
		return ValidationError("otp expired")
	}
	return nil
}

func issueOTP() (*string, *time.Time, error) {
	code, err := GenerateOTP()
	if err != nil {
		return nil, nil, InternalError(err, "unable to generate otp")
	}
	return &code, lo.ToPtr(time.Now().Add(OTPLifetime)), nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", InternalError(err, "unable to hash password")
	}
	return string(hash), nil
}

func sendCode(ctx context.Context, mailer mail.Sender, template mail.Template, address, name, code string) error {
	if err := mailer.Send(ctx, template, address, name, code); err != nil {
		log.Error().Err(err).Str("template", string(template)).Str("address", address).Msg("An error occurred when sending mail...")
		return InternalError(err, "unable to send verification code")
	}
	return nil
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
}

// RegisterUser creates an unverified account and mails its first code. When the mail cannot be
// sent the account is kept and signing in mails a fresh code.
func RegisterUser(ctx context.Context, db *gorm.DB, mailer mail.Sender, idx search.Indexer, in RegisterInput) (models.User, error) {
	var user models.User
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	if in.Username == "" || in.Email == "" || in.Password == "" || in.FullName == "" {
		return user, ValidationError("all fields are required")
	}
	if err := ValidatePassword(in.Password); err != nil {
		return user, err
	}
	if err := ValidateEmail(in.Email); err != nil {
		return user, err
	}
	if err := ValidateUsername(in.Username); err != nil {
		return user, err
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", in.Username, in.Email).
		Count(&count).Error; err != nil {
		return user, InternalError(err, "unable to check existing users")
	} else if count > 0 {
		return user, ConflictError("user already exists")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return user, err
	}
	otp, expires, err := issueOTP()
	if err != nil {
		return user, err
	}

	user = models.User{
		Username:       in.Username,
		Email:          in.Email,
		PasswordHash:   hash,
		FullName:       in.FullName,
		Avatar:         DefaultImage(ImageAvatar),
		CoverPhoto:     DefaultImage(ImageCoverPhoto),
		LoginOTP:       otp,
		LoginExpiresAt: expires,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return user, ConflictError("user already exists")
		}
		return user, InternalError(err, "failed to create user")
	}

	indexUser(ctx, idx, user)
	return user, sendCode(ctx, mailer, mail.TemplateWelcomeUser, user.Email, user.FullName, *otp)
}

func findUserByIdentifier(ctx context.Context, db *gorm.DB, identifier string) (models.User, error) {
	var user models.User
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return user, ValidationError("email or username is required")
	}
	err := db.WithContext(ctx).
		Where("email = ? OR username = ?", strings.ToLower(identifier), identifier).
		First(&user).Error
	if err != nil {
		return user, LookupError(err, "user")
	}
	return user, nil
}

// LoginUser checks the password and mails a login code, the session is opened by VerifyOTP.
func LoginUser(ctx context.Context, db *gorm.DB, mailer mail.Sender, identifier, password string) error {
	if password == "" {
		return ValidationError("email or username and password are required")
	}
	user, err := findUserByIdentifier(ctx, db, identifier)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return ValidationError("invalid password")
	}

	otp, expires, err := issueOTP()
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Model(&user).Updates(map[string]any{
		"login_otp":        otp,
		"login_expires_at": expires,
	}).Error; err != nil {
		return InternalError(err, "failed to update user")
	}

	return sendCode(ctx, mailer, mail.TemplateLoginAccount, user.Email, user.FullName, *otp)
}

type Session struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
}

func VerifyOTP(ctx context.Context, db *gorm.DB, tokens *auth.Manager, identifier, otp string) (Session, error) {
	var session Session
	if otp == "" {
		return session, ValidationError("otp is required")
	}
	user, err := findUserByIdentifier(ctx, db, identifier)
	if err != nil {
		if IsKind(err, KindNotFound) {
			return session, NotFoundError("invalid otp")
		}
		return session, err
	}
	if err := otpMatches(user.LoginOTP, user.LoginExpiresAt, otp); err != nil {
		return session, err
	}

	access, refresh, err := tokens.IssueTokenPair(user.ID)
	if err != nil {
		return session, InternalError(err, "unable to issue tokens")
	}

	refreshTokens := append(user.RefreshTokens, refresh)
	if len(refreshTokens) > models.MaxRefreshTokens {
		refreshTokens = refreshTokens[len(refreshTokens)-models.MaxRefreshTokens:]
	}
	user.RefreshTokens = datatypes.JSONSlice[string](refreshTokens)
	user.IsVerified = true
	user.LoginOTP = nil
	user.LoginExpiresAt = nil
	if err := db.WithContext(ctx).Save(&user).Error; err != nil {
		return session, InternalError(err, "failed to verify user")
	}

	return Session{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

func tokenError(err error) error {
	if errors.Is(err, auth.ErrExpiredToken) {
		return TokenExpiredError("token expired")
	}
	return UnauthorizedError("unauthorized request")
}

func RefreshAccessToken(ctx context.Context, db *gorm.DB, tokens *auth.Manager, refresh string) (string, error) {
	if refresh == "" {
		return "", UnauthorizedError("unauthorized request")
	}
	claims, err := tokens.ParseRefreshToken(refresh)
	if err != nil {
		return "", tokenError(err)
	}
	id, err := claims.UserID()
	if err != nil {
		return "", tokenError(err)
	}

	var user models.User
	if err := db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", UnauthorizedError("unauthorized request")
		}
		return "", InternalError(err, "unable to load user")
	}
	if !lo.Contains(user.RefreshTokens, refresh) {
		return "", UnauthorizedError("unauthorized request")
	}

	access, err := tokens.IssueAccessToken(user.ID)
	if err != nil {
		return "", InternalError(err, "unable to issue token")
	}
	return access, nil
}

// LogoutUser drops one refresh token, or all of them when everywhere is set.
func LogoutUser(ctx context.Context, db *gorm.DB, userID uint, refresh string, everywhere bool) error {
	var user models.User
	if err := db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return LookupError(err, "user")
	}
	if everywhere {
		user.RefreshTokens = datatypes.JSONSlice[string]{}
	} else {
		user.RefreshTokens = lo.Without(user.RefreshTokens, refresh)
	}
	if err := db.WithContext(ctx).Model(&user).Update("refresh_tokens", user.RefreshTokens).Error; err != nil {
		return InternalError(err, "failed to log out")
	}
	return nil
}

// ChangePassword replaces the password and signs out every other session.
func ChangePassword(ctx context.Context, db *gorm.DB, userID uint, oldPassword, newPassword, keepRefresh string) error {
	if oldPassword == "" || newPassword == "" {
		return ValidationError("all fields are required")
	}
	if oldPassword == newPassword {
		return ValidationError("old password and new password cannot be same")
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	var user models.User
	if err := db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return LookupError(err, "user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return ValidationError("invalid password")
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.RefreshTokens = lo.Filter(user.RefreshTokens, func(item string, _ int) bool {
		return item == keepRefresh
	})
	if err := db.WithContext(ctx).Save(&user).Error; err != nil {
		return InternalError(err, "failed to change password")
	}
	return nil
}

func ForgotPassword(ctx context.Context, db *gorm.DB, mailer mail.Sender, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ValidationError("email is required")
	}
	var user models.User
	if err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return LookupError(err, "user")
	}

	otp, expires, err := issueOTP()
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Model(&user).Updates(map[string]any{
		"reset_password_otp":        otp,
		"reset_password_expires_at": expires,
	}).Error; err != nil {
		return InternalError(err, "failed to update user")
	}

	return sendCode(ctx, mailer, mail.TemplateResetPassword, user.Email, user.FullName, *otp)
}

// ResetPassword sets a new password from a mailed code, every session is signed out.
func ResetPassword(ctx context.Context, db *gorm.DB, email, otp, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || otp == "" || newPassword == "" {
		return ValidationError("all fields are required")
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	var user models.User
	if err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundError("invalid otp")
		}
		return InternalError(err, "unable to load user")
	}
	if err := otpMatches(user.ResetPasswordOTP, user.ResetPasswordExpiresAt, otp); err != nil {
		return err
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.ResetPasswordOTP = nil
	user.ResetPasswordExpiresAt = nil
	user.RefreshTokens = datatypes.JSONSlice[string]{}
	if err := db.WithContext(ctx).Save(&user).Error; err != nil {
		return InternalError(err, "failed to reset password")
	}
	return nil
}

// RequestEmailChange mails a code to the new address, the address is swapped by VerifyEmailChange.
func RequestEmailChange(ctx context.Context, db *gorm.DB, mailer mail.Sender, userID uint, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := ValidateEmail(email); err != nil {
		return err
	}

	var user models.User
	if err := db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return LookupError(err, "user")
	}
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return InternalError(err, "unable to check existing users")
	} else if count > 0 {
		return ConflictError("user with same email already exists")
	}

	otp, expires, err := issueOTP()
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Model(&user).Updates(map[string]any{
		"pending_email":           email,
		"email_change_otp":        otp,
		"email_change_expires_at": expires,
	}).Error; err != nil {
		return InternalError(err, "failed to update user")
	}

	return sendCode(ctx, mailer, mail.TemplateChangeEmail, email, user.FullName, *otp)
}

func VerifyEmailChange(ctx context.Context, db *gorm.DB, userID uint, email, otp string) (models.User, error) {
	var user models.User
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || otp == "" {
		return user, ValidationError("all fields are required")
	}
	if err := db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return user, LookupError(err, "user")
	}
	if user.PendingEmail == nil || *user.PendingEmail != email {
		return user, NotFoundError("invalid otp")
	}
	if err := otpMatches(user.EmailChangeOTP, user.EmailChangeExpiresAt, otp); err != nil {
		return user, err
	}

	user.Email = email
	user.PendingEmail = nil
	user.EmailChangeOTP = nil
	user.EmailChangeExpiresAt = nil
	if err := db.WithContext(ctx).Save(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return user, ConflictError("user with same email already exists")
		}
		return user, InternalError(err, "failed to change email")
	}
	return user, nil
}

type UserPatch struct {
	FullName  *string
	Dob       *time.Time
	Gender    *string
	Education *string
	About     *string
	Address   *string
	Links     []string
	Interests []string
}

func UpdateUserDetails(ctx context.Context, db *gorm.DB, idx search.Indexer, userID uint, patch UserPatch) (models.User, error) {
	var user models.User
	if patch.FullName == nil && patch.Dob == nil && patch.Gender == nil && patch.Education == nil &&
		patch.About == nil && patch.Address == nil && patch.Links == nil && patch.Interests == nil {
		return user, ValidationError("at least one field is required")
	}
	if patch.Gender != nil && !lo.Contains([]string{models.GenderFemale, models.GenderMale, models.GenderOther}, *patch.Gender) {
		return user, ValidationError("invalid gender %q", *patch.Gender)
	}
	if err := db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return user, LookupError(err, "user")
	}

	if patch.FullName != nil && strings.TrimSpace(*patch.FullName) != "" {
		user.FullName = strings.TrimSpace(*patch.FullName)
	}
	if patch.Dob != nil {
		user.Dob = patch.Dob
	}
	if patch.Gender != nil {
		user.Gender = patch.Gender
	}
	if patch.Education != nil {
		user.Education = *patch.Education
	}
	if patch.About != nil {
		user.About = *patch.About
	}
	if patch.Address != nil {
		user.Address = *patch.Address
	}
	if patch.Links != nil {
		user.Links = patch.Links
	}
	if patch.Interests != nil {
		user.Interests = patch.Interests
	}

	if err := db.WithContext(ctx).Save(&user).Error; err != nil {
		return user, InternalError(err, "failed to update user")
	}
	indexUser(ctx, idx, user)
	return user, nil
}

// UpdateUserImage replaces the avatar or cover photo. Once the row points at the new upload
// the previous one is removed unless it is the placeholder.
func UpdateUserImage(ctx context.Context, db *gorm.DB, store storage.Uploader, userID uint, kind, localPath string) (models.User, error) {
	var user models.User
	if kind != ImageAvatar && kind != ImageCoverPhoto {
		return user, ValidationError("invalid image kind %q", kind)
	}
	if localPath == "" {
		return user, ValidationError("%s is required", strings.ReplaceAll(kind, "_", " "))
	}
	if err := db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return user, LookupError(err, "user")
	}

	current := lo.Ternary(kind == ImageAvatar, user.Avatar, user.CoverPhoto)
	upload, err := store.Upload(ctx, localPath)
	if err != nil {
		return user, UploadError(err, "failed to upload %s", kind)
	}

	if err := db.WithContext(ctx).Model(&user).Update(kind, upload.URL).Error; err != nil {
		if err := store.Delete(ctx, upload.Ref); err != nil {
			log.Warn().Err(err).Str("asset", upload.URL).Msg("Unable to clean up an image that was never used...")
		}
		return user, InternalError(err, "failed to update user")
	}
	if kind == ImageAvatar {
		user.Avatar = upload.URL
	} else {
		user.CoverPhoto = upload.URL
	}

	if !IsDefaultImage(kind, current) {
		if err := store.Delete(ctx, storage.PublicRef(current)); err != nil {
			log.Warn().Err(err).Str("asset", current).Msg("Unable to delete previous image...")
		}
	}
	return user, nil
}

func IsUsernameAvailable(ctx context.Context, db *gorm.DB, username string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return InternalError(err, "unable to check username")
	} else if count > 0 {
		return ConflictError("username already taken")
	}
	return nil
}

func GetUser(ctx context.Context, db *gorm.DB, id uint) (models.User, error) {
	var user models.User
	if err := db.WithContext(ctx).First(&user, id).Error; err != nil {
		return user, LookupError(err, "user")
	}
	return user, nil
}
