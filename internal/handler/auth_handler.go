package handler

import (
	"io"
	"net/mail"
	"regexp"
	"strings"

	"github.com/flickster/flickster/backend/internal/service"
	"github.com/flickster/flickster/backend/pkg/logger"
	"github.com/flickster/flickster/backend/pkg/response"
	"github.com/gofiber/fiber/v2"
)

// emailRegex provides additional validation beyond net/mail
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidEmail(email string) bool {
	if len(email) > 254 {
		return false
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return false
	}
	return emailRegex.MatchString(email)
}

func isValidPasswordLength(password string) bool {
	n := len(password)
	return n >= 8 && n <= 128
}

type AuthHandler struct {
	authSvc     *service.AuthService
	userSvc     *service.UserService
	mailer      service.Mailer
	resetDomain string
}

func NewAuthHandler(authSvc *service.AuthService, userSvc *service.UserService, mailer service.Mailer, resetDomain string) *AuthHandler {
	return &AuthHandler{
		authSvc:     authSvc,
		userSvc:     userSvc,
		mailer:      mailer,
		resetDomain: strings.TrimRight(resetDomain, "/"),
	}
}

type SignUpRequest struct {
	FirstName string `json:"first_name" form:"first_name"`
	LastName  string `json:"last_name" form:"last_name"`
	Email     string `json:"email" form:"email"`
	Username  string `json:"username" form:"username"`
	Password  string `json:"password" form:"password"`
	CodePhone string `json:"code_phone" form:"code_phone"`
	Phone     string `json:"phone" form:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgetPasswordRequest struct {
	Email string `json:"email"`
}

type ChangePasswordRequest struct {
	Password string `json:"password"`
}

// SignUp handles POST /auth/sign-up. Accepts JSON or multipart form data;
// the multipart form may carry a profileImage file.
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	req.Email = normalizeEmail(req.Email)
	if !isValidEmail(req.Email) {
		return response.BadRequest(c, "invalid email format")
	}
	if !isValidPasswordLength(req.Password) {
		return response.BadRequest(c, "password must be between 8 and 128 characters")
	}

	imageName := ""
	var imageData []byte
	if file, err := c.FormFile("profileImage"); err == nil && file != nil {
		f, err := file.Open()
		if err != nil {
			return response.BadRequest(c, "failed to read profile image")
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return response.BadRequest(c, "failed to read profile image")
		}
		imageName = file.Filename
		imageData = data
	}

	user, secondary, err := h.userSvc.SignUp(c.Context(), service.CreateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Username:  strings.TrimSpace(req.Username),
		Password:  req.Password,
		CodePhone: req.CodePhone,
		Phone:     req.Phone,
	}, imageName, imageData)
	if err != nil {
		return response.FromError(c, err)
	}

	RecordUserRegistered()
	logger.Audit("user_signup", user.ID, map[string]string{"email": user.Email})

	var fieldErrors []response.FieldError
	if secondary != nil {
		fieldErrors = append(fieldErrors, response.FieldError{
			Name:    "profileImage",
			Message: secondary.Error(),
		})
	}
	if err := h.mailer.SendWelcome(c.Context(), user.Email, user.FirstName); err != nil {
		logger.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to send welcome email")
		fieldErrors = append(fieldErrors, response.FieldError{
			Name:    "email",
			Message: "the welcome email could not be delivered",
		})
	}

	c.Status(fiber.StatusCreated)
	if len(fieldErrors) > 0 {
		return response.SuccessWithErrors(c, user, fieldErrors)
	}
	return response.Success(c, user)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	user, token, err := h.authSvc.Login(normalizeEmail(req.Email), req.Password)
	if err != nil {
		RecordAuthFailure("login_failed")
		return response.FromError(c, err)
	}

	logger.Audit("user_login", user.ID, map[string]string{"email": user.Email})
	return response.Success(c, fiber.Map{
		"message": "Correct Credentials",
		"token":   token,
	})
}

// ForgetPassword handles POST /auth/forget-password. It issues a single-use
// recovery token and mails a reset link built from it.
func (h *AuthHandler) ForgetPassword(c *fiber.Ctx) error {
	var req ForgetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	email := normalizeEmail(req.Email)
	if !isValidEmail(email) {
		return response.BadRequest(c, "invalid email format")
	}

	user, token, err := h.authSvc.CreateRecoveryToken(email)
	if err != nil {
		return response.FromError(c, err)
	}

	RecordRecoveryTokenIssued()
	logger.Audit("password_recovery_requested", user.ID, map[string]string{"email": user.Email})

	resetLink := h.resetDomain + "/api/v1/auth/change-password/" + token
	if err := h.mailer.SendPasswordReset(c.Context(), user.Email, user.FirstName, resetLink); err != nil {
		logger.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to send password reset email")
		return response.SuccessWithErrors(c,
			fiber.Map{"message": "Recovery token created"},
			[]response.FieldError{{Name: "email", Message: "the reset email could not be delivered"}},
		)
	}

	return response.Success(c, fiber.Map{
		"message": "Email sent with password reset instructions",
	})
}

// ChangePassword handles POST /auth/change-password/:token. The token in the
// path must both decode and match the outstanding recovery token on the
// account it names.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	rawToken := strings.TrimSpace(c.Params("token"))
	if rawToken == "" {
		return response.BadRequest(c, "recovery token is required")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if !isValidPasswordLength(req.Password) {
		return response.BadRequest(c, "password must be between 8 and 128 characters")
	}

	claims, err := h.authSvc.VerifyToken(rawToken)
	if err != nil {
		RecordAuthFailure("recovery_token_invalid")
		return response.FromError(c, err)
	}

	user, err := h.authSvc.ChangePassword(claims, req.Password, rawToken)
	if err != nil {
		RecordAuthFailure("recovery_redemption_failed")
		return response.FromError(c, err)
	}

	logger.Audit("password_changed", user.ID, map[string]string{"email": user.Email})
	return response.Success(c, fiber.Map{
		"message": "Password changed successfully",
	})
}

// Me handles GET /auth/me for the authenticated user.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return response.FromError(c, err)
	}

	user, err := h.authSvc.GetUserByID(userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, user)
}
