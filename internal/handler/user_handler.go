package handler

import (
	"io"
	"strconv"
	"strings"

	"github.com/flickster/flickster/backend/internal/service"
	"github.com/flickster/flickster/backend/pkg/logger"
	"github.com/flickster/flickster/backend/pkg/response"
	"github.com/gofiber/fiber/v2"
)

// Pagination defaults shared by every collection endpoint.
const (
	defaultPageSize = 10
	defaultPage     = 1
	maxPageSize     = 100
)

// pagination reads the size/page query params, falling back to the defaults
// and clamping size to a sane maximum.
func pagination(c *fiber.Ctx) (size, page int) {
	size = defaultPageSize
	page = defaultPage

	if raw := c.Query("size"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			size = v
		}
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	if raw := c.Query("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			page = v
		}
	}
	return size, page
}

type UserHandler struct {
	userSvc *service.UserService
}

func NewUserHandler(userSvc *service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

type UpdateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Username  *string `json:"username"`
	Password  *string `json:"password"`
	CodePhone *string `json:"code_phone"`
	Phone     *string `json:"phone"`
}

// List handles GET /users. Admin only.
func (h *UserHandler) List(c *fiber.Ctx) error {
	size, page := pagination(c)
	result, err := h.userSvc.List(size, page)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, result)
}

// Get handles GET /users/:id. Restricted to the user themselves or an admin.
func (h *UserHandler) Get(c *fiber.Ctx) error {
	user, err := h.userSvc.Get(c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, user)
}

// Update handles PATCH /users/:id. Restricted to the user themselves or an
// admin.
func (h *UserHandler) Update(c *fiber.Ctx) error {
	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if req.Password != nil && !isValidPasswordLength(*req.Password) {
		return response.BadRequest(c, "password must be between 8 and 128 characters")
	}
	if req.Username != nil {
		trimmed := strings.TrimSpace(*req.Username)
		req.Username = &trimmed
	}

	user, err := h.userSvc.Update(c.Params("id"), service.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Password:  req.Password,
		CodePhone: req.CodePhone,
		Phone:     req.Phone,
	})
	if err != nil {
		return response.FromError(c, err)
	}

	logger.Audit("user_updated", user.ID, nil)
	return response.Success(c, user)
}

// UpdateImage handles PATCH /users/:id/image with a multipart profileImage
// file.
func (h *UserHandler) UpdateImage(c *fiber.Ctx) error {
	file, err := c.FormFile("profileImage")
	if err != nil || file == nil {
		return response.BadRequest(c, "no image received")
	}

	f, err := file.Open()
	if err != nil {
		return response.BadRequest(c, "failed to read profile image")
	}
	data, err := io.ReadAll(f)
	_ = f.Close()
	if err != nil {
		return response.BadRequest(c, "failed to read profile image")
	}

	user, err := h.userSvc.UpdateProfileImage(c.Context(), c.Params("id"), file.Filename, data)
	if err != nil {
		return response.FromError(c, err)
	}

	RecordMediaUpload("image", float64(len(data)))
	logger.Audit("user_image_updated", user.ID, nil)
	return response.Success(c, user)
}

// Delete handles DELETE /users/:id. Restricted to the user themselves or an
// admin.
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.userSvc.Delete(id); err != nil {
		return response.FromError(c, err)
	}

	logger.Audit("user_deleted", id, nil)
	return response.Success(c, fiber.Map{
		"message": "User deleted",
	})
}
