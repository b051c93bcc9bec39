package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/flickster/flickster/backend/internal/models"
	"github.com/flickster/flickster/backend/internal/repository"
	"github.com/flickster/flickster/backend/pkg/apperr"
	"github.com/flickster/flickster/backend/pkg/password"
)

const userImageKeyPrefix = "public/users/profiles/profile-"

// UserService manages account records. Credential hashing happens here so no
// plaintext password ever reaches the repository layer.
type UserService struct {
	userRepo *repository.UserRepository
	media    *MediaService
}

func NewUserService(userRepo *repository.UserRepository, media *MediaService) *UserService {
	return &UserService{userRepo: userRepo, media: media}
}

type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Username  string
	Password  string
	CodePhone string
	Phone     string
}

type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Username  *string
	Password  *string
	CodePhone *string
	Phone     *string
}

// SignUp registers a new account. imageName and imageData are the optional
// profile picture; the account is created even if the upload fails, with the
// upload error returned as secondary so the handler can report it alongside
// the created user.
func (s *UserService) SignUp(ctx context.Context, in CreateUserInput, imageName string, imageData []byte) (*models.User, error, error) {
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Username == "" || in.Password == "" {
		return nil, nil, apperr.BadRequest("first_name, last_name, email, username and password are required")
	}

	if _, err := s.userRepo.GetByEmail(in.Email); err == nil {
		return nil, nil, apperr.Conflict("email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, apperr.Wrap(apperr.KindInternal, "failed to check email", err)
	}
	if _, err := s.userRepo.GetByUsername(in.Username); err == nil {
		return nil, nil, apperr.Conflict("username already taken")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, apperr.Wrap(apperr.KindInternal, "failed to check username", err)
	}

	digest, err := password.Hash(in.Password)
	if err != nil {
		return nil, nil, err
	}

	var secondary error
	imageURL := ""
	if len(imageData) > 0 {
		url, upErr := s.media.UploadImage(ctx, userImageKeyPrefix, imageName, imageData)
		if upErr != nil {
			secondary = upErr
		} else {
			imageURL = url
		}
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: digest,
		CodePhone:    in.CodePhone,
		Phone:        in.Phone,
		ImageURL:     imageURL,
		Role:         models.RoleNormal,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, nil, apperr.Wrap(apperr.KindInternal, "failed to create user", err)
	}
	return user, secondary, nil
}

func (s *UserService) List(size, page int) (*models.Paginated[*models.User], error) {
	users, count, err := s.userRepo.List(size, page)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list users", err)
	}
	return models.NewPaginated(count, size, page, users), nil
}

func (s *UserService) Get(id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Not found User")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load user", err)
	}
	return user, nil
}

// Update applies a partial profile update. Only the fields present in the
// input reach the database, each mapped to a fixed column name.
func (s *UserService) Update(id string, in UpdateUserInput) (*models.User, error) {
	fields := map[string]interface{}{}
	if in.FirstName != nil {
		fields["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		fields["last_name"] = *in.LastName
	}
	if in.Username != nil {
		if *in.Username == "" {
			return nil, apperr.BadRequest("username cannot be empty")
		}
		if existing, err := s.userRepo.GetByUsername(*in.Username); err == nil && existing.ID != id {
			return nil, apperr.Conflict("username already taken")
		} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to check username", err)
		}
		fields["username"] = *in.Username
	}
	if in.Password != nil {
		digest, err := password.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		fields["password_hash"] = digest
	}
	if in.CodePhone != nil {
		fields["code_phone"] = *in.CodePhone
	}
	if in.Phone != nil {
		fields["phone"] = *in.Phone
	}

	if len(fields) == 0 {
		return nil, apperr.BadRequest("no fields to update")
	}

	affected, err := s.userRepo.Update(id, fields)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to update user", err)
	}
	if affected == 0 {
		return nil, apperr.NotFound("Not found User")
	}
	return s.Get(id)
}

// UpdateProfileImage replaces the profile picture, deleting the previous
// object best-effort once the new one is stored.
func (s *UserService) UpdateProfileImage(ctx context.Context, id, imageName string, imageData []byte) (*models.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	url, err := s.media.UploadImage(ctx, userImageKeyPrefix, imageName, imageData)
	if err != nil {
		return nil, err
	}

	affected, err := s.userRepo.Update(id, map[string]interface{}{"image_url": url})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to update user image", err)
	}
	if affected == 0 {
		return nil, apperr.NotFound("Not found User")
	}

	if user.ImageURL != "" && user.ImageURL != url {
		s.media.DeleteByURL(ctx, user.ImageURL)
	}
	return s.Get(id)
}

func (s *UserService) Delete(id string) error {
	affected, err := s.userRepo.Delete(id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to delete user", err)
	}
	if affected == 0 {
		return apperr.NotFound("Not found User")
	}
	return nil
}
