// services/user_service.go - Accounts, credentials and profiles
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Sarthaklad1034/HackMatrix/models"
	"github.com/Sarthaklad1034/HackMatrix/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const minPasswordLength = 6

type UserService struct {
	db     *gorm.DB
	tokens *TokenIssuer
}

func NewUserService(db *gorm.DB, tokens *TokenIssuer) *UserService {
	return &UserService{db: db, tokens: tokens}
}

type RegisterInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// AuthResult is what register and login hand back to the client.
type AuthResult struct {
	ID    uuid.UUID   `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	Token string      `json:"token"`
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = utils.NormalizeEmail(in.Email)
	if in.Role == "" {
		in.Role = models.RoleParticipant
	}

	var v Validation
	v.Check(in.Name != "", "name", "Please add a name")
	v.Check(utils.MaxLen(in.Name, 50), "name", "Name cannot be more than 50 characters")
	v.Check(utils.IsEmail(in.Email), "email", "Please add a valid email")
	v.Check(len(in.Password) >= minPasswordLength, "password", "Password must be at least 6 characters")
	v.Check(in.Role.Valid(), "role", "Role must be participant, organizer or judge")
	v.Check(in.Role != models.RoleAdmin, "role", "Admin accounts cannot be self-registered")
	if err := v.Err(); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflict("User already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hash),
		Role:     in.Role,
	}
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict("User already exists")
		}
		return nil, err
	}

	return s.authResult(user)
}

func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", utils.NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrUnauthorized, "Invalid email or password")
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, newError(ErrUnauthorized, "Invalid email or password")
	}
	return s.authResult(&user)
}

func (s *UserService) authResult(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role, Token: token}, nil
}

// Authenticate resolves a bearer token to its (still existing) user.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := s.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, newError(ErrUnauthorized, "Not authorized, user not found")
	}
	return user, err
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("User")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfileInput carries the optional fields of a profile update; nil means unchanged.
type ProfileInput struct {
	Name        *string   `json:"name"`
	Email       *string   `json:"email"`
	Password    *string   `json:"password"`
	Bio         *string   `json:"bio"`
	Skills      *[]string `json:"skills"`
	AvatarURL   *string   `json:"avatarUrl"`
	GithubURL   *string   `json:"github"`
	LinkedinURL *string   `json:"linkedin"`
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, in ProfileInput) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var v Validation
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		v.Check(name != "", "name", "Please add a name")
		v.Check(utils.MaxLen(name, 50), "name", "Name cannot be more than 50 characters")
		user.Name = name
	}
	if in.Email != nil {
		email := utils.NormalizeEmail(*in.Email)
		v.Check(utils.IsEmail(email), "email", "Please add a valid email")
		user.Email = email
	}
	if in.Password != nil {
		v.Check(len(*in.Password) >= minPasswordLength, "password", "Password must be at least 6 characters")
	}
	if in.Bio != nil {
		v.Check(utils.MaxLen(*in.Bio, 500), "bio", "Bio cannot be more than 500 characters")
		user.Profile.Bio = *in.Bio
	}
	if in.Skills != nil {
		user.Profile.Skills = datatypes.JSONSlice[string](utils.CleanList(*in.Skills))
	}
	if in.AvatarURL != nil {
		v.Check(*in.AvatarURL == "" || utils.IsHTTPURL(*in.AvatarURL), "avatarUrl", "Please provide a valid URL")
		user.Profile.AvatarURL = *in.AvatarURL
	}
	if in.GithubURL != nil {
		v.Check(*in.GithubURL == "" || utils.IsHTTPURL(*in.GithubURL), "github", "Please provide a valid URL")
		user.Profile.GithubURL = *in.GithubURL
	}
	if in.LinkedinURL != nil {
		v.Check(*in.LinkedinURL == "" || utils.IsHTTPURL(*in.LinkedinURL), "linkedin", "Please provide a valid URL")
		user.Profile.LinkedinURL = *in.LinkedinURL
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = string(hash)
	}

	db := s.db.WithContext(ctx)
	if in.Email != nil {
		var count int64
		if err := db.Model(&models.User{}).Where("email = ? AND id <> ?", user.Email, user.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, conflict("Email is already in use")
		}
	}

	if err := db.Save(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict("Email is already in use")
		}
		return nil, err
	}
	return user, nil
}

// Search finds users by name or email substring, for picking invitees.
func (s *UserService) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []models.User{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	pattern := "%" + query + "%"

	var users []models.User
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// ================== ADMINISTRATION ==================

// UserPage is one page of the admin user listing.
type UserPage struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// List pages through all accounts, optionally filtered by name or email.
func (s *UserService) List(ctx context.Context, search string, page, limit int) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := s.db.WithContext(ctx).Model(&models.User{})
	if search = strings.ToLower(strings.TrimSpace(search)); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	out := &UserPage{Users: []models.User{}, Page: page, Limit: limit}
	if err := query.Count(&out.Total).Error; err != nil {
		return nil, err
	}
	err := query.Order("created_at ASC").Offset((page - 1) * limit).Limit(limit).Find(&out.Users).Error
	return out, err
}

// SetRole changes an account's role. Admins cannot demote themselves.
func (s *UserService) SetRole(ctx context.Context, actor *models.User, id uuid.UUID, role models.Role) (*models.User, error) {
	if !actor.HasRole(models.RoleAdmin) {
		return nil, forbidden("Only admins can change roles")
	}
	if !role.Valid() {
		return nil, invalid("role", "Role must be participant, organizer, judge or admin")
	}
	if actor.ID == id && role != models.RoleAdmin {
		return nil, conflict("Admins cannot remove their own admin role")
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("role", role).Error; err != nil {
		return nil, err
	}
	user.Role = role
	return user, nil
}
