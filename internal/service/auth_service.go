package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crm-backend/internal/middleware"
	"crm-backend/internal/model"
	"crm-backend/internal/otp"
	"crm-backend/internal/repository"
	"crm-backend/internal/sms"
	"crm-backend/pkg/phone"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for Request validation
type SendOTPRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
}

type RegisterRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Password    string `json:"password" binding:"required"`
	OTP         string `json:"otp" binding:"required,len=6"`
}

type LoginRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

type ResetPasswordRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	OTP         string `json:"otp" binding:"required,len=6"`
	NewPassword string `json:"new_password" binding:"required"`
}

// OTPResponse carries the outcome of an OTP send. The code itself is only
// populated when the service runs with the explicit debug flag.
type OTPResponse struct {
	Message string `json:"message"`
	OTP     string `json:"otp,omitempty"`
}

// AdminResponse is the public projection of an Admin. It is constructed at the
// store boundary and never includes the password hash.
type AdminResponse struct {
	ID          uuid.UUID `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	Name        string    `json:"name"`
	IsVerified  bool      `json:"is_verified"`
	CreatedAt   string    `json:"created_at"`
	UpdatedAt   string    `json:"updated_at"`
}

type AuthResponse struct {
	Token string        `json:"token"`
	Admin AdminResponse `json:"admin"`
}

// AuthService defines the business logic for admin registration and sessions
type AuthService interface {
	SendRegistrationOTP(ctx context.Context, phoneNumber string) (*OTPResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	SendPasswordResetOTP(ctx context.Context, phoneNumber string) (*OTPResponse, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	GetProfile(ctx context.Context, adminID string) (*AdminResponse, error)
}

type authService struct {
	admins repository.AdminRepository
	otps   *otp.Cache
	sender sms.Sender
	debug  bool
}

// NewAuthService returns a new instance of AuthService. When debug is true
// OTP codes are echoed in API responses; never enable it in production.
func NewAuthService(admins repository.AdminRepository, otps *otp.Cache, sender sms.Sender, debug bool) AuthService {
	return &authService{admins: admins, otps: otps, sender: sender, debug: debug}
}

func mapAdmin(admin *model.Admin) *AdminResponse {
	return &AdminResponse{
		ID:          admin.ID,
		PhoneNumber: admin.PhoneNumber,
		Name:        admin.Name,
		IsVerified:  admin.IsVerified,
		CreatedAt:   admin.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   admin.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *authService) normalizePhone(raw string) (string, error) {
	normalized := phone.Normalize(raw)
	if !phone.IsValid(normalized) {
		return "", ErrInvalidPhoneNumber
	}
	return normalized, nil
}

func (s *authService) issueAndSend(ctx context.Context, phoneNumber string) (*OTPResponse, error) {
	code, err := s.otps.Issue(phoneNumber)
	if err != nil {
		return nil, err
	}

	result := s.sender.Send(ctx, phoneNumber, fmt.Sprintf("Your OTP code is: %s. Valid for 5 minutes.", code))

	resp := &OTPResponse{Message: "OTP sent to your phone number"}
	if !result.Delivered {
		resp.Message = "OTP generated, check the server log (SMS unavailable: " + result.Reason + ")"
	}
	if s.debug {
		resp.OTP = code
	}
	return resp, nil
}

func (s *authService) SendRegistrationOTP(ctx context.Context, phoneNumber string) (*OTPResponse, error) {
	normalized, err := s.normalizePhone(phoneNumber)
	if err != nil {
		return nil, err
	}

	if _, err := s.admins.GetByPhone(ctx, normalized); err == nil {
		return nil, ErrPhoneAlreadyRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return s.issueAndSend(ctx, normalized)
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	normalized, err := s.normalizePhone(req.PhoneNumber)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if len(name) < 2 {
		return nil, ErrNameTooShort
	}
	if len(req.Password) < 6 {
		return nil, ErrPasswordTooShort
	}

	// One-shot: a successful verify consumes the code
	if err := s.otps.Verify(normalized, req.OTP); err != nil {
		return nil, err
	}

	if _, err := s.admins.GetByPhone(ctx, normalized); err == nil {
		return nil, ErrPhoneAlreadyRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.Admin{
		PhoneNumber: normalized,
		Name:        name,
		Password:    string(hashedPassword),
		IsVerified:  true,
	}

	if err := s.admins.Create(ctx, admin); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrPhoneAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	token, err := middleware.GenerateToken(admin.ID, middleware.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResponse{Token: token, Admin: *mapAdmin(admin)}, nil
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	normalized, err := s.normalizePhone(req.PhoneNumber)
	if err != nil {
		return nil, err
	}

	admin, err := s.admins.GetByPhone(ctx, normalized)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := middleware.GenerateToken(admin.ID, middleware.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResponse{Token: token, Admin: *mapAdmin(admin)}, nil
}

func (s *authService) SendPasswordResetOTP(ctx context.Context, phoneNumber string) (*OTPResponse, error) {
	normalized, err := s.normalizePhone(phoneNumber)
	if err != nil {
		return nil, err
	}

	if _, err := s.admins.GetByPhone(ctx, normalized); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return s.issueAndSend(ctx, normalized)
}

func (s *authService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	normalized, err := s.normalizePhone(req.PhoneNumber)
	if err != nil {
		return err
	}
	if len(req.NewPassword) < 6 {
		return ErrPasswordTooShort
	}

	if err := s.otps.Verify(normalized, req.OTP); err != nil {
		return err
	}

	admin, err := s.admins.GetByPhone(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAdminNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.admins.UpdatePassword(ctx, admin.ID, string(hashedPassword))
}

func (s *authService) GetProfile(ctx context.Context, adminID string) (*AdminResponse, error) {
	id, err := uuid.Parse(adminID)
	if err != nil {
		return nil, ErrAdminNotFound
	}

	admin, err := s.admins.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return mapAdmin(admin), nil
}
