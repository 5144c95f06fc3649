package service

import (
	"context"
	"errors"

	"github.com/aws/smithy-go"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"golang.org/x/crypto/bcrypt"

	"healtogether/cmd/internal/domain/entity"
	cognitoclient "healtogether/cmd/internal/integration/aws/cognito"
	"healtogether/cmd/internal/utils"
	"healtogether/cmd/internal/utils/apierror"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindAll(ctx context.Context, role entity.Role) ([]*entity.User, error)
	Save(ctx context.Context, user *entity.User) error
}

type TokenIssuer interface {
	Issue(data *utils.TokenData) (string, error)
}

type DaySlotsRequest struct {
	Day   string   `json:"day" validate:"required,weekday"`
	Slots []string `json:"slots" validate:"max=48,nodupes,dive,hhmm"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=64,nospaces,hasupper,haslower,hasdigit,hasspecial"`
	Role     string `json:"role" validate:"required,oneof=patient doctor caretaker medical-assistant"`

	Specialization string   `json:"specialization" validate:"max=120"`
	Experience     string   `json:"experience" validate:"max=64"`
	Languages      []string `json:"languages" validate:"max=20,dive,max=40"`
	Bio            string   `json:"bio" validate:"max=2000"`
	Gender         string   `json:"gender" validate:"max=32"`
	Phone          string   `json:"phone" validate:"max=32"`

	Address   string   `json:"address" validate:"max=255"`
	City      string   `json:"city" validate:"max=120"`
	State     string   `json:"state" validate:"max=120"`
	ZipCode   string   `json:"zipCode" validate:"max=20"`
	Country   string   `json:"country" validate:"max=120"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`

	AvailableSlots     []DaySlotsRequest `json:"availableSlots" validate:"max=7,dive"`
	TransportationType string            `json:"transportationType" validate:"max=64"`
	AvailableDays      []string          `json:"availableDays" validate:"max=7,nodupes,dive,weekday"`

	MedicalID             string `json:"medicalId" validate:"max=64"`
	InternshipCertificate string `json:"internshipCertificate" validate:"max=255"`
}

// UpdateUserRequest is a partial update: nil fields are left untouched.
// Email, password and role cannot be changed here.
type UpdateUserRequest struct {
	Name           *string  `json:"name" validate:"omitempty,min=2,max=120"`
	Specialization *string  `json:"specialization" validate:"omitempty,max=120"`
	Experience     *string  `json:"experience" validate:"omitempty,max=64"`
	Languages      []string `json:"languages" validate:"omitempty,max=20,dive,max=40"`
	Bio            *string  `json:"bio" validate:"omitempty,max=2000"`
	Gender         *string  `json:"gender" validate:"omitempty,max=32"`
	Phone          *string  `json:"phone" validate:"omitempty,max=32"`

	Address   *string  `json:"address" validate:"omitempty,max=255"`
	City      *string  `json:"city" validate:"omitempty,max=120"`
	State     *string  `json:"state" validate:"omitempty,max=120"`
	ZipCode   *string  `json:"zipCode" validate:"omitempty,max=20"`
	Country   *string  `json:"country" validate:"omitempty,max=120"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`

	AvailableSlots     []DaySlotsRequest `json:"availableSlots" validate:"omitempty,max=7,dive"`
	TransportationType *string           `json:"transportationType" validate:"omitempty,max=64"`
	AvailableDays      []string          `json:"availableDays" validate:"omitempty,max=7,nodupes,dive,weekday"`
	Available          *bool             `json:"available"`
}

type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=64"`
}

type ConfirmSignupRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,min=1,max=6"`
}

type UserResponse struct {
	ID                    string            `json:"id"`
	Name                  string            `json:"name"`
	Email                 string            `json:"email"`
	Role                  entity.Role       `json:"role"`
	Verified              bool              `json:"verified"`
	EmailVerified         bool              `json:"emailVerified"`
	Available             *bool             `json:"available,omitempty"`
	Specialization        string            `json:"specialization,omitempty"`
	Experience            string            `json:"experience,omitempty"`
	Languages             []string          `json:"languages"`
	Bio                   string            `json:"bio,omitempty"`
	Gender                string            `json:"gender,omitempty"`
	Phone                 string            `json:"phone,omitempty"`
	Address               string            `json:"address,omitempty"`
	City                  string            `json:"city,omitempty"`
	State                 string            `json:"state,omitempty"`
	ZipCode               string            `json:"zipCode,omitempty"`
	Country               string            `json:"country,omitempty"`
	Latitude              *float64          `json:"latitude,omitempty"`
	Longitude             *float64          `json:"longitude,omitempty"`
	AvailableSlots        []entity.DaySlots `json:"availableSlots,omitempty"`
	TransportationType    string            `json:"transportationType,omitempty"`
	AvailableDays         []string          `json:"availableDays,omitempty"`
	MedicalID             string            `json:"medicalId,omitempty"`
	InternshipCertificate string            `json:"internshipCertificate,omitempty"`
	CreatedAt             string            `json:"createdAt"`
	UpdatedAt             string            `json:"updatedAt"`
}

// AuthResponse carries a session token, except after a Cognito signup that
// still awaits email confirmation.
type AuthResponse struct {
	User  *UserResponse `json:"user"`
	Token string        `json:"token,omitempty"`
}

type DefaultUserService struct {
	UserRepo UserRepository
	Validate *validator.Validate
	Tokens   TokenIssuer
	// Cognito is nil when passwords are checked locally.
	Cognito  cognitoclient.CognitoInterface
	HashCost int
}

func NewUserService(userRepo UserRepository, validate *validator.Validate, tokens TokenIssuer, cogClient cognitoclient.CognitoInterface) *DefaultUserService {
	return &DefaultUserService{UserRepo: userRepo, Validate: validate, Tokens: tokens, Cognito: cogClient, HashCost: 12}
}

func (u *DefaultUserService) GetUsers(ctx context.Context, role string) ([]*UserResponse, apierror.ErrorResponse) {
	if role != "" && !entity.Role(role).IsValid() {
		return nil, apierror.NewInvalidParamTypeError("role", "patient|doctor|caretaker|medical-assistant")
	}

	users, err := u.UserRepo.FindAll(ctx, entity.Role(role))
	if err != nil {
		log.Errorf("failed to fetch users (role %q): %v", role, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*UserResponse, len(users))
	for i, user := range users {
		resp[i] = toUserResponse(user)
	}
	return resp, nil
}

func (u *DefaultUserService) GetUser(ctx context.Context, rawId string, caller Caller) (*UserResponse, apierror.ErrorResponse) {
	user, apierr := u.fetchUser(ctx, rawId, caller)
	if apierr != nil {
		return nil, apierr
	}

	if user == nil {
		return nil, apierror.NotFoundError
	}
	return toUserResponse(user), nil
}

// Register creates the account. With Cognito the pool owns the password and
// sends a confirmation code; otherwise the password is hashed here and a
// session token is returned right away.
func (u *DefaultUserService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	role := entity.Role(req.Role)
	template := toTemplate(req.AvailableSlots)
	if _, dup := template.DuplicateDay(); dup {
		return nil, apierror.DuplicateDayError
	}

	found, err := u.UserRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		log.Errorf("failed to check if user already exists: %v", err)
		return nil, apierror.InternalServerError
	}

	if found != nil {
		return nil, apierror.UserAlreadyExistsError
	}

	now := utils.NowUTC()
	user := &entity.User{
		ID:                 newID(),
		Name:               req.Name,
		Email:              req.Email,
		Role:               role,
		Verified:           true,
		Specialization:     req.Specialization,
		Experience:         req.Experience,
		Languages:          req.Languages,
		Bio:                req.Bio,
		Gender:             req.Gender,
		Phone:              req.Phone,
		Address:            req.Address,
		City:               req.City,
		State:              req.State,
		ZipCode:            req.ZipCode,
		Country:            req.Country,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		TransportationType: req.TransportationType,
		AvailableDays:      req.AvailableDays,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if role.IsProvider() {
		user.SetTemplate(template)
	}
	if role == entity.RoleCaretaker || role == entity.RoleMedicalAssistant {
		available := true
		user.Available = &available
	}
	if role == entity.RoleMedicalAssistant {
		user.MedicalID = req.MedicalID
		user.InternshipCertificate = req.InternshipCertificate
	}

	revert := func() {}
	if u.Cognito != nil {
		cogUser := &cognitoclient.User{Email: req.Email, Password: req.Password, Name: req.Name}
		sub, apierr, undo := handleUserSignup(ctx, u.Cognito, cogUser)
		if apierr != nil {
			return nil, apierr
		}
		user.SubUUID = sub
		revert = undo
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), u.HashCost)
		if err != nil {
			log.Errorf("failed to hash password: %v", err)
			return nil, apierror.InternalServerError
		}
		user.PasswordHash = string(hash)
		user.EmailVerified = true
	}

	err = u.UserRepo.Save(ctx, user)
	if err != nil {
		revert()
		if errors.Is(err, entity.ErrDuplicate) {
			return nil, apierror.UserAlreadyExistsError
		}
		log.Errorf("failed to create user: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := &AuthResponse{User: toUserResponse(user)}
	if u.Cognito != nil {
		return resp, nil
	}

	token, apierr := u.issueToken(user)
	if apierr != nil {
		return nil, apierr
	}
	resp.Token = token
	return resp, nil
}

func (u *DefaultUserService) Login(ctx context.Context, req *UserLoginRequest) (*AuthResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	user, err := u.UserRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		log.Errorf("failed to fetch user from database: %v", err)
		return nil, apierror.InternalServerError
	}

	if u.Cognito != nil {
		if user == nil {
			return nil, apierror.IDPUserNotFoundError
		}
		credentials := &cognitoclient.UserLogin{Email: req.Email, Password: req.Password}
		if _, apierr := handleUserSignin(ctx, u.Cognito, credentials); apierr != nil {
			return nil, apierr
		}
	} else {
		if user == nil || user.PasswordHash == "" {
			return nil, apierror.CredentialsMismatchError
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			return nil, apierror.CredentialsMismatchError
		}
	}

	token, apierr := u.issueToken(user)
	if apierr != nil {
		return nil, apierr
	}
	return &AuthResponse{User: toUserResponse(user), Token: token}, nil
}

func (u *DefaultUserService) ConfirmSignup(ctx context.Context, req *ConfirmSignupRequest) apierror.ErrorResponse {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	user, err := u.UserRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		log.Errorf("failed to fetch user from database: %v", err)
		return apierror.InternalServerError
	}

	if user == nil {
		return apierror.IDPUserNotFoundError
	}

	// Local accounts are confirmed on registration.
	if user.EmailVerified || u.Cognito == nil {
		return apierror.UserAlreadyConfirmedError
	}

	confirms := &cognitoclient.UserConfirmation{
		Email: req.Email,
		Code:  req.Code,
	}

	apierr := handleSignupConfirmation(ctx, u.Cognito, confirms)
	if apierr != nil {
		return apierr
	}

	user.EmailVerified = true
	user.UpdatedAt = utils.NowUTC()
	err = u.UserRepo.Save(ctx, user)
	if err != nil {
		log.Errorf("failed to update user (%s) verified status: %v", user.ID, err)
	}
	return nil
}

// UpdateUser applies a profile update. Users may only update themselves.
func (u *DefaultUserService) UpdateUser(ctx context.Context, rawId string, caller Caller, req *UpdateUserRequest) (*UserResponse, apierror.ErrorResponse) {
	if rawId != "@me" && rawId != caller.UserID {
		return nil, apierror.ForbiddenError
	}

	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	user, apierr := u.fetchByID(ctx, caller.UserID)
	if apierr != nil {
		return nil, apierr
	}

	if user == nil {
		return nil, apierror.NotFoundError
	}

	if req.AvailableSlots != nil {
		template := toTemplate(req.AvailableSlots)
		if _, dup := template.DuplicateDay(); dup {
			return nil, apierror.DuplicateDayError
		}
		if user.Role.IsProvider() {
			user.SetTemplate(template)
		}
	}

	applyProfileUpdate(user, req)
	user.UpdatedAt = utils.NowUTC()

	if err := u.UserRepo.Save(ctx, user); err != nil {
		log.Errorf("failed to update user (%s): %v", user.ID, err)
		return nil, apierror.InternalServerError
	}
	return toUserResponse(user), nil
}

func (u *DefaultUserService) issueToken(user *entity.User) (string, apierror.ErrorResponse) {
	sub := user.SubUUID
	if sub == "" {
		sub = user.ID
	}
	token, err := u.Tokens.Issue(&utils.TokenData{Sub: sub, UserID: user.ID, Email: user.Email, Role: string(user.Role)})
	if err != nil {
		log.Errorf("failed to issue token for user (%s): %v", user.ID, err)
		return "", apierror.InternalServerError
	}
	return token, nil
}

func (u *DefaultUserService) fetchUser(ctx context.Context, rawId string, caller Caller) (*entity.User, apierror.ErrorResponse) {
	if rawId == "@me" {
		return u.fetchByID(ctx, caller.UserID)
	}
	return u.fetchByID(ctx, rawId)
}

func (u *DefaultUserService) fetchByID(ctx context.Context, id string) (*entity.User, apierror.ErrorResponse) {
	user, err := u.UserRepo.FindByID(ctx, id)
	if err != nil {
		log.Errorf("failed to find user (%s) by id: %v", id, err)
		return nil, apierror.InternalServerError
	}
	return user, nil
}

func applyProfileUpdate(user *entity.User, req *UpdateUserRequest) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}

	setString(&user.Name, req.Name)
	setString(&user.Specialization, req.Specialization)
	setString(&user.Experience, req.Experience)
	setString(&user.Bio, req.Bio)
	setString(&user.Gender, req.Gender)
	setString(&user.Phone, req.Phone)
	setString(&user.Address, req.Address)
	setString(&user.City, req.City)
	setString(&user.State, req.State)
	setString(&user.ZipCode, req.ZipCode)
	setString(&user.Country, req.Country)
	setString(&user.TransportationType, req.TransportationType)

	if req.Languages != nil {
		user.Languages = req.Languages
	}
	if req.AvailableDays != nil {
		user.AvailableDays = req.AvailableDays
	}
	if req.Latitude != nil {
		user.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		user.Longitude = req.Longitude
	}
	if req.Available != nil {
		user.Available = req.Available
	}
}

func toTemplate(days []DaySlotsRequest) entity.WeeklyTemplate {
	template := make(entity.WeeklyTemplate, 0, len(days))
	for _, d := range days {
		slots := d.Slots
		if slots == nil {
			slots = []string{}
		}
		template = append(template, entity.DaySlots{Day: d.Day, Slots: slots})
	}
	return template
}

func handleUserSignup(ctx context.Context, cogClient cognitoclient.CognitoInterface, req *cognitoclient.User) (string, apierror.ErrorResponse, func()) {
	revert := func() {
		if err := cogClient.AdminDeleteUser(context.WithoutCancel(ctx), req.Email); err != nil {
			log.Errorf("failed to revert signup of user (%s): %v", req.Email, err)
		}
	}

	sub, err := cogClient.SignUp(ctx, req)
	if err == nil {
		return sub, nil, revert
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "InvalidPasswordException":
			return "", apierror.IDPInvalidPasswordError, revert
		case "UsernameExistsException":
			return "", apierror.IDPExistingEmailError, revert
		default:
			log.Errorf("signup failed for user (%s): %s - %s", req.Email, apiErr.ErrorCode(), apiErr.ErrorMessage())
			return "", apierror.InternalServerError, revert
		}
	}

	log.Errorf("failed to signup user (%s): %v", req.Email, err)
	return "", apierror.InternalServerError, revert
}

func handleUserSignin(ctx context.Context, cogClient cognitoclient.CognitoInterface, req *cognitoclient.UserLogin) (*cognitoclient.AuthCreate, apierror.ErrorResponse) {
	auth, err := cogClient.SignIn(ctx, req)
	if err == nil {
		return auth, nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "UserNotFoundException":
			return nil, apierror.IDPUserNotFoundError
		case "UserNotConfirmedException":
			return nil, apierror.IDPUserNotConfirmedError
		case "NotAuthorizedException":
			return nil, apierror.IDPCredentialsMismatchError
		default:
			log.Errorf("signin failed for user (%s): %s - %s", req.Email, apiErr.ErrorCode(), apiErr.ErrorMessage())
			return nil, apierror.InternalServerError
		}
	}

	log.Errorf("failed to signin user (%s): %v", req.Email, err)
	return nil, apierror.InternalServerError
}

func handleSignupConfirmation(ctx context.Context, cogClient cognitoclient.CognitoInterface, req *cognitoclient.UserConfirmation) apierror.ErrorResponse {
	err := cogClient.ConfirmAccount(ctx, req)
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "CodeMismatchException":
			return apierror.IDPConfirmCodeMismatchError
		case "ExpiredCodeException":
			return apierror.IDPConfirmCodeExpiredError
		case "UserNotFoundException":
			return apierror.IDPUserNotFoundError
		default:
			log.Errorf("confirmation failed for user (%s): %s - %s", req.Email, apiErr.ErrorCode(), apiErr.ErrorMessage())
			return apierror.InternalServerError
		}
	}

	log.Errorf("failed to confirm user (%s): %v", req.Email, err)
	return apierror.InternalServerError
}

func toUserResponse(user *entity.User) *UserResponse {
	languages := []string(user.Languages)
	if languages == nil {
		languages = []string{}
	}
	return &UserResponse{
		ID:                    user.ID,
		Name:                  user.Name,
		Email:                 user.Email,
		Role:                  user.Role,
		Verified:              user.Verified,
		EmailVerified:         user.EmailVerified,
		Available:             user.Available,
		Specialization:        user.Specialization,
		Experience:            user.Experience,
		Languages:             languages,
		Bio:                   user.Bio,
		Gender:                user.Gender,
		Phone:                 user.Phone,
		Address:               user.Address,
		City:                  user.City,
		State:                 user.State,
		ZipCode:               user.ZipCode,
		Country:               user.Country,
		Latitude:              user.Latitude,
		Longitude:             user.Longitude,
		AvailableSlots:        user.AvailableSlots,
		TransportationType:    user.TransportationType,
		AvailableDays:         user.AvailableDays,
		MedicalID:             user.MedicalID,
		InternshipCertificate: user.InternshipCertificate,
		CreatedAt:             utils.FormatEpoch(user.CreatedAt),
		UpdatedAt:             utils.FormatEpoch(user.UpdatedAt),
	}
}
