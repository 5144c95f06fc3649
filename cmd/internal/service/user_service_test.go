package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"healtogether/cmd/internal/domain/entity"
	cognitoclient "healtogether/cmd/internal/integration/aws/cognito"
	"healtogether/cmd/internal/utils/apierror"
)

type fakeCognito struct {
	signUpErr  error
	signInErr  error
	confirmErr error
	deleted    []string
	confirmed  []string
}

var _ cognitoclient.CognitoInterface = (*fakeCognito)(nil)

func (f *fakeCognito) SignUp(_ context.Context, user *cognitoclient.User) (string, error) {
	if f.signUpErr != nil {
		return "", f.signUpErr
	}
	return "sub-" + user.Email, nil
}

func (f *fakeCognito) SignIn(_ context.Context, _ *cognitoclient.UserLogin) (*cognitoclient.AuthCreate, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &cognitoclient.AuthCreate{AccessToken: "access", IDToken: "id"}, nil
}

func (f *fakeCognito) ConfirmAccount(_ context.Context, c *cognitoclient.UserConfirmation) error {
	if f.confirmErr != nil {
		return f.confirmErr
	}
	f.confirmed = append(f.confirmed, c.Email)
	return nil
}

func (f *fakeCognito) AdminDeleteUser(_ context.Context, email string) error {
	f.deleted = append(f.deleted, email)
	return nil
}

func newLocalUserService(users ...*entity.User) (*DefaultUserService, *fakeUserRepo) {
	repo := newFakeUserRepo(users...)
	svc := NewUserService(repo, testValidate, fakeTokens{}, nil)
	svc.HashCost = bcrypt.MinCost
	return svc, repo
}

func registerReq(email, role string) *RegisterRequest {
	return &RegisterRequest{Name: "Jane Roe", Email: email, Password: "S3cret-pass", Role: role}
}

func TestRegister_LocalPatient(t *testing.T) {
	svc, repo := newLocalUserService()
	ctx := context.Background()

	req := registerReq("  jane@example.com ", "patient")
	resp, apierr := svc.Register(ctx, req)
	require.Nil(t, apierr)
	assert.Equal(t, "jane@example.com", resp.User.Email)
	assert.Equal(t, entity.RolePatient, resp.User.Role)
	assert.True(t, resp.User.EmailVerified)
	assert.Equal(t, "token-for-"+resp.User.ID, resp.Token)
	assert.Empty(t, resp.User.AvailableSlots)

	stored, _ := repo.FindByID(ctx, resp.User.ID)
	require.NotNil(t, stored)
	assert.NotEqual(t, "S3cret-pass", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("S3cret-pass")))
}

func TestRegister_DoctorKeepsTemplate(t *testing.T) {
	svc, _ := newLocalUserService()

	req := registerReq("doc@example.com", "doctor")
	req.AvailableSlots = []DaySlotsRequest{{Day: "monday", Slots: []string{"09:00", "10:00"}}}
	resp, apierr := svc.Register(context.Background(), req)
	require.Nil(t, apierr)
	assert.Equal(t, []entity.DaySlots{{Day: "monday", Slots: []string{"09:00", "10:00"}}}, resp.User.AvailableSlots)
}

func TestRegister_Rejections(t *testing.T) {
	svc, _ := newLocalUserService(newPatient("existing"))
	ctx := context.Background()

	_, apierr := svc.Register(ctx, registerReq("existing@example.com", "patient"))
	assert.Equal(t, apierror.UserAlreadyExistsError, apierr)

	_, apierr = svc.Register(ctx, registerReq("new@example.com", "admin"))
	require.NotNil(t, apierr)
	assert.Equal(t, "oneof", apierr.(*apierror.SimpleError).Details["role"])

	req := registerReq("new@example.com", "doctor")
	req.AvailableSlots = []DaySlotsRequest{
		{Day: "monday", Slots: []string{"09:00"}},
		{Day: "monday", Slots: []string{"10:00"}},
	}
	_, apierr = svc.Register(ctx, req)
	assert.Equal(t, apierror.DuplicateDayError, apierr)

	req = registerReq("new@example.com", "doctor")
	req.AvailableSlots = []DaySlotsRequest{{Day: "funday", Slots: []string{"09:00"}}}
	_, apierr = svc.Register(ctx, req)
	require.NotNil(t, apierr)
	assert.Equal(t, "weekday", apierr.(*apierror.SimpleError).Details["availableSlots[0].day"])
}

func TestRegister_PasswordPolicy(t *testing.T) {
	svc, repo := newLocalUserService()
	ctx := context.Background()

	cases := map[string]string{
		"S3cret pass!": "nospaces",
		"s3cret-pass":  "hasupper",
		"S3CRET-PASS":  "haslower",
		"Secret-pass":  "hasdigit",
		"S3cretpass":   "hasspecial",
		"S3c-p":        "min",
	}
	for password, tag := range cases {
		req := registerReq("jane@example.com", "patient")
		req.Password = password
		_, apierr := svc.Register(ctx, req)
		require.NotNil(t, apierr, password)
		assert.Equal(t, tag, apierr.(*apierror.SimpleError).Details["password"], password)
	}

	existing, _ := repo.FindByEmail(ctx, "jane@example.com")
	assert.Nil(t, existing)
}

func TestLogin_Local(t *testing.T) {
	svc, _ := newLocalUserService()
	ctx := context.Background()

	registered, apierr := svc.Register(ctx, registerReq("jane@example.com", "patient"))
	require.Nil(t, apierr)

	resp, apierr := svc.Login(ctx, &UserLoginRequest{Email: "jane@example.com", Password: "S3cret-pass"})
	require.Nil(t, apierr)
	assert.Equal(t, registered.User.ID, resp.User.ID)
	assert.NotEmpty(t, resp.Token)

	_, apierr = svc.Login(ctx, &UserLoginRequest{Email: "jane@example.com", Password: "wrong-pass"})
	assert.Equal(t, apierror.CredentialsMismatchError, apierr)

	// Unknown emails answer the same way as wrong passwords.
	_, apierr = svc.Login(ctx, &UserLoginRequest{Email: "nobody@example.com", Password: "S3cret-pass"})
	assert.Equal(t, apierror.CredentialsMismatchError, apierr)
}

func TestConfirmSignup_Local(t *testing.T) {
	svc, _ := newLocalUserService()
	ctx := context.Background()

	_, apierr := svc.Register(ctx, registerReq("jane@example.com", "patient"))
	require.Nil(t, apierr)

	apierr = svc.ConfirmSignup(ctx, &ConfirmSignupRequest{Email: "jane@example.com", Code: "123456"})
	assert.Equal(t, apierror.UserAlreadyConfirmedError, apierr)

	apierr = svc.ConfirmSignup(ctx, &ConfirmSignupRequest{Email: "nobody@example.com", Code: "123456"})
	assert.Equal(t, apierror.IDPUserNotFoundError, apierr)
}

func TestGetUsers(t *testing.T) {
	svc, _ := newLocalUserService(newDoctor("doc", mondayTemplate), newPatient("pat"))
	ctx := context.Background()

	all, apierr := svc.GetUsers(ctx, "")
	require.Nil(t, apierr)
	assert.Len(t, all, 2)

	doctors, apierr := svc.GetUsers(ctx, "doctor")
	require.Nil(t, apierr)
	require.Len(t, doctors, 1)
	assert.Equal(t, "doc", doctors[0].ID)

	_, apierr = svc.GetUsers(ctx, "wizard")
	require.NotNil(t, apierr)
	assert.Equal(t, 400, apierr.Code())
}

func TestGetUser(t *testing.T) {
	svc, _ := newLocalUserService(newPatient("pat"))
	ctx := context.Background()

	me, apierr := svc.GetUser(ctx, "@me", patientCaller("pat"))
	require.Nil(t, apierr)
	assert.Equal(t, "pat", me.ID)
	assert.Equal(t, []string{}, me.Languages)

	_, apierr = svc.GetUser(ctx, "ghost", patientCaller("pat"))
	assert.Equal(t, apierror.NotFoundError, apierr)
}

func TestGetUser_StoreFailure(t *testing.T) {
	svc, repo := newLocalUserService()
	repo.err = errors.New("connection reset")

	_, apierr := svc.GetUser(context.Background(), "pat", patientCaller("pat"))
	assert.Equal(t, apierror.InternalServerError, apierr)
}

func TestUpdateUser(t *testing.T) {
	svc, _ := newLocalUserService(newDoctor("doc", mondayTemplate), newPatient("pat"))
	ctx := context.Background()
	doctor := Caller{UserID: "doc", Role: entity.RoleDoctor}

	bio := "Cardiologist"
	_, apierr := svc.UpdateUser(ctx, "doc", patientCaller("pat"), &UpdateUserRequest{Bio: &bio})
	assert.Equal(t, apierror.ForbiddenError, apierr)

	slots := []DaySlotsRequest{{Day: "friday", Slots: []string{"14:00"}}}
	updated, apierr := svc.UpdateUser(ctx, "@me", doctor, &UpdateUserRequest{Bio: &bio, AvailableSlots: slots})
	require.Nil(t, apierr)
	assert.Equal(t, "Cardiologist", updated.Bio)
	assert.Equal(t, "Dr. doc", updated.Name)
	assert.Equal(t, []entity.DaySlots{{Day: "friday", Slots: []string{"14:00"}}}, updated.AvailableSlots)

	// Patients have no template to replace.
	updated, apierr = svc.UpdateUser(ctx, "pat", patientCaller("pat"), &UpdateUserRequest{AvailableSlots: slots})
	require.Nil(t, apierr)
	assert.Empty(t, updated.AvailableSlots)
}

func TestRegister_Cognito(t *testing.T) {
	cog := &fakeCognito{}
	repo := newFakeUserRepo()
	svc := NewUserService(repo, testValidate, fakeTokens{}, cog)
	ctx := context.Background()

	resp, apierr := svc.Register(ctx, registerReq("jane@example.com", "patient"))
	require.Nil(t, apierr)
	assert.Empty(t, resp.Token)
	assert.False(t, resp.User.EmailVerified)

	stored, _ := repo.FindByEmail(ctx, "jane@example.com")
	require.NotNil(t, stored)
	assert.Equal(t, "sub-jane@example.com", stored.SubUUID)
	assert.Empty(t, stored.PasswordHash)

	apierr = svc.ConfirmSignup(ctx, &ConfirmSignupRequest{Email: "jane@example.com", Code: "123456"})
	require.Nil(t, apierr)
	assert.Equal(t, []string{"jane@example.com"}, cog.confirmed)

	stored, _ = repo.FindByEmail(ctx, "jane@example.com")
	assert.True(t, stored.EmailVerified)

	apierr = svc.ConfirmSignup(ctx, &ConfirmSignupRequest{Email: "jane@example.com", Code: "123456"})
	assert.Equal(t, apierror.UserAlreadyConfirmedError, apierr)
}

func TestRegister_CognitoErrors(t *testing.T) {
	ctx := context.Background()

	cog := &fakeCognito{signUpErr: &smithy.GenericAPIError{Code: "UsernameExistsException"}}
	svc := NewUserService(newFakeUserRepo(), testValidate, fakeTokens{}, cog)
	_, apierr := svc.Register(ctx, registerReq("jane@example.com", "patient"))
	assert.Equal(t, apierror.IDPExistingEmailError, apierr)

	cog.signUpErr = &smithy.GenericAPIError{Code: "InvalidPasswordException"}
	_, apierr = svc.Register(ctx, registerReq("jane@example.com", "patient"))
	assert.Equal(t, apierror.IDPInvalidPasswordError, apierr)

	cog.signUpErr = errors.New("dial tcp: timeout")
	_, apierr = svc.Register(ctx, registerReq("jane@example.com", "patient"))
	assert.Equal(t, apierror.InternalServerError, apierr)
}

func TestRegister_CognitoRevertsOnStoreFailure(t *testing.T) {
	cog := &fakeCognito{}
	// The email check passes, then the store reports a clash on save.
	repo := &failingSaveRepo{fakeUserRepo: newFakeUserRepo(), err: entity.ErrDuplicate}
	svc := NewUserService(repo, testValidate, fakeTokens{}, cog)

	_, apierr := svc.Register(context.Background(), registerReq("jane@example.com", "patient"))
	assert.Equal(t, apierror.UserAlreadyExistsError, apierr)
	assert.Equal(t, []string{"jane@example.com"}, cog.deleted)
}

type failingSaveRepo struct {
	*fakeUserRepo
	err error
}

func (f *failingSaveRepo) Save(context.Context, *entity.User) error {
	return f.err
}

func TestLogin_Cognito(t *testing.T) {
	ctx := context.Background()
	user := newPatient("pat")
	user.SubUUID = "sub-pat"
	cog := &fakeCognito{}
	svc := NewUserService(newFakeUserRepo(user), testValidate, fakeTokens{}, cog)

	resp, apierr := svc.Login(ctx, &UserLoginRequest{Email: "pat@example.com", Password: "S3cret-pass"})
	require.Nil(t, apierr)
	assert.Equal(t, "token-for-pat", resp.Token)

	_, apierr = svc.Login(ctx, &UserLoginRequest{Email: "nobody@example.com", Password: "S3cret-pass"})
	assert.Equal(t, apierror.IDPUserNotFoundError, apierr)

	cog.signInErr = &smithy.GenericAPIError{Code: "UserNotConfirmedException"}
	_, apierr = svc.Login(ctx, &UserLoginRequest{Email: "pat@example.com", Password: "S3cret-pass"})
	assert.Equal(t, apierror.IDPUserNotConfirmedError, apierr)

	cog.signInErr = &smithy.GenericAPIError{Code: "NotAuthorizedException"}
	_, apierr = svc.Login(ctx, &UserLoginRequest{Email: "pat@example.com", Password: "S3cret-pass"})
	assert.Equal(t, apierror.IDPCredentialsMismatchError, apierr)
}

func TestConfirmSignup_CognitoErrors(t *testing.T) {
	ctx := context.Background()
	cog := &fakeCognito{confirmErr: &smithy.GenericAPIError{Code: "CodeMismatchException"}}
	svc := NewUserService(newFakeUserRepo(newPatient("pat")), testValidate, fakeTokens{}, cog)

	apierr := svc.ConfirmSignup(ctx, &ConfirmSignupRequest{Email: "pat@example.com", Code: "000000"})
	assert.Equal(t, apierror.IDPConfirmCodeMismatchError, apierr)

	cog.confirmErr = &smithy.GenericAPIError{Code: "ExpiredCodeException"}
	apierr = svc.ConfirmSignup(ctx, &ConfirmSignupRequest{Email: "pat@example.com", Code: "000000"})
	assert.Equal(t, apierror.IDPConfirmCodeExpiredError, apierr)
}
