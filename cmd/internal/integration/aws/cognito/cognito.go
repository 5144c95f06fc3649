package cognito

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

type CognitoInterface interface {
	SignUp(ctx context.Context, user *User) (string, error)
	SignIn(ctx context.Context, login *UserLogin) (*AuthCreate, error)
	ConfirmAccount(ctx context.Context, confirmation *UserConfirmation) error
	AdminDeleteUser(ctx context.Context, email string) error
}

type User struct {
	Email    string
	Password string
	Name     string
}

type UserLogin struct {
	Email    string
	Password string
}

type UserConfirmation struct {
	Email string
	Code  string
}

type AuthCreate struct {
	AccessToken string
	IDToken     string
}

type Options struct {
	Region     string
	ClientID   string
	UserPoolID string
}

type Client struct {
	api        *cognitoidentityprovider.Client
	clientID   string
	userPoolID string
}

// InitCognitoClient loads AWS credentials from the default chain.
func InitCognitoClient(ctx context.Context, opts Options) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Client{
		api:        cognitoidentityprovider.NewFromConfig(cfg),
		clientID:   opts.ClientID,
		userPoolID: opts.UserPoolID,
	}, nil
}

// SignUp registers the user and returns the pool's subject uuid.
func (c *Client) SignUp(ctx context.Context, user *User) (string, error) {
	out, err := c.api.SignUp(ctx, &cognitoidentityprovider.SignUpInput{
		ClientId: aws.String(c.clientID),
		Username: aws.String(user.Email),
		Password: aws.String(user.Password),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(user.Email)},
			{Name: aws.String("name"), Value: aws.String(user.Name)},
		},
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.UserSub), nil
}

func (c *Client) SignIn(ctx context.Context, login *UserLogin) (*AuthCreate, error) {
	out, err := c.api.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(c.clientID),
		AuthParameters: map[string]string{
			"USERNAME": login.Email,
			"PASSWORD": login.Password,
		},
	})
	if err != nil {
		return nil, err
	}
	if out.AuthenticationResult == nil {
		return nil, errors.New("cognito returned a challenge instead of tokens")
	}
	return &AuthCreate{
		AccessToken: aws.ToString(out.AuthenticationResult.AccessToken),
		IDToken:     aws.ToString(out.AuthenticationResult.IdToken),
	}, nil
}

func (c *Client) ConfirmAccount(ctx context.Context, confirmation *UserConfirmation) error {
	_, err := c.api.ConfirmSignUp(ctx, &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(c.clientID),
		Username:         aws.String(confirmation.Email),
		ConfirmationCode: aws.String(confirmation.Code),
	})
	return err
}

func (c *Client) AdminDeleteUser(ctx context.Context, email string) error {
	_, err := c.api.AdminDeleteUser(ctx, &cognitoidentityprovider.AdminDeleteUserInput{
		UserPoolId: aws.String(c.userPoolID),
		Username:   aws.String(email),
	})
	return err
}
