package user

import (
	"context"
	"fmt"
	"net/mail"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type (
	Repository interface {
		// CreateUser must fail with ErrEmailExists when the email is taken.
		// The check and the insert are atomic.
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
	}

	// TokenIssuer mints the bearer token handed out at registration and login.
	TokenIssuer interface {
		IssueToken(usr User) (string, error)
	}

	Service interface {
		Register(ctx context.Context, nu NewUser) (AuthResult, error)
		Login(ctx context.Context, creds Credentials) (AuthResult, error)
		Create(ctx context.Context, nu NewUser) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
	}

	service struct {
		repo       Repository
		tokens     TokenIssuer
		mailSvc    core.EmailService
		appName    string
		bcryptCost int

		dummyOnce sync.Once
		dummyHash []byte
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, tokens TokenIssuer, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:       repo,
		tokens:     tokens,
		mailSvc:    mailSvc,
		appName:    conf.AppName,
		bcryptCost: conf.Security.BcryptCost,
	}
}

// Register creates a User and issues their first token.
func (svc *service) Register(ctx context.Context, nu NewUser) (AuthResult, error) {
	usr, err := svc.Create(ctx, nu)
	if err != nil {
		return AuthResult{}, err
	}
	token, err := svc.tokens.IssueToken(usr)
	if err != nil {
		return AuthResult{}, errors.Wrap(err, "issuing token")
	}
	svc.sendWelcomeMail(usr)
	return AuthResult{Token: token, User: usr}, nil
}

// Login exchanges valid credentials for a fresh token.
// An unknown email and a wrong password both yield ErrInvalidCredentials.
func (svc *service) Login(ctx context.Context, creds Credentials) (AuthResult, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(creds.Email))
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return AuthResult{}, errors.Wrap(err, "finding user by email")
		}
		// keep the response time close to the one of a wrong password
		VerifyPassword(creds.Password, svc.getDummyHash())
		return AuthResult{}, ErrInvalidCredentials
	}
	if !usr.CheckPassword(creds.Password) {
		return AuthResult{}, ErrInvalidCredentials
	}
	token, err := svc.tokens.IssueToken(usr)
	if err != nil {
		return AuthResult{}, errors.Wrap(err, "issuing token")
	}
	return AuthResult{Token: token, User: usr}, nil
}

// Create persists a new User without issuing a token.
func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	role, err := ParseRole(core.CleanString(nu.Role))
	if err != nil {
		return User{}, core.NewValidationError(err, core.FieldError{Field: "role", Error: roleText})
	}
	usr := User{
		ID:        uuid.NewString(),
		Email:     core.CleanString(nu.Email),
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err = usr.SetPassword(nu.Password, svc.bcryptCost); err != nil {
		if errors.Cause(err) == bcrypt.ErrPasswordTooLong {
			return User{}, core.NewValidationError(err, core.FieldError{Field: "password", Error: pwdLenText})
		}
		return User{}, err
	}

	usr, err = svc.repo.CreateUser(ctx, usr)
	if err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return User{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
		}
		return User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) getDummyHash() []byte {
	svc.dummyOnce.Do(func() {
		svc.dummyHash, _ = HashPassword(uuid.NewString(), svc.bcryptCost)
	})
	return svc.dummyHash
}

func (svc *service) sendWelcomeMail(usr User) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Address: usr.Email}},
		Subject: "Welcome to " + svc.appName,
		TextContent: fmt.Sprintf(
			"Hello,\n\nYour %s account (%s) is ready. You can now sign in with %s.\n",
			svc.appName, roleLabel(usr.Role), usr.Email,
		),
	})
}

func roleLabel(r Role) string {
	switch r {
	case RoleTeacher:
		return "teacher"
	case RoleStudent:
		return "student"
	default:
		return "user"
	}
}
