// Package httpapi exposes the auth subsystem over JSON REST. Routes and the
// {status, message} envelope follow the public API contract of the
// restaurant-discovery backend.
package httpapi

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"

	"github.com/emirkorkmazz/lokanta-api/auth"
	"github.com/emirkorkmazz/lokanta-api/middleware/guardware"
)

// Logger is the logging surface the controller needs.
type Logger = auth.Logger

// AuthController wires the authenticator and repositories to the routes.
type AuthController struct {
	Auther auth.Authenticator
	Repo   auth.RepositoryManager
	Tokens auth.TokenValidator
	Logger Logger
}

// AuthControllerOption mutates controller construction.
type AuthControllerOption func(*AuthController) *AuthController

func WithLogger(l Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = l
		return c
	}
}

// NewAuthController builds the controller; authenticator, repository manager
// and token validator are mandatory collaborators.
func NewAuthController(auther auth.Authenticator, repo auth.RepositoryManager, tokens auth.TokenValidator, opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Auther: auther,
		Repo:   repo,
		Tokens: tokens,
		Logger: nil,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("httpapi: missing Authenticator in auth controller")
	}
	if c.Repo == nil {
		panic("httpapi: missing RepositoryManager in auth controller")
	}
	if c.Tokens == nil {
		panic("httpapi: missing TokenValidator in auth controller")
	}

	return c
}

// RegisterAuthRoutes mounts the auth endpoints on the app.
func RegisterAuthRoutes(app fiber.Router, c *AuthController) {
	guarded := guardware.Protected(c.Tokens, auth.AnyAuthenticated())

	app.Post("/user/register", c.RegisterPost)
	app.Post("/user/login", c.LoginPost)
	app.Post("/user/refresh-token", c.RefreshPost)
	app.Post("/user/logout", guarded, c.LogoutPost)
	app.Get("/user/get-user-details", guarded, c.UserDetailsGet)
	app.Post("/user/change-password", guarded, c.ChangePasswordPost)
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		return fail(c, badRequest("could not parse login payload"), a.Logger)
	}

	if err := payload.Validate(); err != nil {
		return fail(c, badRequest(err.Error()), a.Logger)
	}

	pair, identity, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return fail(c, err, a.Logger)
	}

	user, err := a.Repo.Users().GetByIdentifier(c.UserContext(), identity.ID())
	if err != nil {
		return fail(c, err, a.Logger)
	}

	return respond(c, fiber.Map{
		"user":         user.Summary(),
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (a *AuthController) RegisterPost(c *fiber.Ctx) error {
	payload := new(auth.RegisterUserMessage)

	if err := c.BodyParser(payload); err != nil {
		return fail(c, badRequest("could not parse registration payload"), a.Logger)
	}

	handler := auth.RegisterUserHandler{Repo: a.Repo, Logger: a.Logger}
	user, err := handler.Execute(c.UserContext(), *payload)
	if err != nil {
		return fail(c, err, a.Logger)
	}

	return respond(c, fiber.Map{
		"message": "user registered successfully",
		"user":    user.Summary(),
	})
}

// RefreshRequest payload
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Validate will run validation rules
func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

func (a *AuthController) RefreshPost(c *fiber.Ctx) error {
	payload := new(RefreshRequest)

	if err := c.BodyParser(payload); err != nil {
		return fail(c, badRequest("could not parse refresh payload"), a.Logger)
	}

	if err := payload.Validate(); err != nil {
		return fail(c, badRequest(err.Error()), a.Logger)
	}

	access, err := a.Auther.Refresh(c.UserContext(), payload.RefreshToken)
	if err != nil {
		return fail(c, err, a.Logger)
	}

	// the refresh token is echoed back, not rotated
	return respond(c, fiber.Map{
		"accessToken":  access,
		"refreshToken": payload.RefreshToken,
	})
}

func (a *AuthController) LogoutPost(c *fiber.Ctx) error {
	token, ok := guardware.TokenFromHeader(c, auth.DefaultAuthScheme)
	if !ok {
		return fail(c, auth.ErrMissingToken, a.Logger)
	}

	if err := a.Auther.Logout(c.UserContext(), token); err != nil {
		return fail(c, err, a.Logger)
	}

	return respondMessage(c, "logged out successfully")
}

func (a *AuthController) UserDetailsGet(c *fiber.Ctx) error {
	claims, ok := guardware.ClaimsFromCtx(c, "")
	if !ok {
		return fail(c, auth.ErrMissingToken, a.Logger)
	}

	user, err := a.Repo.Users().GetByIdentifier(c.UserContext(), claims.UserID())
	if err != nil {
		if repository.IsRecordNotFound(err) || errors.IsNotFound(err) {
			return fail(c, auth.ErrIdentityNotFound, a.Logger)
		}
		return fail(c, err, a.Logger)
	}

	return respond(c, fiber.Map{"user": user.Summary()})
}

func (a *AuthController) ChangePasswordPost(c *fiber.Ctx) error {
	claims, ok := guardware.ClaimsFromCtx(c, "")
	if !ok {
		return fail(c, auth.ErrMissingToken, a.Logger)
	}

	payload := new(auth.ChangePasswordMessage)
	if err := c.BodyParser(payload); err != nil {
		return fail(c, badRequest("could not parse password change payload"), a.Logger)
	}
	payload.UserID = claims.UserID()

	handler := auth.ChangePasswordHandler{Repo: a.Repo, Logger: a.Logger}
	if err := handler.Execute(c.UserContext(), *payload); err != nil {
		return fail(c, err, a.Logger)
	}

	return respondMessage(c, "password changed successfully")
}

func badRequest(message string) error {
	return errors.New(message, errors.CategoryValidation).
		WithCode(errors.CodeBadRequest)
}
