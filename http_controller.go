package notes

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controllers.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// AuthController handles registration, login, and profile over JSON.
type AuthController struct {
	Logger       Logger
	Repo         RepositoryManager
	Auther       Authenticator
	TokenService TokenService
	Registrar    *RegisterUserHandler
	ContextKey   string
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:     defLogger{},
		ContextKey: "user",
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.TokenService == nil {
		panic("Missing TokenService in auth controller...")
	}

	if c.Registrar == nil {
		c.Registrar = NewRegisterUserHandler(c.Repo)
	}

	if c.ErrorHandler == nil {
		c.ErrorHandler = APIErrorHandler(c.Logger)
	}

	return c
}

func WithAuthRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithAuthAuther(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithAuthTokenService(ts TokenService) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.TokenService = ts
		return c
	}
}

func WithAuthLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

func WithAuthContextKey(key string) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.ContextKey = key
		return c
	}
}

// RegisterRoutes mounts the auth endpoints. The profile route runs behind
// the provided access gate; register and login stay public.
func (a *AuthController) RegisterRoutes(group RouteRegistrar, protected router.MiddlewareFunc) {
	group.Post("/register", a.RegistrationCreate)
	group.Post("/login", a.LoginPost)
	group.Get("/profile", a.ProfileShow, protected)
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Email
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "unable to parse request body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, validationError(err))
	}

	token, err := a.Auther.Login(ctx.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		// Unknown email and wrong password already collapse into the same
		// error inside the provider. Store failures keep their internal
		// category so they answer 500, not 401.
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"token": token,
	})
}

// RegistrationCreatePayload is the registration payload
type RegistrationCreatePayload struct {
	Name     string `form:"name" json:"name"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

// RegistrationCreate registers the user and auto-issues the first claim
// token, matching the login response shape.
func (a *AuthController) RegistrationCreate(ctx router.Context) error {
	payload := new(RegistrationCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "unable to parse request body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, validationError(err))
	}

	user, err := a.Registrar.Execute(ctx.Context(), RegisterUserMessage{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	token, _, err := MintToken(a.TokenService, NewIdentityFromUser(user), TokenOptions{})
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, map[string]string{
		"token": token,
	})
}

// ProfileShow returns the authenticated user's record. The gate does not
// re-check existence, so a valid token for a removed user lands here and
// comes back as a 404.
func (a *AuthController) ProfileShow(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, a.ContextKey)
	if !ok {
		return a.ErrorHandler(ctx, ErrUnableToFindSession)
	}

	user, err := a.Repo.Users().GetByIdentifier(ctx.Context(), claims.UserID())
	if err != nil {
		if errors.IsNotFound(err) {
			return a.ErrorHandler(ctx, ErrIdentityNotFound)
		}
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, user)
}

// validationError flattens an ozzo validation result into a rich error so
// the boundary can answer 400 with field level detail.
func validationError(err error) *errors.Error {
	richErr := errors.New("validation failed", errors.CategoryValidation).
		WithCode(errors.CodeBadRequest)

	if fieldErrs, ok := err.(validation.Errors); ok {
		fields := make(map[string]any, len(fieldErrs))
		for field, ferr := range fieldErrs {
			fields[field] = ferr.Error()
		}
		return richErr.WithMetadata(fields)
	}

	return richErr.WithMetadata(map[string]any{"error": err.Error()})
}
