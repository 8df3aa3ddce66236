package auth

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"
)

// RegisterUserMessage carries a registration request.
type RegisterUserMessage struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone_number"`
	Role     string `json:"role"`
	Password string `json:"password"`

	// DefaultRegion is the ISO country used to parse national phone
	// numbers. Defaults to TR when empty.
	DefaultRegion string `json:"-"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// Validate will run validation rules
func (e RegisterUserMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Email, validation.Required, is.Email),
		validation.Field(&e.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&e.Name, validation.Length(0, 200)),
		validation.Field(&e.Role, validation.By(validateOptionalRole)),
		validation.Field(&e.Phone, validation.By(e.validatePhone)),
	)
}

func validateOptionalRole(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, ok := ParseRole(s); !ok {
		return goerrors.New("unknown role", goerrors.CategoryValidation).
			WithTextCode(TextCodeInvalidRole)
	}
	return nil
}

func (e RegisterUserMessage) validatePhone(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	region := e.DefaultRegion
	if region == "" {
		region = "TR"
	}

	num, err := phonenumbers.Parse(s, region)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid phone number")
	}
	if !phonenumbers.IsValidNumber(num) {
		return goerrors.New("invalid phone number", goerrors.CategoryValidation)
	}
	return nil
}

// RegisterUserHandler creates the identity record: validate, hash, insert,
// all inside one transaction.
type RegisterUserHandler struct {
	Repo   RepositoryManager
	Logger Logger
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) (*User, error) {
	if err := event.Validate(); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload")
	}

	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.Repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Email = strings.ToLower(strings.TrimSpace(event.Email))
		user.Phone = event.Phone
		user.Name = event.Name
		user.Username = getUsername(event.Username, event.Email)
		if role, ok := ParseRole(event.Role); ok {
			user.Role = role
		}

		if user, err = h.Repo.Users().CreateTx(ctx, tx, user); err != nil {
			// unique email/username violations land here
			return goerrors.Wrap(err, goerrors.CategoryConflict, ErrLoginKeyTaken.Message).
				WithTextCode(TextCodeLoginKeyTaken).
				WithCode(goerrors.CodeConflict)
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	return user, nil
}

func getUsername(username, email string) string {
	username = strings.TrimSpace(username)
	if username != "" {
		return username
	}
	return usernameFromEmail(strings.ToLower(strings.TrimSpace(email)))
}
