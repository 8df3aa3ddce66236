package guardware_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emirkorkmazz/lokanta-api/auth"
	"github.com/emirkorkmazz/lokanta-api/middleware/guardware"
)

type fixture struct {
	svc      *auth.TokenServiceImpl
	denylist *auth.MemoryDenylist
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	denylist := auth.NewMemoryDenylist(0)
	t.Cleanup(denylist.Close)

	cfg := &auth.BaseConfig{
		AccessSigningKey:  "access-signing-key-for-tests",
		RefreshSigningKey: "refresh-signing-key-for-tests",
		AccessTokenTTL:    time.Hour,
		RefreshTokenTTL:   7 * 24 * time.Hour,
		Issuer:            "lokanta-api",
	}

	return &fixture{
		svc:      auth.NewTokenService(cfg, nil, auth.WithDenylist(denylist)),
		denylist: denylist,
	}
}

func (f *fixture) tokenFor(t *testing.T, id string, role auth.UserRole) string {
	t.Helper()

	token, err := f.svc.IssueAccessToken(identity{id: id, role: string(role)})
	require.NoError(t, err)
	return token
}

type identity struct {
	id   string
	role string
}

func (i identity) ID() string       { return i.id }
func (i identity) Username() string { return "user-" + i.id }
func (i identity) Email() string    { return i.id + "@example.com" }
func (i identity) Role() string     { return i.role }
func (i identity) Verified() bool   { return true }

func okHandler(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusOK)
}

func doRequest(t *testing.T, app *fiber.App, method, target, token string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	res, err := app.Test(req)
	require.NoError(t, err)
	return res
}

func TestGuardRequiresToken(t *testing.T) {
	f := newFixture(t)

	app := fiber.New()
	app.Get("/protected", guardware.Protected(f.svc, auth.AnyAuthenticated()), okHandler)

	t.Run("missing token is unauthorized", func(t *testing.T) {
		res := doRequest(t, app, fiber.MethodGet, "/protected", "")
		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)

		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)

		var envelope struct {
			Status  bool   `json:"status"`
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(body, &envelope))
		assert.False(t, envelope.Status)
		assert.Equal(t, "authorization failed: token not found", envelope.Message)
	})

	t.Run("garbage token is forbidden", func(t *testing.T) {
		res := doRequest(t, app, fiber.MethodGet, "/protected", "not-a-token")
		assert.Equal(t, fiber.StatusForbidden, res.StatusCode)
	})

	t.Run("valid token passes", func(t *testing.T) {
		res := doRequest(t, app, fiber.MethodGet, "/protected", f.tokenFor(t, "u1", auth.RoleCustomer))
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
	})

	t.Run("revoked token is forbidden", func(t *testing.T) {
		token := f.tokenFor(t, "u1", auth.RoleCustomer)
		claims, err := f.svc.Validate(auth.AccessToken, token)
		require.NoError(t, err)
		f.denylist.Revoke(claims.TokenID(), claims.Expires())

		res := doRequest(t, app, fiber.MethodGet, "/protected", token)
		assert.Equal(t, fiber.StatusForbidden, res.StatusCode)
	})
}

func TestGuardRejectsExpiredAndForgedTokens(t *testing.T) {
	current := time.Now()
	cfg := &auth.BaseConfig{
		AccessSigningKey:  "access-signing-key-for-tests",
		RefreshSigningKey: "refresh-signing-key-for-tests",
		AccessTokenTTL:    time.Hour,
		RefreshTokenTTL:   7 * 24 * time.Hour,
	}
	svc := auth.NewTokenService(cfg, nil, auth.WithClock(func() time.Time {
		return current
	}))

	app := fiber.New()
	app.Get("/protected", guardware.Protected(svc, auth.AnyAuthenticated()), okHandler)

	t.Run("expired token is forbidden", func(t *testing.T) {
		token, err := svc.IssueAccessToken(identity{id: "u1", role: string(auth.RoleCustomer)})
		require.NoError(t, err)

		current = current.Add(2 * time.Hour)
		defer func() { current = time.Now() }()

		res := doRequest(t, app, fiber.MethodGet, "/protected", token)
		assert.Equal(t, fiber.StatusForbidden, res.StatusCode)
	})

	t.Run("token signed with another key is forbidden", func(t *testing.T) {
		otherCfg := *cfg
		otherCfg.AccessSigningKey = "attacker-controlled-key-material"
		other := auth.NewTokenService(&otherCfg, nil)

		token, err := other.IssueAccessToken(identity{id: "u1", role: string(auth.RoleCustomer)})
		require.NoError(t, err)

		res := doRequest(t, app, fiber.MethodGet, "/protected", token)
		assert.Equal(t, fiber.StatusForbidden, res.StatusCode)
	})
}

func TestGuardRolePolicy(t *testing.T) {
	f := newFixture(t)

	app := fiber.New()
	app.Post("/restaurants/approve",
		guardware.Protected(f.svc, auth.RoleIn(auth.RoleAdmin)),
		okHandler)

	t.Run("admin passes", func(t *testing.T) {
		res := doRequest(t, app, fiber.MethodPost, "/restaurants/approve", f.tokenFor(t, "a1", auth.RoleAdmin))
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
	})

	t.Run("customer is forbidden", func(t *testing.T) {
		res := doRequest(t, app, fiber.MethodPost, "/restaurants/approve", f.tokenFor(t, "c1", auth.RoleCustomer))
		assert.Equal(t, fiber.StatusForbidden, res.StatusCode)
	})

	t.Run("business owner is forbidden", func(t *testing.T) {
		res := doRequest(t, app, fiber.MethodPost, "/restaurants/approve", f.tokenFor(t, "b1", auth.RoleBusinessOwner))
		assert.Equal(t, fiber.StatusForbidden, res.StatusCode)
	})
}

func TestGuardOwnerPolicy(t *testing.T) {
	f := newFixture(t)

	owners := map[string]string{
		"r1": "owner-1",
	}

	app := fiber.New()
	app.Delete("/restaurants/:id", guardware.New(guardware.Config{
		TokenValidator: f.svc,
		Policy: auth.OwnerOf(func(ctx context.Context, claims auth.AuthClaims) (string, error) {
			return owners["r1"], nil
		}),
	}), okHandler)

	t.Run("owner passes", func(t *testing.T) {
		res := doRequest(t, app, fiber.MethodDelete, "/restaurants/r1", f.tokenFor(t, "owner-1", auth.RoleBusinessOwner))
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
	})

	t.Run("someone else is forbidden", func(t *testing.T) {
		res := doRequest(t, app, fiber.MethodDelete, "/restaurants/r1", f.tokenFor(t, "owner-2", auth.RoleBusinessOwner))
		assert.Equal(t, fiber.StatusForbidden, res.StatusCode)
	})

	t.Run("admin overrides ownership", func(t *testing.T) {
		res := doRequest(t, app, fiber.MethodDelete, "/restaurants/r1", f.tokenFor(t, "a1", auth.RoleAdmin))
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
	})
}

func TestGuardOptionalAuth(t *testing.T) {
	f := newFixture(t)

	app := fiber.New()
	app.Get("/feed", guardware.New(guardware.Config{
		TokenValidator: f.svc,
		Policy:         auth.Public(),
	}), func(c *fiber.Ctx) error {
		if claims, ok := guardware.ClaimsFromCtx(c, ""); ok {
			return c.JSON(fiber.Map{"viewer": claims.UserID()})
		}
		return c.JSON(fiber.Map{"viewer": "anonymous"})
	})

	t.Run("anonymous request passes", func(t *testing.T) {
		res := doRequest(t, app, fiber.MethodGet, "/feed", "")
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
	})

	t.Run("valid token attaches claims", func(t *testing.T) {
		res := doRequest(t, app, fiber.MethodGet, "/feed", f.tokenFor(t, "u1", auth.RoleCustomer))
		assert.Equal(t, fiber.StatusOK, res.StatusCode)

		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "u1")
	})

	t.Run("unusable token degrades to anonymous", func(t *testing.T) {
		res := doRequest(t, app, fiber.MethodGet, "/feed", "not-a-token")
		assert.Equal(t, fiber.StatusOK, res.StatusCode)

		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "anonymous")
	})
}

func TestGuardFilterSkips(t *testing.T) {
	f := newFixture(t)

	app := fiber.New()
	app.Get("/health", guardware.New(guardware.Config{
		TokenValidator: f.svc,
		Filter: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}), okHandler)

	res := doRequest(t, app, fiber.MethodGet, "/health", "")
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}

func TestGuardSchemeMatching(t *testing.T) {
	f := newFixture(t)

	app := fiber.New()
	app.Get("/protected", guardware.Protected(f.svc, auth.AnyAuthenticated()), okHandler)

	token := f.tokenFor(t, "u1", auth.RoleCustomer)

	t.Run("scheme comparison is case insensitive", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
		req.Header.Set(fiber.HeaderAuthorization, "bearer "+token)

		res, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
	})

	t.Run("wrong scheme is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Basic "+token)

		res, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	})
}

func TestTokenFromHeader(t *testing.T) {
	app := fiber.New()
	app.Get("/echo", func(c *fiber.Ctx) error {
		token, ok := guardware.TokenFromHeader(c, "Bearer")
		return c.JSON(fiber.Map{"token": token, "ok": ok})
	})

	extract := func(t *testing.T, header string) (string, bool) {
		t.Helper()

		req := httptest.NewRequest(fiber.MethodGet, "/echo", nil)
		if header != "" {
			req.Header.Set(fiber.HeaderAuthorization, header)
		}

		res, err := app.Test(req)
		require.NoError(t, err)

		var body struct {
			Token string `json:"token"`
			OK    bool   `json:"ok"`
		}
		require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
		return body.Token, body.OK
	}

	t.Run("bearer header yields the token", func(t *testing.T) {
		token, ok := extract(t, "Bearer abc.def.ghi")
		assert.True(t, ok)
		assert.Equal(t, "abc.def.ghi", token)
	})

	t.Run("scheme match is case insensitive", func(t *testing.T) {
		token, ok := extract(t, "bearer abc.def.ghi")
		assert.True(t, ok)
		assert.Equal(t, "abc.def.ghi", token)
	})

	t.Run("other schemes yield nothing", func(t *testing.T) {
		token, ok := extract(t, "Basic abc.def.ghi")
		assert.False(t, ok)
		assert.Empty(t, token)
	})

	t.Run("missing header yields nothing", func(t *testing.T) {
		_, ok := extract(t, "")
		assert.False(t, ok)
	})
}

func TestGuardRequiresValidator(t *testing.T) {
	assert.Panics(t, func() {
		guardware.New(guardware.Config{})
	})
}
