package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
	"github.com/dmitrijs2005/healthkeeper/internal/client/services"
)

// updateFields lists the keys accepted by the update command.
var updateFields = []string{"nickName", "avatarUrl", "gender", "age", "height", "weight", "phone", "city", "province"}

func (a *App) isLoggedIn(ctx context.Context) bool {
	return a.facade.IsLoggedIn(ctx)
}

func (a *App) getStatus() string {
	ctx := context.Background()
	if !a.facade.IsLoggedIn(ctx) {
		return "(anonymous)"
	}
	if p, ok := a.facade.UserInfo(ctx); ok && p.NickName != "" {
		return fmt.Sprintf("(%s)", p.NickName)
	}
	return fmt.Sprintf("(%s)", a.facade.UserID(ctx))
}

// Login runs the social login flow, prompting for consent.
func (a *App) Login(ctx context.Context) error {
	id, err := a.resolver.Login(ctx)
	if err != nil {
		printlnFn(describe("Login", err))
		return err
	}
	if id.IsNewUser {
		printlnFn("Welcome to healthkeeper, " + id.Profile.NickName + "!")
	} else {
		printlnFn("Welcome back, " + id.Profile.NickName + "!")
	}
	return nil
}

func (a *App) GuestLogin(ctx context.Context) error {
	id, err := a.resolver.GuestLogin(ctx)
	if err != nil {
		printlnFn(describe("Guest login", err))
		return err
	}
	printlnFn("Logged in as " + id.Profile.NickName)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.resolver.Logout(ctx)
	printlnFn("Logged out")
	return nil
}

// AutoLogin verifies the cached session, if any, and reports the outcome.
func (a *App) AutoLogin(ctx context.Context) error {
	decision, err := a.resolver.AutoLogin(ctx)
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		return nil
	case err != nil:
		printlnFn(describe("Auto login", err))
		return err
	}

	switch decision {
	case models.TrustConfirmed:
		printlnFn("Session restored")
	case models.TrustRejected:
		printlnFn("Your session has expired, please log in again")
	default:
		if a.facade.IsLoggedIn(ctx) {
			printlnFn("Server unavailable, continuing with the saved session")
		} else {
			printlnFn("Server unavailable and the saved session is too old, please log in again")
		}
	}
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	state := a.resolver.State()
	id := a.facade.UserID(ctx)
	if cur := a.resolver.Current(); cur != nil && cur.IsGuest {
		printlnFn(fmt.Sprintf("%s (guest), state %s", id, state))
		return nil
	}
	printlnFn(fmt.Sprintf("%s, state %s", id, state))
	return nil
}

func (a *App) Profile(ctx context.Context) error {
	p, ok := a.facade.UserInfo(ctx)
	if !ok {
		printlnFn(describe("Profile", services.ErrNotAuthenticated))
		return services.ErrNotAuthenticated
	}
	printlnFn(formatProfile(*p))
	return nil
}

func (a *App) Update(ctx context.Context, args []string) error {
	upd, err := parseUpdate(args)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	id, err := a.resolver.UpdateProfile(ctx, upd)
	if err != nil {
		printlnFn(describe("Update", err))
		return err
	}
	printlnFn(formatProfile(id.Profile))
	return nil
}

func (a *App) Sync(ctx context.Context) error {
	if err := a.resolver.SyncProfile(ctx); err != nil {
		printlnFn(describe("Sync", err))
		return err
	}
	printlnFn("Profile synchronized")
	return nil
}

func describe(op string, err error) string {
	var rejected *services.RejectedError
	switch {
	case errors.Is(err, services.ErrConsentDenied):
		return op + " cancelled"
	case errors.Is(err, services.ErrNotAuthenticated):
		return "Not logged in"
	case errors.Is(err, services.ErrNetworkUnavailable):
		return op + " failed: server unavailable, try again later"
	case errors.Is(err, services.ErrSuperseded):
		return op + " discarded: you logged out meanwhile"
	case errors.As(err, &rejected) && rejected.Message != "":
		return op + " failed: " + rejected.Message
	default:
		return op + " failed: " + err.Error()
	}
}

func formatProfile(p models.Profile) string {
	var b strings.Builder
	row := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&b, "%-9s %s\n", k, v)
		}
	}
	row("nickname", p.NickName)
	row("gender", p.Gender)
	row("age", strconv.Itoa(p.Age))
	row("height", strconv.Itoa(p.Height)+" cm")
	row("weight", strconv.Itoa(p.Weight)+" kg")
	if p.BMI > 0 {
		row("bmi", strconv.FormatFloat(p.BMI, 'f', 1, 64))
	}
	row("phone", p.Phone)
	row("city", p.City)
	row("province", p.Province)
	row("avatar", p.AvatarURL)
	return strings.TrimRight(b.String(), "\n")
}

// parseUpdate turns field=value arguments into a ProfileUpdate.
func parseUpdate(args []string) (models.ProfileUpdate, error) {
	var u models.ProfileUpdate
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok {
			return u, fmt.Errorf("expected field=value, got %q", arg)
		}
		switch k {
		case "nickName":
			u.NickName = &v
		case "avatarUrl":
			u.AvatarURL = &v
		case "gender":
			u.Gender = &v
		case "phone":
			u.Phone = &v
		case "city":
			u.City = &v
		case "province":
			u.Province = &v
		case "age", "height", "weight":
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return u, fmt.Errorf("%s must be a positive number, got %q", k, v)
			}
			switch k {
			case "age":
				u.Age = &n
			case "height":
				u.Height = &n
			default:
				u.Weight = &n
			}
		default:
			return u, fmt.Errorf("unknown field %q", k)
		}
	}
	return u, nil
}
