package client

import (
	"context"

	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
)

// Gateway is the narrow contract with the remote identity backend.
// Implementations never panic on transport failures; they report them as
// ResultUnreachable.
type Gateway interface {
	// ResolveIdentity performs a wechat, guest or auto login. For auto the
	// request carries the cached token and a successful result has no Data.
	ResolveIdentity(ctx context.Context, req ResolveRequest) Result
	// SaveUserInfo stores profile fields for the token owner and returns the
	// profile as confirmed by the backend.
	SaveUserInfo(ctx context.Context, token string, profile models.Profile) Result
	// GetUserInfo reads the token owner's profile.
	GetUserInfo(ctx context.Context, token string) Result
	Close() error
}

// ResolveRequest is the variant payload of ResolveIdentity.
type ResolveRequest struct {
	LoginType string
	// Profile is sent for wechat and guest logins.
	Profile *models.ConsentProfile
	// Token is sent for auto logins.
	Token string
}

// IdentityData is the payload of a successful wechat or guest resolution.
type IdentityData struct {
	OpenID    string
	Token     string
	UserInfo  models.Profile
	IsNewUser bool
}

// ResultKind tags a Result. The zero value is ResultUnreachable so an
// uninitialised Result never reads as an answer.
type ResultKind int

const (
	ResultUnreachable ResultKind = iota
	ResultSuccess
	ResultFailure
)

func (k ResultKind) String() string {
	switch k {
	case ResultSuccess:
		return "success"
	case ResultFailure:
		return "failure"
	default:
		return "unreachable"
	}
}

// Result is the outcome of one gateway call.
type Result struct {
	Kind ResultKind

	// Data is set on successful wechat/guest resolutions.
	Data *IdentityData
	// Profile is set on successful profile reads and writes.
	Profile *models.Profile

	// Message is the backend's message, verbatim, on failure.
	Message string
	// Err is the cause for failures and unreachable results.
	Err error
}

func Succeeded(data *IdentityData) Result {
	return Result{Kind: ResultSuccess, Data: data}
}

func SucceededProfile(p models.Profile) Result {
	return Result{Kind: ResultSuccess, Profile: &p}
}

func Failed(message string, err error) Result {
	return Result{Kind: ResultFailure, Message: message, Err: err}
}

func Unreachable(err error) Result {
	return Result{Kind: ResultUnreachable, Err: err}
}
