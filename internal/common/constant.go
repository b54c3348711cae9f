// Package common contains constants and sentinel errors shared by the
// healthkeeper client and the development identity gateway.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// session token on outbound requests.
const AccessTokenHeaderName = "access_token"

// IdentityServiceName is the fully qualified gRPC service both sides agree on.
const IdentityServiceName = "healthkeeper.identity.v1.IdentityGateway"

// Full method names of the identity gateway.
const (
	MethodResolveIdentity = "/" + IdentityServiceName + "/ResolveIdentity"
	MethodSaveUserInfo    = "/" + IdentityServiceName + "/SaveUserInfo"
	MethodGetUserInfo     = "/" + IdentityServiceName + "/GetUserInfo"
)

// Login types accepted by ResolveIdentity.
const (
	LoginTypeWechat = "wechat"
	LoginTypeGuest  = "guest"
	LoginTypeAuto   = "auto"
)

// GuestIDPrefix prefixes locally generated anonymous ids and
// backend-issued guest openids.
const GuestIDPrefix = "guest_"
