// Package wire defines the payload layout exchanged with the identity
// gateway. Requests and replies travel as structpb.Struct documents:
//
//	request: {operation, loginType?, profile?, userInfo?}
//	reply:   {success, data?, message?}
//
// The package is shared by the client transport and the development gateway.
package wire

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Operations.
const (
	OpResolveIdentity = "resolveIdentity"
	OpSaveUserInfo    = "saveUserInfo"
	OpGetUserInfo     = "getUserInfo"
)

// Top-level request and reply fields.
const (
	FieldOperation = "operation"
	FieldLoginType = "loginType"
	FieldProfile   = "profile"
	FieldUserInfo  = "userInfo"

	FieldSuccess = "success"
	FieldData    = "data"
	FieldMessage = "message"
)

// Identity data fields.
const (
	FieldOpenID    = "openid"
	FieldToken     = "token"
	FieldIsNewUser = "isNewUser"
)

// Profile fields.
const (
	FieldNickName   = "nickName"
	FieldAvatarURL  = "avatarUrl"
	FieldGender     = "gender"
	FieldGenderCode = "genderCode"
	FieldAge        = "age"
	FieldHeight     = "height"
	FieldWeight     = "weight"
	FieldPhone      = "phone"
	FieldCity       = "city"
	FieldProvince   = "province"
	FieldCountry    = "country"
	FieldLanguage   = "language"
)

// NewRequest builds a request document for op with the extra fields merged in.
func NewRequest(op string, fields map[string]any) (*structpb.Struct, error) {
	m := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		m[k] = v
	}
	m[FieldOperation] = op
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", op, err)
	}
	return s, nil
}

// Reply is a decoded reply document.
type Reply struct {
	Success bool
	Data    map[string]any
	Message string
}

// ParseReply decodes a reply document. A missing success field reads as false.
func ParseReply(s *structpb.Struct) Reply {
	m := s.AsMap()
	r := Reply{}
	r.Success, _ = m[FieldSuccess].(bool)
	r.Message, _ = m[FieldMessage].(string)
	r.Data, _ = m[FieldData].(map[string]any)
	return r
}

// NewReply builds a reply document.
func NewReply(success bool, data map[string]any, message string) (*structpb.Struct, error) {
	m := map[string]any{FieldSuccess: success}
	if data != nil {
		m[FieldData] = data
	}
	if message != "" {
		m[FieldMessage] = message
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("encode reply: %w", err)
	}
	return s, nil
}

// String returns m[key] when it is a string.
func String(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// Int returns m[key] when it is a number. Document numbers decode as float64.
func Int(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

// Bool returns m[key] when it is a bool.
func Bool(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

// Map returns m[key] when it is a nested document.
func Map(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}
