package client

import (
	"fmt"

	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
	"github.com/dmitrijs2005/healthkeeper/internal/common"
	"github.com/dmitrijs2005/healthkeeper/internal/wire"
)

func consentToMap(c models.ConsentProfile) map[string]any {
	return map[string]any{
		wire.FieldNickName:   c.NickName,
		wire.FieldAvatarURL:  c.AvatarURL,
		wire.FieldCity:       c.City,
		wire.FieldProvince:   c.Province,
		wire.FieldCountry:    c.Country,
		wire.FieldLanguage:   c.Language,
		wire.FieldGenderCode: c.GenderCode,
	}
}

func profileToMap(p models.Profile) map[string]any {
	return map[string]any{
		wire.FieldNickName:  p.NickName,
		wire.FieldAvatarURL: p.AvatarURL,
		wire.FieldGender:    p.Gender,
		wire.FieldAge:       p.Age,
		wire.FieldHeight:    p.Height,
		wire.FieldWeight:    p.Weight,
		wire.FieldPhone:     p.Phone,
		wire.FieldCity:      p.City,
		wire.FieldProvince:  p.Province,
	}
}

// profileFromMap reads display fields. A numeric gender is treated as the
// social gender code.
func profileFromMap(m map[string]any) models.Profile {
	p := models.Profile{
		NickName:  wire.String(m, wire.FieldNickName),
		AvatarURL: wire.String(m, wire.FieldAvatarURL),
		Gender:    wire.String(m, wire.FieldGender),
		Age:       wire.Int(m, wire.FieldAge),
		Height:    wire.Int(m, wire.FieldHeight),
		Weight:    wire.Int(m, wire.FieldWeight),
		Phone:     wire.String(m, wire.FieldPhone),
		City:      wire.String(m, wire.FieldCity),
		Province:  wire.String(m, wire.FieldProvince),
		Country:   wire.String(m, wire.FieldCountry),
		Language:  wire.String(m, wire.FieldLanguage),
	}
	if _, isNumber := m[wire.FieldGender].(float64); isNumber {
		p.Gender = models.GenderFromCode(wire.Int(m, wire.FieldGender))
	}
	return p
}

func resolveRequestFields(req ResolveRequest) map[string]any {
	fields := map[string]any{wire.FieldLoginType: req.LoginType}
	if req.Profile != nil {
		fields[wire.FieldProfile] = consentToMap(*req.Profile)
	}
	return fields
}

// decodeResolve turns a reply into a Result. Auto logins carry no data;
// wechat and guest successes must name both an openid and a token.
func decodeResolve(loginType string, r wire.Reply) Result {
	if !r.Success {
		return Failed(r.Message, nil)
	}
	if loginType == common.LoginTypeAuto {
		return Succeeded(nil)
	}

	openid := wire.String(r.Data, wire.FieldOpenID)
	token := wire.String(r.Data, wire.FieldToken)
	if openid == "" || token == "" {
		return Failed(r.Message, fmt.Errorf("%w: %s login reply without openid or token", ErrMalformedResponse, loginType))
	}

	return Succeeded(&IdentityData{
		OpenID:    openid,
		Token:     token,
		UserInfo:  profileFromMap(wire.Map(r.Data, wire.FieldUserInfo)),
		IsNewUser: wire.Bool(r.Data, wire.FieldIsNewUser),
	})
}

func decodeProfile(r wire.Reply) Result {
	if !r.Success {
		return Failed(r.Message, nil)
	}
	if r.Data == nil {
		return Failed(r.Message, fmt.Errorf("%w: profile reply without data", ErrMalformedResponse))
	}
	return SucceededProfile(profileFromMap(r.Data))
}
