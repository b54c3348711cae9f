package models

import "math"

// Display defaults applied when the backend omits a field.
const (
	DefaultAge           = 28
	DefaultHeight        = 170
	DefaultWeight        = 65
	DefaultGuestNickName = "游客用户"

	GenderMale    = "男"
	GenderFemale  = "女"
	GenderUnknown = "未知"
)

// Profile holds the mutable display and health attributes of an identity.
// Height is in centimetres, Weight in kilograms.
type Profile struct {
	NickName  string  `cbor:"nickName" json:"nickName"`
	AvatarURL string  `cbor:"avatarUrl" json:"avatarUrl"`
	Gender    string  `cbor:"gender" json:"gender"`
	Age       int     `cbor:"age" json:"age"`
	Height    int     `cbor:"height" json:"height"`
	Weight    int     `cbor:"weight" json:"weight"`
	Phone     string  `cbor:"phone" json:"phone"`
	City      string  `cbor:"city" json:"city"`
	Province  string  `cbor:"province" json:"province"`
	Country   string  `cbor:"country" json:"country"`
	Language  string  `cbor:"language" json:"language"`
	BMI       float64 `cbor:"bmi,omitempty" json:"bmi,omitempty"`
}

// ConsentProfile is what the user agreed to share during interactive login.
// GenderCode is the tri-state social code: 1 male, 2 female, anything else unknown.
type ConsentProfile struct {
	NickName   string
	AvatarURL  string
	City       string
	Province   string
	Country    string
	Language   string
	GenderCode int
}

// Profile converts the consent payload to display fields, gender excluded;
// gender is only derived from the code when the backend sends none.
func (c ConsentProfile) Profile() Profile {
	return Profile{
		NickName:  c.NickName,
		AvatarURL: c.AvatarURL,
		City:      c.City,
		Province:  c.Province,
		Country:   c.Country,
		Language:  c.Language,
	}
}

// GenderFromCode maps the tri-state social gender code to a display string.
func GenderFromCode(code int) string {
	switch code {
	case 1:
		return GenderMale
	case 2:
		return GenderFemale
	default:
		return GenderUnknown
	}
}

// Overlay returns base with every non-zero field of over applied on top.
func Overlay(base, over Profile) Profile {
	out := base
	setString(&out.NickName, over.NickName)
	setString(&out.AvatarURL, over.AvatarURL)
	setString(&out.Gender, over.Gender)
	setString(&out.Phone, over.Phone)
	setString(&out.City, over.City)
	setString(&out.Province, over.Province)
	setString(&out.Country, over.Country)
	setString(&out.Language, over.Language)
	if over.Age != 0 {
		out.Age = over.Age
	}
	if over.Height != 0 {
		out.Height = over.Height
	}
	if over.Weight != 0 {
		out.Weight = over.Weight
	}
	return out
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Backfill fills absent display fields with defaults. genderCode is consulted
// only when p carries no gender string. BMI is recomputed.
func Backfill(p Profile, genderCode int) Profile {
	if p.Age == 0 {
		p.Age = DefaultAge
	}
	if p.Height == 0 {
		p.Height = DefaultHeight
	}
	if p.Weight == 0 {
		p.Weight = DefaultWeight
	}
	if p.Gender == "" {
		p.Gender = GenderFromCode(genderCode)
	}
	p.BMI = ComputeBMI(p.Height, p.Weight)
	return p
}

// BackfillGuest applies the guest defaults: a fixed nickname and male gender
// unless the backend provided its own values.
func BackfillGuest(p Profile) Profile {
	if p.NickName == "" {
		p.NickName = DefaultGuestNickName
	}
	if p.Gender == "" {
		p.Gender = GenderMale
	}
	return Backfill(p, 0)
}

// ComputeBMI returns weight/height² rounded to one decimal, or 0 when either
// input is not positive.
func ComputeBMI(heightCM, weightKG int) float64 {
	if heightCM <= 0 || weightKG <= 0 {
		return 0
	}
	m := float64(heightCM) / 100
	return math.Round(float64(weightKG)/(m*m)*10) / 10
}

// ProfileUpdate is a partial profile edit. Nil fields are left unchanged.
type ProfileUpdate struct {
	NickName  *string
	AvatarURL *string
	Gender    *string
	Age       *int
	Height    *int
	Weight    *int
	Phone     *string
	City      *string
	Province  *string
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u == ProfileUpdate{}
}

// Apply returns p with the update's non-nil fields set and BMI recomputed.
func (u ProfileUpdate) Apply(p Profile) Profile {
	if u.NickName != nil {
		p.NickName = *u.NickName
	}
	if u.AvatarURL != nil {
		p.AvatarURL = *u.AvatarURL
	}
	if u.Gender != nil {
		p.Gender = *u.Gender
	}
	if u.Age != nil {
		p.Age = *u.Age
	}
	if u.Height != nil {
		p.Height = *u.Height
	}
	if u.Weight != nil {
		p.Weight = *u.Weight
	}
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
	if u.City != nil {
		p.City = *u.City
	}
	if u.Province != nil {
		p.Province = *u.Province
	}
	p.BMI = ComputeBMI(p.Height, p.Weight)
	return p
}
