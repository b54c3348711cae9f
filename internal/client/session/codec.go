package session

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
	"github.com/fxamacker/cbor/v2"
)

// Persistent keys.
const (
	KeyUserInfo = "userInfo"
	KeyOpenID   = "openid"
	KeyToken    = "token"
	KeyLoggedIn = "isLoggedIn"

	// KeyUserID holds the locally generated anonymous id. It is not part of
	// the session group but is dropped together with it on logout.
	KeyUserID = "userId"
)

var loggedInValue = []byte("1")

// userInfoRecord is the persisted blob under KeyUserInfo. Credentials live
// under their own keys.
type userInfoRecord struct {
	Profile    models.Profile `cbor:"1,keyasint"`
	IsGuest    bool           `cbor:"2,keyasint,omitempty"`
	IsNewUser  bool           `cbor:"3,keyasint,omitempty"`
	VerifiedAt time.Time      `cbor:"4,keyasint"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	var err error
	if encMode, err = opts.EncMode(); err != nil {
		panic(err)
	}
	if decMode, err = (cbor.DecOptions{}).DecMode(); err != nil {
		panic(err)
	}
}

func encodeUserInfo(id *models.Identity) ([]byte, error) {
	b, err := encMode.Marshal(userInfoRecord{
		Profile:    id.Profile,
		IsGuest:    id.IsGuest,
		IsNewUser:  id.IsNewUser,
		VerifiedAt: id.VerifiedAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode userInfo: %w", err)
	}
	return b, nil
}

func decodeUserInfo(b []byte, id *models.Identity) error {
	var rec userInfoRecord
	if err := decMode.Unmarshal(b, &rec); err != nil {
		return fmt.Errorf("decode userInfo: %w", err)
	}
	id.Profile = rec.Profile
	id.IsGuest = rec.IsGuest
	id.IsNewUser = rec.IsNewUser
	id.VerifiedAt = rec.VerifiedAt
	return nil
}
