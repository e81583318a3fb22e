package model

import "time"

// Feature flag names recognized on a user record.
const (
	FeatureChangeEmail  = "change_email"
	FeatureDisplayEmail = "display_email"
	FeatureCustomOTP    = "custom_otp"
	FeatureDeleteEmail  = "delete_email"
	FeatureFakeOTP      = "fake_otp"
	FeatureFakeEmail    = "fake_email"
	FeatureTokenUser    = "token_user"
)

// Features maps capability flag names to their enabled state.
type Features map[string]bool

var featureNames = []string{
	FeatureChangeEmail,
	FeatureDisplayEmail,
	FeatureCustomOTP,
	FeatureDeleteEmail,
	FeatureFakeOTP,
	FeatureFakeEmail,
	FeatureTokenUser,
}

// DefaultFeatures returns the flag set assigned at registration: every
// capability disabled.
func DefaultFeatures() Features {
	f := make(Features, len(featureNames))
	for _, name := range featureNames {
		f[name] = false
	}
	return f
}

// AllFeatures returns the flag set granted by account activation: every
// capability enabled.
func AllFeatures() Features {
	f := make(Features, len(featureNames))
	for _, name := range featureNames {
		f[name] = true
	}
	return f
}

// Clone returns an independent copy of the flag set.
func (f Features) Clone() Features {
	c := make(Features, len(f))
	for k, v := range f {
		c[k] = v
	}
	return c
}

// User is the per-username account record. Username is the primary key.
// SessionID is non-nil only while a session is live; a new successful login
// overwrites it, which invalidates the prior session.
type User struct {
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	Email        string     `json:"email"`
	CustomOTP    string     `json:"custom_otp"`
	FakeEmail    string     `json:"fake_email"`
	FakeOTP      string     `json:"fake_otp"`
	UserToken    string     `json:"user_token"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login"`
	SessionID    *string    `json:"-"`
	Features     Features   `json:"features"`
}

// Clone returns a deep copy of the record.
func (u *User) Clone() *User {
	c := *u
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	if u.SessionID != nil {
		s := *u.SessionID
		c.SessionID = &s
	}
	c.Features = u.Features.Clone()
	return &c
}

// IssuedToken is the stored bearer token for a user, overwritten on each
// issuance.
type IssuedToken struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}
