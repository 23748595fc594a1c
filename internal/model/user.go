package model

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// User is the signed-in actor. Populated from the login response and the
// access token claims.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	BrandName string `json:"brandName,omitempty"`
	Phone     string `json:"phone,omitempty"`
	City      string `json:"city,omitempty"`
	CreatedAt Millis `json:"createdAt,omitempty"`
}

// DisplayName prefers the seller's brand over the personal name in
// customer-facing text.
func (u *User) DisplayName() string {
	if u.BrandName != "" {
		return u.BrandName
	}
	return u.Name
}

// Session couples the signed-in user with the bearer token used against
// the backend.
type Session struct {
	User      User   `json:"user"`
	Token     string `json:"token"`
	ExpiresAt Millis `json:"expiresAt"`
}

func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && s.ExpiresAt < Now()
}
