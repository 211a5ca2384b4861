package user

import "time"

// Document is one record in the "users" collection, keyed by the account id
// the identity backend assigned. Role is kept as the raw stored string here;
// decoding to the closed enum happens at the adapter boundary.
type Document struct {
	ID               string
	Email            string
	DisplayName      *string
	Role             string
	OrganizationCode *string
	PhoneNumber      *string
	PhotoURL         *string
	CreatedAt        time.Time
}

// Update is a partial update of a user document. Nil fields are left
// untouched.
type Update struct {
	DisplayName      *string
	PhotoURL         *string
	PhoneNumber      *string
	Role             *string
	OrganizationCode *string
}

// Empty reports whether the update carries no recognized field.
func (u Update) Empty() bool {
	return u.DisplayName == nil && u.PhotoURL == nil && u.PhoneNumber == nil &&
		u.Role == nil && u.OrganizationCode == nil
}
