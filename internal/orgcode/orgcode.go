// Package orgcode generates and validates the shareable organization codes
// that bind User accounts to an Admin's organization.
package orgcode

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/tdslabs/apiconsole/internal/auth"
)

// Prefix identifies an organization code in its human-shareable form.
const Prefix = "TDS-"

// randomLen is the number of random characters after the prefix.
const randomLen = 6

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Generate produces a new organization code: the fixed prefix followed by
// six random base-36 uppercase characters. Uniqueness is not enforced at
// generation time; validation is existence-based, so a collision widens an
// organization rather than corrupting state.
func Generate() string {
	b := make([]byte, randomLen)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand only fails if the platform entropy source is broken.
		panic(fmt.Sprintf("reading random bytes: %v", err))
	}
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return Prefix + string(b)
}

// Directory answers whether any account currently carries a given
// organization code. user.Repository satisfies it.
type Directory interface {
	ExistsByOrganizationCode(ctx context.Context, code string) (bool, error)
}

// Validator checks submitted organization codes against stored accounts.
type Validator struct {
	dir Directory
}

// NewValidator creates a Validator over the given directory.
func NewValidator(dir Directory) *Validator {
	return &Validator{dir: dir}
}

// Validate reports whether the code is carried by at least one stored
// account. The returned error is the rejection reason: ErrOrgCodeRequired
// for an empty code, ErrInvalidOrgCode when no account matches.
func (v *Validator) Validate(ctx context.Context, code string) (bool, error) {
	if code == "" {
		return false, auth.ErrOrgCodeRequired
	}

	exists, err := v.dir.ExistsByOrganizationCode(ctx, code)
	if err != nil {
		return false, auth.Unknown(err.Error())
	}
	if !exists {
		return false, auth.ErrInvalidOrgCode
	}

	return true, nil
}
