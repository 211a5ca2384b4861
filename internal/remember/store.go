// Package remember persists the remembered-credential hint: at most one
// email used to pre-fill the login form, plus the remember-me flag. The
// password is never stored.
package remember

// Hint is the durable remember-me state. The invariant "no email retained
// when remember-me is off" is enforced by the stores: saving a Hint with
// Remember false drops the email.
type Hint struct {
	Email    string
	Remember bool
}

// Store reads and writes the hint as one atomic pair; a reader never
// observes a partial write.
type Store interface {
	Load() (Hint, error)
	Save(Hint) error
}
