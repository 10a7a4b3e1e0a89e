package models

// Identity resolves which cart an operation targets: the user ID once signed
// in, otherwise the anonymous session-cart token minted into a cookie. It is
// threaded explicitly through the cart and order services so the core logic
// never reaches into a request context.
type Identity struct {
	UserID        string
	SessionCartID string
}

// Authenticated reports whether the identity belongs to a signed-in user.
func (id Identity) Authenticated() bool {
	return id.UserID != ""
}
