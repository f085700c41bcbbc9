package auth

// UserContext is the authenticated principal carried through a request.
type UserContext struct {
	UserID    string
	Role      string
	SessionID string
}
