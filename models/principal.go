package models

type PrincipalKind int

const (
	PrincipalAnonymous PrincipalKind = iota
	PrincipalAuthenticated
)

// Principal is the resolved caller of a request or realtime connection.
// The zero value is anonymous.
type Principal struct {
	Kind  PrincipalKind
	ID    int64
	Email string
}

func Anonymous() Principal {
	return Principal{Kind: PrincipalAnonymous}
}

func Authenticated(id int64, email string) Principal {
	return Principal{Kind: PrincipalAuthenticated, ID: id, Email: email}
}

func (p Principal) IsAuthenticated() bool {
	return p.Kind == PrincipalAuthenticated && p.ID > 0
}

// UserID returns the caller's id, or nil for anonymous callers.
func (p Principal) UserID() *int64 {
	if !p.IsAuthenticated() {
		return nil
	}
	id := p.ID
	return &id
}
