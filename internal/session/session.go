// Package session holds the current principal's identity and permission
// set. One State exists per application runtime; it resets to anonymous
// defaults on logout and on login failure.
package session

import "sync"

// Principal is the identity payload returned by the backend on login and
// session verification.
type Principal struct {
	ID                  int64    `json:"id"`
	Username            string   `json:"username"`
	Email               string   `json:"email"`
	Superuser           bool     `json:"is_superuser"`
	Roles               []string `json:"roles"`
	Permissions         []string `json:"permissions"`
	PrimaryOrganization string   `json:"primary_organization"`
}

// State is the mutable session state. The zero value is anonymous.
type State struct {
	mu          sync.RWMutex
	principal   Principal
	permissions map[string]struct{}
	roles       map[string]struct{}
	populated   bool
}

// NewState returns an anonymous session state.
func NewState() *State {
	return &State{}
}

// Populate replaces the session with the given principal.
func (s *State) Populate(p Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principal = p
	s.permissions = make(map[string]struct{}, len(p.Permissions))
	for _, code := range p.Permissions {
		s.permissions[code] = struct{}{}
	}
	s.roles = make(map[string]struct{}, len(p.Roles))
	for _, code := range p.Roles {
		s.roles[code] = struct{}{}
	}
	s.populated = true
}

// Reset returns the state to anonymous defaults.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principal = Principal{}
	s.permissions = nil
	s.roles = nil
	s.populated = false
}

// Authenticated reports whether a principal is populated.
func (s *State) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.populated
}

// Principal returns a copy of the current principal.
func (s *State) Principal() Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.principal
	p.Roles = append([]string(nil), s.principal.Roles...)
	p.Permissions = append([]string(nil), s.principal.Permissions...)
	return p
}

// Superuser reports whether the current principal is a superuser.
func (s *State) Superuser() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.populated && s.principal.Superuser
}

// HasPermission reports whether the cached permission set holds code.
// Superuser status is not consulted here; that short-circuit belongs to
// the permission oracle.
func (s *State) HasPermission(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.permissions[code]
	return ok
}

// HasRole reports whether the cached role set holds code.
func (s *State) HasRole(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.roles[code]
	return ok
}
