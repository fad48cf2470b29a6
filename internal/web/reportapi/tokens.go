package reportapi

import (
	"fmt"
	"sync"

	"github.com/wildebeest-nlp/wildebeest/internal/web/auth"
)

// clientCredential is one client's hashed secret and the role its issued
// tokens carry.
type clientCredential struct {
	secretHash string
	role       string
}

// ClientStore holds bcrypt hashes of issued client secrets, so the raw
// secret is never retained in memory or persisted, following the
// teacher's auth.HashPassword/CheckPassword pair.
type ClientStore struct {
	mu      sync.RWMutex
	clients map[string]clientCredential // client ID -> credential
}

// NewClientStore creates an empty client credential store.
func NewClientStore() *ClientStore {
	return &ClientStore{clients: make(map[string]clientCredential)}
}

// IssueClient registers a new client ID with secret and RBAC role (one
// of "admin", "operator", "viewer" — see internal/web/auth.GetRoleByName),
// storing only the secret's bcrypt hash.
func (c *ClientStore) IssueClient(clientID, secret, role string) error {
	hash, err := auth.HashPassword(secret)
	if err != nil {
		return fmt.Errorf("hashing client secret: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clients[clientID] = clientCredential{secretHash: hash, role: role}
	return nil
}

// Authenticate reports whether secret matches the stored hash for
// clientID, and if so, the role to embed in its issued token. A
// clientID lookup miss still runs CheckPassword against a fixed dummy
// hash so the two failure modes aren't distinguishable by timing.
func (c *ClientStore) Authenticate(clientID, secret string) (role string, ok bool) {
	c.mu.RLock()
	cred, found := c.clients[clientID]
	c.mu.RUnlock()
	if !found {
		auth.CheckPassword(secret, dummyHash)
		return "", false
	}
	if !auth.CheckPassword(secret, cred.secretHash) {
		return "", false
	}
	return cred.role, true
}

// Revoke removes a client's stored credential.
func (c *ClientStore) Revoke(clientID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.clients, clientID)
}

// dummyHash is a bcrypt hash of an arbitrary fixed string, used only to
// equalize timing for lookups against an unknown client ID.
const dummyHash = "$2a$10$CwTycUXWue0Thq9StjUM0uJ8k8MrEMS.wh4O/0HHuHGvFTzLn6YQG"
