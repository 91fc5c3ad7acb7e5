package auth

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Verifier answers a binary credential check. The chat core never talks to
// account storage directly; it only sees this capability.
type Verifier interface {
	Verify(username, password string) bool
}

type Account struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"-"`
	Avatar   string `yaml:"avatar" json:"avatar"`
}

// StaticRegistry is a fixed username -> credential/avatar table loaded from
// a YAML file at startup. Passwords are compared as plain strings; hardening
// beyond the binary match is out of scope for this service.
type StaticRegistry struct {
	accounts map[string]Account
}

type registryFile struct {
	Accounts []Account `yaml:"accounts"`
}

func LoadRegistry(path string) (*StaticRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read accounts file: %w", err)
	}
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse accounts file: %w", err)
	}
	accounts := make(map[string]Account, len(file.Accounts))
	for _, a := range file.Accounts {
		accounts[a.Username] = a
	}
	return &StaticRegistry{accounts: accounts}, nil
}

func NewStaticRegistry(accounts []Account) *StaticRegistry {
	m := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		m[a.Username] = a
	}
	return &StaticRegistry{accounts: m}
}

func (r *StaticRegistry) Verify(username, password string) bool {
	a, ok := r.accounts[username]
	return ok && a.Password == password
}

// Accounts lists every known account for the chat page (avatars next to
// usernames). Passwords never serialize.
func (r *StaticRegistry) Accounts() []Account {
	out := make([]Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, a)
	}
	return out
}
