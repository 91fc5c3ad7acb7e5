package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryAndVerify(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "accounts.yaml")
	contents := `accounts:
  - username: joy
    password: joy
    avatar: /static/avatars/joy.png
  - username: louie
    password: louie
    avatar: /static/avatars/louie.png
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry err: %v", err)
	}

	if !reg.Verify("joy", "joy") {
		t.Error("valid credentials rejected")
	}
	if reg.Verify("joy", "wrong") {
		t.Error("wrong password accepted")
	}
	if reg.Verify("nobody", "joy") {
		t.Error("unknown user accepted")
	}

	if got := len(reg.Accounts()); got != 2 {
		t.Errorf("expected 2 accounts, got %d", got)
	}
}

func TestLoadRegistryMissingFile(t *testing.T) {
	if _, err := LoadRegistry("/does/not/exist.yaml"); err == nil {
		t.Fatal("expected an error for a missing accounts file")
	}
}
