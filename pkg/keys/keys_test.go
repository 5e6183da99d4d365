package keys

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadGeneratesAdminKey(t *testing.T) {
	dir := t.TempDir()
	k, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if k.AdminKey() == "" {
		t.Fatal("expected a generated administrator key")
	}
	if !k.PendingActivation() {
		t.Fatal("fresh key should be pending activation")
	}
	b, err := os.ReadFile(filepath.Join(dir, adminKeyFile))
	if err != nil {
		t.Fatalf("read key file: %v", err)
	}
	if strings.TrimSpace(string(b)) != k.AdminKey() {
		t.Fatalf("key file %q does not hold the key %q", b, k.AdminKey())
	}
}

func TestLoadReadsLastNonEmptyLine(t *testing.T) {
	dir := t.TempDir()
	content := "old-key\n\nrotated-key\n\n"
	if err := os.WriteFile(filepath.Join(dir, adminKeyFile), []byte(content), 0o644); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	k, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if k.AdminKey() != "rotated-key" {
		t.Fatalf("AdminKey = %q, want %q", k.AdminKey(), "rotated-key")
	}
}

func TestAuthorizeMatrix(t *testing.T) {
	dir := t.TempDir()
	k, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	admin := k.AdminKey()

	// No user key configured: reads are open, writes need the admin key.
	cases := []struct {
		name       string
		key        string
		needsAdmin bool
		allowed    bool
		isAdmin    bool
	}{
		{"anon read", "", false, true, false},
		{"anon write", "", true, false, false},
		{"wrong key write", "bogus", true, false, false},
		{"admin read", admin, false, true, true},
		{"admin write", admin, true, true, true},
	}
	for _, c := range cases {
		d := k.Authorize(c.key, c.needsAdmin)
		if d.Allowed != c.allowed || d.IsAdministrator != c.isAdmin {
			t.Errorf("%s: got %+v, want allowed=%v admin=%v", c.name, d, c.allowed, c.isAdmin)
		}
	}
}

func TestAuthorizeWithUserKey(t *testing.T) {
	dir := t.TempDir()
	k, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := k.SetUserKey("reader-key"); err != nil {
		t.Fatalf("SetUserKey: %v", err)
	}

	if d := k.Authorize("", false); d.Allowed {
		t.Fatal("anonymous read allowed despite configured user key")
	}
	if d := k.Authorize("reader-key", false); !d.Allowed || d.IsAdministrator {
		t.Fatalf("user key read: got %+v", d)
	}
	if d := k.Authorize("reader-key", true); d.Allowed {
		t.Fatal("user key must not grant admin operations")
	}
}

func TestActivationIsDurableAndIdempotent(t *testing.T) {
	dir := t.TempDir()
	k, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	admin := k.AdminKey()

	k.Authorize(admin, true)
	if k.PendingActivation() {
		t.Fatal("activation not cleared after first admin use")
	}
	marker := filepath.Join(dir, adminActivatedFile)
	if _, err := os.Stat(marker); err != nil {
		t.Fatalf("activation marker missing: %v", err)
	}

	// A second use stays activated.
	k.Authorize(admin, true)
	if k.PendingActivation() {
		t.Fatal("activation lost on repeat use")
	}

	// A reload sees the marker and does not re-alert.
	k2, err := Load(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if k2.PendingActivation() {
		t.Fatal("activation marker ignored on reload")
	}
	if k2.AdminKey() != admin {
		t.Fatalf("key changed across reload: %q vs %q", k2.AdminKey(), admin)
	}
}

func TestEmptyKeysNeverMatch(t *testing.T) {
	if keyEqual("", "") {
		t.Fatal("two empty keys must not compare equal")
	}
	if keyEqual("x", "") || keyEqual("", "x") {
		t.Fatal("empty key matched a non-empty one")
	}
}
