package keys

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/natefinch/atomic"

	"songbook/pkg/logger"
)

const (
	adminKeyFile       = "administrator.key"
	adminActivatedFile = "administrator.activated"
	userKeyFile        = "user.key"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed         bool
	IsAdministrator bool
}

// Keyring holds the process-wide capability key pair. The administrator
// key is always present after Load; the user key is optional and its
// absence means user-tier operations are unrestricted. Key files are
// newline-delimited single values under the data root; the last
// non-empty line wins so a key can be rotated by appending.
type Keyring struct {
	mu       sync.Mutex
	dataRoot string

	admin             string
	user              string
	pendingActivation bool
}

// Load reads the key files under dataRoot, generating and persisting an
// administrator key if none exists yet.
func Load(dataRoot string) (*Keyring, error) {
	k := &Keyring{dataRoot: dataRoot}

	admin, err := readKeyFile(filepath.Join(dataRoot, adminKeyFile))
	if err != nil {
		return nil, fmt.Errorf("read administrator key: %w", err)
	}
	k.admin = admin

	user, err := readKeyFile(filepath.Join(dataRoot, userKeyFile))
	if err != nil {
		return nil, fmt.Errorf("read user key: %w", err)
	}
	k.user = user

	if k.admin == "" {
		if err := k.generateAdminKey(); err != nil {
			return nil, err
		}
	} else {
		_, serr := os.Stat(filepath.Join(dataRoot, adminActivatedFile))
		k.pendingActivation = os.IsNotExist(serr)
	}
	return k, nil
}

// Authorize evaluates a presented key against the two-tier model. The
// administrator key grants every operation; the user tier (a matching
// user key, or any caller when no user key is configured) grants
// operations that do not need admin. The first successful administrator
// authorization clears the pending-activation alert and records the
// activation durably; subsequent calls are no-ops.
func (k *Keyring) Authorize(requestKey string, needsAdmin bool) Decision {
	k.mu.Lock()
	defer k.mu.Unlock()

	if keyEqual(requestKey, k.admin) {
		k.markActivatedLocked()
		return Decision{Allowed: true, IsAdministrator: true}
	}
	if !needsAdmin && (k.user == "" || keyEqual(requestKey, k.user)) {
		return Decision{Allowed: true}
	}
	return Decision{}
}

// PendingActivation reports whether the administrator key has never been
// presented since it was generated.
func (k *Keyring) PendingActivation() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.pendingActivation
}

// AdminKey returns the administrator key. It is shown once in the
// activation alert so the operator can claim the instance.
func (k *Keyring) AdminKey() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.admin
}

// SetUserKey persists a user key, restricting user-tier operations to
// holders of that key.
func (k *Keyring) SetUserKey(key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	path := filepath.Join(k.dataRoot, userKeyFile)
	if err := atomic.WriteFile(path, strings.NewReader(key+"\n")); err != nil {
		return fmt.Errorf("write user key: %w", err)
	}
	k.user = key
	return nil
}

func (k *Keyring) generateAdminKey() error {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("generate administrator key: %w", err)
	}
	key := hex.EncodeToString(buf)

	path := filepath.Join(k.dataRoot, adminKeyFile)
	if err := atomic.WriteFile(path, strings.NewReader(key+"\n")); err != nil {
		return fmt.Errorf("write administrator key: %w", err)
	}
	// A fresh key voids any previous activation marker.
	_ = os.Remove(filepath.Join(k.dataRoot, adminActivatedFile))

	k.admin = key
	k.pendingActivation = true
	logger.Info("administrator_key_created", "path", path)
	return nil
}

func (k *Keyring) markActivatedLocked() {
	if !k.pendingActivation {
		return
	}
	path := filepath.Join(k.dataRoot, adminActivatedFile)
	if err := atomic.WriteFile(path, strings.NewReader("activated\n")); err != nil {
		logger.Error("activation_marker_write_failed", "path", path, "error", err)
		return
	}
	k.pendingActivation = false
	logger.Info("administrator_key_activated")
}

// readKeyFile returns the last non-empty line of the file, or "" when the
// file does not exist.
func readKeyFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	var key string
	for _, line := range strings.Split(string(b), "\n") {
		if l := strings.TrimSpace(line); l != "" {
			key = l
		}
	}
	return key, nil
}

func keyEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
