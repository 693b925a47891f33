package secret

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func withKeyring(t *testing.T, get func(string, string) (string, error), set func(string, string, string) error) {
	t.Helper()
	origGet, origSet, origEnv := keyringGet, keyringSet, getenv
	t.Cleanup(func() {
		keyringGet, keyringSet, getenv = origGet, origSet, origEnv
	})
	keyringGet, keyringSet = get, set
	getenv = func(string) string { return "" }
}

func TestToken_FromKeyring(t *testing.T) {
	withKeyring(t,
		func(service, field string) (string, error) {
			if service != serviceName || field != tokenField {
				t.Errorf("lookup %s/%s", service, field)
			}
			return "abc", nil
		},
		func(string, string, string) error { t.Fatal("must not write"); return nil },
	)
	tok, err := Token(NewKeyring(), NewFileStore(t.TempDir()))
	if err != nil || tok != "abc" {
		t.Fatalf("Token = %q, %v", tok, err)
	}
}

func TestToken_GeneratesIntoKeyring(t *testing.T) {
	var stored string
	withKeyring(t,
		func(string, string) (string, error) { return "", errors.New("not found") },
		func(_, _, v string) error { stored = v; return nil },
	)
	tok, err := Token(NewKeyring(), NewFileStore(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	if len(tok) != 2*tokenBytes || tok != stored {
		t.Errorf("token %q stored %q", tok, stored)
	}
}

func TestToken_FallsBackToFile(t *testing.T) {
	withKeyring(t,
		func(string, string) (string, error) { return "", errors.New("no keyring") },
		func(string, string, string) error { return errors.New("no keyring") },
	)
	dir := t.TempDir()
	tok, err := Token(NewKeyring(), NewFileStore(dir))
	if err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(dir, tokenFileName))
	if err != nil {
		t.Fatal(err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != tokenFileMode {
		t.Errorf("mode = %v", info.Mode().Perm())
	}
	again, err := Token(NewKeyring(), NewFileStore(dir))
	if err != nil || again != tok {
		t.Errorf("second Token = %q, %v, want %q", again, err, tok)
	}
}

func TestToken_EnvWins(t *testing.T) {
	withKeyring(t,
		func(string, string) (string, error) { return "keyring", nil },
		func(string, string, string) error { return nil },
	)
	getenv = func(string) string { return " from-env \n" }
	tok, err := Token(NewKeyring())
	if err != nil || tok != "from-env" {
		t.Errorf("Token = %q, %v", tok, err)
	}
}

func TestToken_NoWritableStore(t *testing.T) {
	withKeyring(t,
		func(string, string) (string, error) { return "", errors.New("x") },
		func(string, string, string) error { return errors.New("x") },
	)
	orig := fileMkdirAll
	defer func() { fileMkdirAll = orig }()
	fileMkdirAll = func(string, os.FileMode) error { return errors.New("read-only") }
	if _, err := Token(NewKeyring(), NewFileStore(t.TempDir())); err == nil {
		t.Error("expected error")
	}
}

func TestToken_RandFailure(t *testing.T) {
	withKeyring(t,
		func(string, string) (string, error) { return "", errors.New("x") },
		func(string, string, string) error { return nil },
	)
	orig := randRead
	defer func() { randRead = orig }()
	randRead = func([]byte) (int, error) { return 0, errors.New("entropy") }
	if _, err := Token(NewKeyring()); err == nil {
		t.Error("expected error")
	}
}
