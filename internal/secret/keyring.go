// Package secret provisions the bearer token that guards the HTTP and
// websocket RPC endpoints. The token lives in the OS keyring, or in a 0600
// file in the config directory when no keyring is available.
package secret

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/warpdl/warpalarm/common"
	"github.com/zalando/go-keyring"
)

const (
	serviceName = "warpalarm"
	tokenField  = "rpc-token"
	tokenBytes  = 32
)

var (
	keyringSet = keyring.Set
	keyringGet = keyring.Get
	randRead   = rand.Read
	getenv     = os.Getenv
)

// Store holds a token.
type Store interface {
	Get() (string, error)
	Set(token string) error
}

// Keyring stores the token in the OS keyring.
type Keyring struct {
	Service string
	Field   string
}

func NewKeyring() *Keyring {
	return &Keyring{Service: serviceName, Field: tokenField}
}

func (k *Keyring) Get() (string, error) {
	return keyringGet(k.Service, k.Field)
}

func (k *Keyring) Set(token string) error {
	return keyringSet(k.Service, k.Field, token)
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := randRead(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Token resolves the RPC token: WARPALARM_RPC_SECRET first, then each store
// in order. When no store has one, a new token is generated and saved in the
// first store that accepts it.
func Token(stores ...Store) (string, error) {
	if t := strings.TrimSpace(getenv(common.RPCSecretEnv)); t != "" {
		return t, nil
	}
	for _, s := range stores {
		if t, err := s.Get(); err == nil && t != "" {
			return t, nil
		}
	}
	token, err := newToken()
	if err != nil {
		return "", err
	}
	var errs []error
	for _, s := range stores {
		if err := s.Set(token); err != nil {
			errs = append(errs, err)
			continue
		}
		return token, nil
	}
	return "", fmt.Errorf("error: cannot store rpc token: %w", errors.Join(errs...))
}
