package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	KeychainService = "composer"

	SecretPublishToken = "token"
	SecretOpenAIKey    = "openai_key"
)

// SecretRef names one keychain entry: keychain://composer/<name>/<kind>.
type SecretRef struct {
	Name string
	Kind string
}

// SecretStore resolves secret refs to values. The config file stores only
// refs; values stay in the OS keychain.
type SecretStore interface {
	Set(ref string, value string) error
	Get(ref string) (string, error)
	Delete(ref string) error
}

type keyringBackend interface {
	Set(service, user, password string) error
	Get(service, user string) (string, error)
	Delete(service, user string) error
}

type defaultKeyringBackend struct{}

func (defaultKeyringBackend) Set(service, user, password string) error {
	return keyring.Set(service, user, password)
}

func (defaultKeyringBackend) Get(service, user string) (string, error) {
	return keyring.Get(service, user)
}

func (defaultKeyringBackend) Delete(service, user string) error {
	return keyring.Delete(service, user)
}

// KeychainStore is the keyring-backed SecretStore. The backend is
// injectable so tests run without an OS keychain.
type KeychainStore struct {
	service string
	backend keyringBackend
}

func NewKeychainStore() *KeychainStore {
	return &KeychainStore{
		service: KeychainService,
		backend: defaultKeyringBackend{},
	}
}

func NewSecretRef(name string, kind string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("secret name is required")
	}
	switch kind {
	case SecretPublishToken, SecretOpenAIKey:
	default:
		return "", fmt.Errorf("unsupported secret kind %q", kind)
	}
	return fmt.Sprintf("keychain://%s/%s/%s", KeychainService, name, kind), nil
}

func ParseSecretRef(ref string) (SecretRef, error) {
	if !strings.HasPrefix(ref, "keychain://") {
		return SecretRef{}, fmt.Errorf("invalid secret ref %q: expected keychain:// prefix", ref)
	}
	trimmed := strings.TrimPrefix(ref, "keychain://")
	parts := strings.Split(trimmed, "/")
	if len(parts) != 3 {
		return SecretRef{}, fmt.Errorf("invalid secret ref %q: expected keychain://<service>/<name>/<kind>", ref)
	}
	if parts[0] != KeychainService {
		return SecretRef{}, fmt.Errorf("invalid secret ref %q: unsupported service %q", ref, parts[0])
	}
	name := strings.TrimSpace(parts[1])
	kind := strings.TrimSpace(parts[2])
	if name == "" || kind == "" {
		return SecretRef{}, fmt.Errorf("invalid secret ref %q: empty name or kind", ref)
	}
	if kind != SecretPublishToken && kind != SecretOpenAIKey {
		return SecretRef{}, fmt.Errorf("invalid secret ref %q: unknown kind %q", ref, kind)
	}
	return SecretRef{Name: name, Kind: kind}, nil
}

func (s *KeychainStore) Set(ref string, value string) error {
	parsed, err := ParseSecretRef(ref)
	if err != nil {
		return err
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value cannot be empty")
	}
	if err := s.backend.Set(s.service, accountName(parsed), value); err != nil {
		return fmt.Errorf("keychain set %q: %w", ref, err)
	}
	return nil
}

func (s *KeychainStore) Get(ref string) (string, error) {
	parsed, err := ParseSecretRef(ref)
	if err != nil {
		return "", err
	}
	value, err := s.backend.Get(s.service, accountName(parsed))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("keychain secret not found for %q: %w", ref, err)
		}
		return "", fmt.Errorf("keychain get %q: %w", ref, err)
	}
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("keychain secret value is empty for %q", ref)
	}
	return value, nil
}

func (s *KeychainStore) Delete(ref string) error {
	parsed, err := ParseSecretRef(ref)
	if err != nil {
		return err
	}
	if err := s.backend.Delete(s.service, accountName(parsed)); err != nil {
		return fmt.Errorf("keychain delete %q: %w", ref, err)
	}
	return nil
}

func accountName(ref SecretRef) string {
	return fmt.Sprintf("%s:%s", ref.Name, ref.Kind)
}
