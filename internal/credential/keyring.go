package credential

import (
	"errors"
	"fmt"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "pr-status-sync"

// TokenKey ключ токена GitHub в хранилище
const TokenKey = "github-token"

// ErrNotFound возвращается, если значение отсутствует в хранилище
var ErrNotFound = errors.New("credential not found")

// Источники токена
const (
	SourceConfig  = "config"
	SourceKeyring = "keyring"
	SourceGH      = "gh"
)

// Store хранит секреты в системном keyring
type Store struct {
	ring keyring.Keyring
}

// openKeyring открывает keyring с доступными бэкендами
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/pr-status-sync/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("pr-status-sync-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Open открывает системный keyring
func Open() (*Store, error) {
	ring, err := openKeyring()
	if err != nil {
		return nil, err
	}
	return NewStore(ring), nil
}

// NewStore создает Store поверх готового keyring
func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Get возвращает секрет по ключу
func (s *Store) Get(key string) (string, error) {
	item, err := s.ring.Get(key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set сохраняет секрет по ключу
func (s *Store) Set(key, value string) error {
	err := s.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: serviceName + " " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete удаляет секрет по ключу
func (s *Store) Delete(key string) error {
	if err := s.ring.Remove(key); err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

// SetToken сохраняет токен GitHub
func (s *Store) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is empty")
	}
	return s.Set(TokenKey, token)
}

// ResolveToken выбирает токен: из конфигурации, затем из keyring.
// Пустой результат означает, что gh использует собственную авторизацию.
func ResolveToken(configured string, store *Store) (string, string) {
	if t := strings.TrimSpace(configured); t != "" {
		return t, SourceConfig
	}
	if store != nil {
		if t, err := store.Get(TokenKey); err == nil && strings.TrimSpace(t) != "" {
			return strings.TrimSpace(t), SourceKeyring
		}
	}
	return "", SourceGH
}
