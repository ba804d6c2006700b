package session

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"marketplace-portal/internal/model"
)

const sealInfo = "marketplace-portal/session-file/v1"

var ErrSealedFile = errors.New("session file cannot be opened with the configured secret")

// FileStore persists every slot in a single JSON document so sessions
// survive a restart. With a non-empty secret the document is sealed with
// XChaCha20-Poly1305 under a key derived from the secret.
type FileStore struct {
	path string
	aead cipher.AEAD
	mu   sync.Mutex
}

func NewFileStore(path string, secret string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("session file path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	store := &FileStore{path: path}
	if secret != "" {
		aead, err := deriveAEAD(secret)
		if err != nil {
			return nil, err
		}
		store.aead = aead
	}

	// Fail at startup rather than on the first request if the file is
	// unreadable or sealed with another secret.
	if _, err := store.load(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *FileStore) Get(_ context.Context, role model.Role) (model.Session, error) {
	if !role.Valid() {
		return model.Session{}, model.ErrUnknownRole
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	slots, err := s.load()
	if err != nil {
		return model.Session{}, err
	}

	return sessionFromSlots(slots, role)
}

func (s *FileStore) Set(_ context.Context, role model.Role, token string, user json.RawMessage) error {
	if !role.Valid() {
		return model.ErrUnknownRole
	}

	return s.update(func(slots map[string]string) {
		writeSlots(slots, role, token, user)
	})
}

func (s *FileStore) Clear(_ context.Context, role model.Role) error {
	if !role.Valid() {
		return model.ErrUnknownRole
	}

	return s.update(func(slots map[string]string) {
		delete(slots, role.TokenKey())
		delete(slots, role.UserKey())
	})
}

func (s *FileStore) ClearAll(_ context.Context) error {
	return s.update(func(slots map[string]string) {
		clear(slots)
	})
}

func (s *FileStore) update(mutate func(map[string]string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots, err := s.load()
	if err != nil {
		return err
	}

	mutate(slots)
	return s.save(slots)
}

func (s *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return map[string]string{}, nil
	}

	if s.aead != nil {
		data, err = s.open(data)
		if err != nil {
			return nil, err
		}
	}

	slots := map[string]string{}
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}

	return slots, nil
}

func (s *FileStore) save(slots map[string]string) error {
	data, err := json.MarshalIndent(slots, "", "  ")
	if err != nil {
		return err
	}

	if s.aead != nil {
		data, err = s.seal(data)
		if err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".sessions-*")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, s.path)
}

func (s *FileStore) seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return s.aead.Seal(nonce, nonce, plaintext, []byte(sealInfo)), nil
}

func (s *FileStore) open(sealed []byte) ([]byte, error) {
	size := s.aead.NonceSize()
	if len(sealed) < size {
		return nil, ErrSealedFile
	}

	plaintext, err := s.aead.Open(nil, sealed[:size], sealed[size:], []byte(sealInfo))
	if err != nil {
		return nil, ErrSealedFile
	}

	return plaintext, nil
}

func deriveAEAD(secret string) (cipher.AEAD, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(sealInfo)), key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init session cipher: %w", err)
	}

	return aead, nil
}
