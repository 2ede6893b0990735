package token

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	errs "triviafetch/pkg/errors"
	"triviafetch/pkg/logger"
	"triviafetch/pkg/opentdb"
)

// Token is a server-issued session token. OpenTDB tokens are global: one
// token tracks served questions across all categories, so the process
// holds exactly one and persists it across runs.
type Token struct {
	Value     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	Note      string    `json:"note,omitempty"`
}

const tokenFileName = "global_token.json"

const tokenNote = "This token is global and tracks questions across all categories"

// Manager obtains, persists and resets the process-wide session token
type Manager struct {
	path        string
	client      *opentdb.Client
	logger      logger.Logger
	cached      *Token
	invalidated bool
}

// NewManager creates a token manager storing its token under dir
func NewManager(dir string, client *opentdb.Client, log logger.Logger) (*Manager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create tokens directory: %w", err)
	}
	if log == nil {
		log = logger.GetLogger()
	}

	return &Manager{
		path:   filepath.Join(dir, tokenFileName),
		client: client,
		logger: log,
	}, nil
}

// Get returns the active session token, fetching a new one from the API
// when no usable persisted token exists. The second return value reports
// whether the token was newly created: a new token has no server-side
// memory of prior fetches, so callers must discard their local
// duplicate-question ledgers keyed against the old token.
func (m *Manager) Get(ctx context.Context) (Token, bool, error) {
	if !m.invalidated {
		if m.cached != nil {
			return *m.cached, false, nil
		}
		if tok := m.loadPersisted(); tok != nil {
			m.cached = tok
			return *tok, false, nil
		}
	}

	resp, err := m.client.RequestToken(ctx)
	if err != nil {
		return Token{}, false, fmt.Errorf("failed to request session token: %w", err)
	}
	if resp.ResponseCode != opentdb.CodeSuccess {
		return Token{}, false, errs.New(errs.ErrorTypeProtocol, resp.ResponseCode,
			"token request rejected: %s", opentdb.ResponseCodeText(resp.ResponseCode))
	}

	tok := Token{
		Value:     resp.Token,
		CreatedAt: time.Now().UTC(),
		Note:      tokenNote,
	}
	if err := m.save(tok); err != nil {
		return Token{}, false, err
	}

	m.cached = &tok
	m.invalidated = false

	m.logger.InfoWithFields("session token created", map[string]interface{}{
		"path": m.path,
	})

	return tok, true, nil
}

// Reset asks the API to wipe the server-side memory of the given token
// and reports whether the API confirmed. On success the cached token is
// invalidated so the next Get fetches anew; the persisted file is left
// untouched, matching the remote semantics where a reset token keeps its
// value but forgets its history.
func (m *Manager) Reset(ctx context.Context, tok Token) bool {
	resp, err := m.client.ResetToken(ctx, tok.Value)
	if err != nil {
		m.logger.WithError(err).Error("token reset request failed")
		return false
	}
	if resp.ResponseCode != opentdb.CodeSuccess {
		m.logger.WarnWithFields("token reset rejected", map[string]interface{}{
			"response_code": resp.ResponseCode,
			"meaning":       opentdb.ResponseCodeText(resp.ResponseCode),
		})
		return false
	}

	m.Invalidate()
	m.logger.Info("session token reset")
	return true
}

// Invalidate discards the cached token so the next Get is forced to
// request a fresh one from the API
func (m *Manager) Invalidate() {
	m.cached = nil
	m.invalidated = true
}

// loadPersisted reads the persisted token file. A missing or corrupt
// file is treated as no token.
func (m *Manager) loadPersisted() *Token {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.WithError(err).Warn("failed to read token file")
		}
		return nil
	}

	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		m.logger.WithError(err).Warn("token file is corrupt, requesting a new token")
		return nil
	}
	if tok.Value == "" {
		return nil
	}

	m.logger.DebugWithFields("loaded persisted session token", map[string]interface{}{
		"created_at": tok.CreatedAt,
	})
	return &tok
}

// save writes the token to disk atomically
func (m *Manager) save(tok Token) error {
	tempPath := m.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary token file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(tok); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync token file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close token file: %w", err)
	}

	if err := os.Rename(tempPath, m.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace token file: %w", err)
	}

	return nil
}
