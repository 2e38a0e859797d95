// Package credcache persists the session cookie and a current-user snapshot
// between runs so the startup cookie login can resume a session.
package credcache

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/chacha20poly1305"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNoSession indicates no session has been cached yet.
var ErrNoSession = errors.New("credcache: no cached session")

// sessionRow is the single-row table holding the cached session.
type sessionRow struct {
	ID        uint           `gorm:"primaryKey"`
	Cookie    []byte         `gorm:"type:blob;not null"` // Encrypted cookie value.
	Snapshot  datatypes.JSON `gorm:"type:text"`          // Cached current-user record.
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime"`
}

// TableName keeps the table name stable across gorm versions.
func (sessionRow) TableName() string { return "sessions" }

// Cache is a sqlite-backed store for the encrypted session cookie.
type Cache struct {
	mu   sync.Mutex
	db   *gorm.DB
	aead cipher.AEAD
}

// Open opens (or creates) the cache database at path. The secret seeds the
// at-rest encryption key; any string works, it is hashed to key size.
func Open(path, secret string) (*Cache, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("credcache: empty path")
	}
	if errMkdir := os.MkdirAll(filepath.Dir(path), 0700); errMkdir != nil {
		return nil, fmt.Errorf("credcache: create cache dir: %w", errMkdir)
	}

	db, errOpen := gorm.Open(sqlite.Open(buildDSN(path)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if errOpen != nil {
		return nil, fmt.Errorf("credcache: open database: %w", errOpen)
	}
	if errMigrate := db.AutoMigrate(&sessionRow{}); errMigrate != nil {
		return nil, fmt.Errorf("credcache: migrate: %w", errMigrate)
	}

	key := sha256.Sum256([]byte(secret))
	aead, errAEAD := chacha20poly1305.NewX(key[:])
	if errAEAD != nil {
		return nil, fmt.Errorf("credcache: init cipher: %w", errAEAD)
	}
	return &Cache{db: db, aead: aead}, nil
}

// buildDSN constructs a sqlite DSN with sane defaults for a single writer.
func buildDSN(path string) string {
	dsn := path
	if !strings.HasPrefix(strings.ToLower(dsn), "file:") {
		dsn = "file:" + dsn
	}
	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}
	return dsn + separator + strings.Join([]string{
		"_pragma=busy_timeout(5000)",
		"_pragma=journal_mode(WAL)",
	}, "&")
}

// SaveSession stores the cookie and user snapshot, replacing any previous
// session.
func (c *Cache) SaveSession(cookie string, snapshot []byte) error {
	if c == nil || c.db == nil {
		return fmt.Errorf("credcache: not initialized")
	}
	if strings.TrimSpace(cookie) == "" {
		return fmt.Errorf("credcache: empty cookie")
	}

	sealed, errSeal := c.seal([]byte(cookie))
	if errSeal != nil {
		return errSeal
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	row := sessionRow{
		ID:        1,
		Cookie:    sealed,
		Snapshot:  datatypes.JSON(snapshot),
		UpdatedAt: time.Now().UTC(),
	}
	if errDelete := c.db.Where("id = ?", 1).Delete(&sessionRow{}).Error; errDelete != nil {
		return fmt.Errorf("credcache: clear previous session: %w", errDelete)
	}
	if errCreate := c.db.Create(&row).Error; errCreate != nil {
		return fmt.Errorf("credcache: save session: %w", errCreate)
	}
	return nil
}

// LoadSession returns the decrypted cookie and the user snapshot. It returns
// ErrNoSession when nothing has been cached.
func (c *Cache) LoadSession() (string, []byte, error) {
	if c == nil || c.db == nil {
		return "", nil, fmt.Errorf("credcache: not initialized")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var row sessionRow
	if errFind := c.db.First(&row, 1).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return "", nil, ErrNoSession
		}
		return "", nil, fmt.Errorf("credcache: load session: %w", errFind)
	}

	cookie, errOpen := c.open(row.Cookie)
	if errOpen != nil {
		return "", nil, errOpen
	}
	return string(cookie), []byte(row.Snapshot), nil
}

// Clear removes the cached session. Clearing an empty cache is a no-op.
func (c *Cache) Clear() error {
	if c == nil || c.db == nil {
		return fmt.Errorf("credcache: not initialized")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if errDelete := c.db.Where("id = ?", 1).Delete(&sessionRow{}).Error; errDelete != nil {
		return fmt.Errorf("credcache: clear session: %w", errDelete)
	}
	return nil
}

// seal encrypts plaintext with a random nonce prepended to the ciphertext.
func (c *Cache) seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, errRead := rand.Read(nonce); errRead != nil {
		return nil, fmt.Errorf("credcache: generate nonce: %w", errRead)
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// open decrypts a nonce-prefixed ciphertext produced by seal.
func (c *Cache) open(sealed []byte) ([]byte, error) {
	if len(sealed) < c.aead.NonceSize() {
		return nil, fmt.Errorf("credcache: sealed cookie too short")
	}
	nonce, ciphertext := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	plaintext, errOpen := c.aead.Open(nil, nonce, ciphertext, nil)
	if errOpen != nil {
		return nil, fmt.Errorf("credcache: decrypt cookie: %w", errOpen)
	}
	return plaintext, nil
}
