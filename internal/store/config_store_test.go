package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_LoadMissingReturnsEmpty(t *testing.T) {
	s := NewConfigStore(t.TempDir(), nil)
	doc := s.Load()
	assert.NotNil(t, doc)
	assert.Empty(t, doc)
}

func TestConfigStore_LoadInvalidJSONReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0o644))

	s := NewConfigStore(dir, nil)
	assert.Empty(t, s.Load())
}

func TestConfigStore_SaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	s := NewConfigStore(dir, nil)

	require.NoError(t, s.Save(Document{"site": map[string]interface{}{"ip": "10.0.0.1"}}))

	doc := s.Load()
	ip, ok := doc.Lookup("site.ip")
	assert.True(t, ok)
	assert.Equal(t, "10.0.0.1", ip)
}

func TestConfigStore_MergeUpdates(t *testing.T) {
	s := NewConfigStore(t.TempDir(), nil)
	require.NoError(t, s.Save(Document{
		"database": map[string]interface{}{"user": "old", "password": "secret", "host": "db", "port": 3306},
		"site":     map[string]interface{}{"domain": "a.example.com"},
		"extra":    "kept",
	}))

	merged, err := s.MergeUpdates(Document{
		"database": map[string]interface{}{"user": "new", "password": nil, "name": "enTeacher"},
	})
	require.NoError(t, err)

	db := merged.Section("database")
	assert.Equal(t, "new", db["user"])
	assert.Equal(t, "secret", db["password"])
	assert.Equal(t, "db", db["host"])
	assert.Equal(t, "enTeacher", db["name"])
	assert.Equal(t, "a.example.com", merged.Section("site")["domain"])
	assert.Equal(t, "kept", merged["extra"])

	// 合并结果已落盘
	reloaded := s.Load()
	port, _ := reloaded.Lookup("database.port")
	assert.Equal(t, "3306", port)
	user, _ := reloaded.Lookup("database.user")
	assert.Equal(t, "new", user)
}

func TestConfigStore_MergeUpdatesOnlyDatabaseAndSite(t *testing.T) {
	s := NewConfigStore(t.TempDir(), nil)
	require.NoError(t, s.Save(Document{
		"wechat_pay": map[string]interface{}{"app_id": "wx-old"},
	}))

	merged, err := s.MergeUpdates(Document{
		"site":       map[string]interface{}{"ip": "10.0.0.1"},
		"wechat_pay": map[string]interface{}{"app_id": "wx-new"},
		"sms":        map[string]interface{}{"provider": "aliyun"},
	})
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.1", merged.Section("site")["ip"])
	assert.Equal(t, "wx-old", merged.Section("wechat_pay")["app_id"])
	_, hasSMS := merged["sms"]
	assert.False(t, hasSMS)
}

func TestConfigStore_MergeUpdatesOnEmptyStore(t *testing.T) {
	s := NewConfigStore(t.TempDir(), nil)

	merged, err := s.MergeUpdates(Document{"site": map[string]interface{}{"backend_port": 8001}})
	require.NoError(t, err)

	assert.NotNil(t, merged.Section("database"))
	assert.Equal(t, 8001, merged.Section("site")["backend_port"])
}

func TestConfigStore_LegacyMigration(t *testing.T) {
	dir := t.TempDir()
	legacy := filepath.Join(dir, "server.json")
	require.NoError(t, os.WriteFile(legacy, []byte(`{"site":{"domain":"legacy.example.com"}}`), 0o644))

	s := NewConfigStore(dir, nil)
	doc := s.Load()
	domain, ok := doc.Lookup("site.domain")
	assert.True(t, ok)
	assert.Equal(t, "legacy.example.com", domain)

	_, err := os.Stat(filepath.Join(dir, "config.json"))
	assert.NoError(t, err, "旧版配置应迁移到 config.json")
}

func TestConfigStore_EmptyLegacyIgnored(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "server.json"), []byte(`{}`), 0o644))

	s := NewConfigStore(dir, nil)
	assert.Empty(t, s.Load())

	_, err := os.Stat(filepath.Join(dir, "config.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestDocument_Lookup(t *testing.T) {
	doc := Document{
		"database": map[string]interface{}{"port": float64(3307), "user": "", "name": nil},
	}

	port, ok := doc.Lookup("database.port")
	assert.True(t, ok)
	assert.Equal(t, "3307", port)

	_, ok = doc.Lookup("database.user")
	assert.False(t, ok)
	_, ok = doc.Lookup("database.name")
	assert.False(t, ok)
	_, ok = doc.Lookup("site.ip")
	assert.False(t, ok)
}
