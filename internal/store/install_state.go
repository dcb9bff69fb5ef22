package store

import (
	"path/filepath"

	"github.com/spf13/cast"
	"go.uber.org/zap"
)

const installStateFileName = "installation.json"

// AdminCredentials 安装时写入的默认管理员账户
type AdminCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Snapshot 安装完成时写入的状态快照
type Snapshot struct {
	Database map[string]interface{}
	Site     map[string]interface{}
	Admin    AdminCredentials
	Wechat   map[string]interface{}
	SMS      map[string]interface{}
}

// InstallStateStore 安装状态文件（state/installation.json）
// 数据库不可用时为管理员登录提供兜底账户
type InstallStateStore struct {
	path string
	log  *zap.Logger
}

// NewInstallStateStore 创建安装状态存储
func NewInstallStateStore(stateDir string, log *zap.Logger) *InstallStateStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &InstallStateStore{
		path: filepath.Join(stateDir, installStateFileName),
		log:  log,
	}
}

// Path 状态文件路径
func (s *InstallStateStore) Path() string {
	return s.path
}

// Load 读取安装状态，异常或缺失时返回空文档
func (s *InstallStateStore) Load() Document {
	doc, err := readDocument(s.path)
	if err != nil {
		s.log.Debug("读取安装状态失败", zap.String("path", s.path), zap.Error(err))
		return Document{}
	}
	return doc
}

// Save 覆盖写入安装状态
func (s *InstallStateStore) Save(state Document) error {
	if state == nil {
		state = Document{}
	}
	return WriteJSON(s.path, state)
}

// Update 合并 database/site 的非 nil 值到 config 快照并立即保存
func (s *InstallStateStore) Update(updates Document) (Document, error) {
	state := s.Load()
	config := Document(state.Section("config"))
	if config == nil {
		config = Document{}
	}
	for _, name := range []string{"database", "site"} {
		if section, ok := asMap(updates[name]); ok && len(section) > 0 {
			mergeSection(config, name, section)
		}
	}
	state["config"] = map[string]interface{}(config)
	if err := s.Save(state); err != nil {
		return state, err
	}
	return state, nil
}

// MarkInstalled 写入安装完成标记及配置、管理员、第三方集成快照
func (s *InstallStateStore) MarkInstalled(snap Snapshot) error {
	state := s.Load()
	config := Document(state.Section("config"))
	if config == nil {
		config = Document{}
	}
	mergeSection(config, "database", snap.Database)
	mergeSection(config, "site", snap.Site)

	state["installed"] = true
	state["config"] = map[string]interface{}(config)
	state["admin"] = map[string]interface{}{
		"username": snap.Admin.Username,
		"password": snap.Admin.Password,
	}
	state["integrations"] = map[string]interface{}{
		"wechat": nonNilMap(snap.Wechat),
		"sms":    nonNilMap(snap.SMS),
	}
	return s.Save(state)
}

// Installed 是否已完成安装
func (s *InstallStateStore) Installed() bool {
	return cast.ToBool(s.Load()["installed"])
}

// Admin 安装时记录的管理员账户，未记录时 ok 为 false
func (s *InstallStateStore) Admin() (AdminCredentials, bool) {
	state := s.Load()
	username, _ := state.Lookup("admin.username")
	password, _ := state.Lookup("admin.password")
	if username == "" || password == "" {
		return AdminCredentials{}, false
	}
	return AdminCredentials{Username: username, Password: password}, true
}

func nonNilMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	return m
}
