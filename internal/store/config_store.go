package store

import (
	"path/filepath"

	"go.uber.org/zap"
)

const (
	configFileName       = "config.json"
	legacyConfigFileName = "server.json"
)

// MergeableSections MergeUpdates 会合并的配置段
var MergeableSections = []string{"database", "site"}

// ConfigStore 持久化配置文件（state/config.json）
type ConfigStore struct {
	path       string
	legacyPath string
	log        *zap.Logger
}

// NewConfigStore 创建配置文件存储
func NewConfigStore(stateDir string, log *zap.Logger) *ConfigStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConfigStore{
		path:       filepath.Join(stateDir, configFileName),
		legacyPath: filepath.Join(stateDir, legacyConfigFileName),
		log:        log,
	}
}

// Path 配置文件路径
func (s *ConfigStore) Path() string {
	return s.path
}

// Load 读取配置文档，读取或解析失败时返回空文档
// 主文件缺失而旧版 server.json 存在时，迁移到主文件后返回
func (s *ConfigStore) Load() Document {
	doc, err := readDocument(s.path)
	if err != nil {
		s.log.Debug("读取配置文件失败", zap.String("path", s.path), zap.Error(err))
		doc = Document{}
	}
	if len(doc) > 0 {
		return doc
	}

	legacy, err := readDocument(s.legacyPath)
	if err != nil {
		s.log.Debug("读取旧版配置文件失败", zap.String("path", s.legacyPath), zap.Error(err))
		return Document{}
	}
	if len(legacy) == 0 {
		return Document{}
	}
	if err := s.Save(legacy); err != nil {
		s.log.Warn("迁移旧版配置文件失败", zap.String("from", s.legacyPath), zap.Error(err))
	} else {
		s.log.Info("已迁移旧版配置文件", zap.String("from", s.legacyPath), zap.String("to", s.path))
	}
	return legacy
}

// Save 覆盖写入完整配置文档
func (s *ConfigStore) Save(doc Document) error {
	if doc == nil {
		doc = Document{}
	}
	return WriteJSON(s.path, doc)
}

// MergeUpdates 合并部分更新：每个配置段只覆盖传入的非 nil 键，保存并返回合并后的文档
func (s *ConfigStore) MergeUpdates(updates Document) (Document, error) {
	current := s.Load()
	MergeInto(current, updates)
	if err := s.Save(current); err != nil {
		return current, err
	}
	return current, nil
}

// MergeInto 将 updates 中的 database 与 site 段合并进 target，其他段忽略
// database 与 site 段总会存在于结果中
func MergeInto(target Document, updates Document) {
	for _, name := range MergeableSections {
		mergeSection(target, name, updates[name])
	}
}
