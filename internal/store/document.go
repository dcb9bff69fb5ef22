package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
)

// Document 磁盘上的 JSON 配置文档，顶层为配置段
type Document map[string]interface{}

// Section 返回指定配置段，不存在或类型不符时返回 nil
func (d Document) Section(name string) map[string]interface{} {
	m, _ := asMap(d[name])
	return m
}

// Lookup 按 "section.key" 路径读取标量值，nil 与空字符串视为不存在
func (d Document) Lookup(path string) (string, bool) {
	parts := strings.Split(path, ".")
	var cur interface{} = map[string]interface{}(d)
	for _, p := range parts {
		m, ok := asMap(cur)
		if !ok {
			return "", false
		}
		cur, ok = m[p]
		if !ok || cur == nil {
			return "", false
		}
	}
	s, err := cast.ToStringE(cur)
	if err != nil || s == "" {
		return "", false
	}
	return s, true
}

// Clone 深拷贝文档（通过 JSON 往返）
func (d Document) Clone() Document {
	out := Document{}
	data, err := json.Marshal(d)
	if err != nil {
		return out
	}
	_ = json.Unmarshal(data, &out)
	return out
}

// asMap 兼容 Document 与 map[string]interface{} 两种嵌套形式
func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case Document:
		return map[string]interface{}(m), true
	case map[string]string:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out, true
	}
	return nil, false
}

// mergeSection 将 incoming 中非 nil 的键浅合并到 base[name]，返回合并后的段
func mergeSection(base Document, name string, incoming interface{}) map[string]interface{} {
	current, ok := asMap(base[name])
	if !ok {
		current = map[string]interface{}{}
	}
	if values, ok := asMap(incoming); ok {
		for k, v := range values {
			if v == nil {
				continue
			}
			current[k] = v
		}
	}
	base[name] = current
	return current
}

// readDocument 读取 JSON 文档，文件不存在返回空文档和 nil
func readDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, nil
		}
		return Document{}, err
	}
	doc := Document{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("解析 %s 失败: %w", path, err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// WriteJSON 以缩进格式写入 JSON：先写临时文件再重命名，目录不存在时自动创建
func WriteJSON(path string, v interface{}) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化 %s 失败: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// PermissionCommand 返回修复目录写权限的命令
func PermissionCommand(dir string) string {
	return "chmod -R 775 " + dir
}
