package utils

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword 生成 bcrypt 密码哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword 校验密码
// 非 bcrypt 格式的历史数据按明文比较
func CheckPassword(hash, password string) bool {
	if !IsBcryptHash(hash) {
		return hash != "" && hash == password
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IsBcryptHash 是否 bcrypt 哈希
func IsBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}
