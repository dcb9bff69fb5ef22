package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateOrderNo 生成订单号：前缀 + 时间 + 4 位随机数
func GenerateOrderNo(prefix string) string {
	if prefix == "" {
		prefix = "EN"
	}
	timestamp := time.Now().Format("20060102150405")
	return fmt.Sprintf("%s%s%04d", prefix, timestamp, mrand.Intn(10000))
}

// GenerateNonce 生成 32 位随机串
func GenerateNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// GenerateCode 生成指定位数的数字验证码，使用 crypto/rand
func GenerateCode(digits int) (string, error) {
	ten := big.NewInt(10)
	var b strings.Builder
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("生成验证码失败: %w", err)
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
