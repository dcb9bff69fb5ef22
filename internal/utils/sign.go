package utils

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// combineValues 移除 sign 与空值，按 key 排序拼接成 key=value，最后加上 key={apiKey}
func combineValues(params map[string]interface{}, apiKey string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if k == "sign" || k == "paySign" || v == nil || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, params[k]))
	}
	parts = append(parts, "key="+apiKey)
	return strings.Join(parts, "&")
}

// md5Encryption MD5 加密并转大写
func md5Encryption(text string) string {
	hash := md5.Sum([]byte(text))
	return strings.ToUpper(hex.EncodeToString(hash[:]))
}

// WechatSign 微信支付 MD5 签名，返回待签名串和签名
func WechatSign(params map[string]interface{}, apiKey string) (string, string) {
	combined := combineValues(params, apiKey)
	return combined, md5Encryption(combined)
}

// VerifyWechatSign 校验参数中的 sign
func VerifyWechatSign(params map[string]interface{}, apiKey string) bool {
	sign, _ := params["sign"].(string)
	if sign == "" {
		return false
	}
	_, expected := WechatSign(params, apiKey)
	return strings.EqualFold(sign, expected)
}

// JSSDKSignature JS-SDK 配置签名：sha256("apiKey:url:nonce:timestamp")
func JSSDKSignature(apiKey, url, nonce string, timestamp int64) string {
	raw := fmt.Sprintf("%s:%s:%s:%d", apiKey, url, nonce, timestamp)
	hash := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(hash[:])
}
