package util

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成一个标准的 UUID (v4)
func GenerateUUID() string {
	return uuid.New().String()
}

// GenerateShortUUID 生成一个不带中划线的短 UUID
func GenerateShortUUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// GenerateConnID 生成 WebSocket 连接 ID，仅用于日志追踪
func GenerateConnID() string {
	return "C" + GenerateShortUUID()[:19]
}

// GenerateTokenID 生成 JWT 的 jti
func GenerateTokenID() string {
	return GenerateUUID()
}
