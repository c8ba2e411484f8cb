package random

import (
	"crypto/rand"
	"math/big"
	"time"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GetNowAndLenRandomString 生成带日期前缀的随机字符串
// 格式: YYMMDD + 字母数字混合，如 241230AbCdE12
func GetNowAndLenRandomString(length int) string {
	result := make([]byte, length)
	charsetLen := big.NewInt(int64(len(charset)))
	for i := range result {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			result[i] = 'x'
			continue
		}
		result[i] = charset[n.Int64()]
	}
	return time.Now().Format("060102") + string(result)
}

// NewUuid 生成业务 UUID，prefix 区分实体类型
// U=用户, G=群组
func NewUuid(prefix string) string {
	return prefix + GetNowAndLenRandomString(11)
}
