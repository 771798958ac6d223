// Package random 生成上传附件等场景使用的随机字符串
package random

import (
	"crypto/rand"
	"strings"
	"time"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// maxExtLen 扩展名（含点）的最大长度
const maxExtLen = 8

// GetNowAndLenRandomString 生成带日期前缀的随机字符串
// 格式: YYMMDD + length 位字母数字，如 241230AbCdE12345
func GetNowAndLenRandomString(length int) string {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		for i := range buf {
			buf[i] = 'x'
		}
		return time.Now().Format("060102") + string(buf)
	}
	for i, b := range buf {
		// 256 % 62 带来的偏差对文件名无影响
		buf[i] = charset[int(b)%len(charset)]
	}
	return time.Now().Format("060102") + string(buf)
}

// FileName 生成附件文件名，只保留小写字母数字组成的扩展名
// 用户提供的扩展名不会带来路径分隔符
func FileName(ext string) string {
	return GetNowAndLenRandomString(10) + cleanExt(ext)
}

func cleanExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	var b strings.Builder
	for _, r := range ext {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	clean := "." + b.String()
	if len(clean) > maxExtLen {
		clean = clean[:maxExtLen]
	}
	return clean
}
