// Package message_type_enum 定义聊天消息类型及 MIME 推断规则
package message_type_enum

import (
	"path"
	"strings"
)

const (
	Text  = "text"
	Image = "image"
	Pdf   = "pdf"
	Audio = "audio"
)

// Valid 判断消息类型是否合法
func Valid(t string) bool {
	switch t {
	case Text, Image, Pdf, Audio:
		return true
	}
	return false
}

// FromMime 根据 MIME 类型推断消息类型，不支持的类型返回空字符串
func FromMime(mime string) string {
	// 去掉 "; charset=..." 之类的参数
	mime = strings.ToLower(strings.TrimSpace(strings.SplitN(mime, ";", 2)[0]))
	switch {
	case strings.HasPrefix(mime, "image/"):
		return Image
	case mime == "application/pdf":
		return Pdf
	case strings.HasPrefix(mime, "audio/"):
		return Audio
	}
	return ""
}

var extTypes = map[string]string{
	".jpg":  Image,
	".jpeg": Image,
	".png":  Image,
	".gif":  Image,
	".webp": Image,
	".pdf":  Pdf,
	".mp3":  Audio,
	".m4a":  Audio,
	".aac":  Audio,
	".wav":  Audio,
	".ogg":  Audio,
	".webm": Audio,
}

// FromExt 根据文件扩展名推断消息类型，url 中的查询参数会被忽略
func FromExt(name string) string {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	return extTypes[strings.ToLower(path.Ext(name))]
}
