package respond

// UploadRespond 附件保存结果
// 使用位置:
//   - internal/service/message/upload.go: SaveUpload
type UploadRespond struct {
	Url         string `json:"url"`
	AssetId     string `json:"assetId"`
	MessageType string `json:"messageType"`
}
