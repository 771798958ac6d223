package message

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"class_chat_server/internal/dto/respond"
	"class_chat_server/internal/service/access"
	"class_chat_server/pkg/constants"
	"class_chat_server/pkg/enum/message_type_enum"
	"class_chat_server/pkg/errorx"
	"class_chat_server/pkg/util/random"

	"go.uber.org/zap"
)

// SaveUpload 保存聊天附件到静态目录
// 通过文件头 512 字节识别 MIME（识别不出时退回扩展名），只接受图片、PDF、音频
func (s *Service) SaveUpload(fileHeader *multipart.FileHeader) (*respond.UploadRespond, error) {
	if fileHeader == nil {
		return nil, errorx.New(errorx.CodeInvalidParam, "no file uploaded")
	}
	if fileHeader.Size > s.conf.MaxUploadSize {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "file too large, max %d bytes", s.conf.MaxUploadSize)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeInvalidParam, "cannot open uploaded file")
	}
	defer src.Close()

	// 1. 读取前 512 字节做 Magic Bytes 识别
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		return nil, errorx.Wrap(err, errorx.CodeInvalidParam, "cannot read uploaded file")
	}
	contentType := http.DetectContentType(buffer[:n])
	messageType := message_type_enum.FromMime(contentType)
	if messageType == "" {
		messageType = message_type_enum.FromExt(fileHeader.Filename)
	}
	if messageType == "" {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "unsupported file type: %s", contentType)
	}

	// 重置文件指针
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	// 2. 生成唯一文件名
	if err := os.MkdirAll(s.staticDir, 0o755); err != nil {
		return nil, err
	}
	fileName := random.FileName(filepath.Ext(fileHeader.Filename))
	dst := filepath.Join(s.staticDir, fileName)

	// 3. 保存文件
	out, err := os.Create(dst)
	if err != nil {
		return nil, err
	}
	defer out.Close()
	if _, err := io.Copy(out, io.LimitReader(src, s.conf.MaxUploadSize+1)); err != nil {
		_ = os.Remove(dst)
		return nil, err
	}

	zap.L().Info("upload chat file success", zap.String("filename", fileName), zap.String("mime", contentType), zap.Int64("size", fileHeader.Size))
	return &respond.UploadRespond{
		Url:         constants.STATIC_FILE_URL_PREFIX + fileName,
		AssetId:     fileName,
		MessageType: messageType,
	}, nil
}

// SendWithUpload 先鉴权再落盘附件，发送失败或命中幂等重试时删除本次保存的文件
func (s *Service) SendWithUpload(ctx context.Context, id *access.Identity, cmd SendCommand, fileHeader *multipart.FileHeader) (*respond.SendMessageRespond, error) {
	if _, err := s.access.Authorize(ctx, id, cmd.ClassId, access.ActionSend); err != nil {
		return nil, err
	}

	upload, err := s.SaveUpload(fileHeader)
	if err != nil {
		return nil, err
	}
	cmd.MediaUrl = upload.Url
	cmd.MediaAssetId = upload.AssetId
	if cmd.MessageType == "" {
		cmd.MessageType = upload.MessageType
	}

	res, err := s.Send(ctx, id, cmd)
	if err != nil || res.Duplicate {
		s.removeUpload(upload.AssetId)
	}
	return res, err
}

func (s *Service) removeUpload(assetId string) {
	if err := os.Remove(filepath.Join(s.staticDir, assetId)); err != nil && !os.IsNotExist(err) {
		zap.L().Warn("删除附件失败", zap.String("asset_id", assetId), zap.Error(err))
	}
}
