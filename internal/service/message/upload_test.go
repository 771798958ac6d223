package message

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"class_chat_server/internal/config"
	"class_chat_server/internal/dao/mysql/mysqltest"
	"class_chat_server/pkg/constants"
	"class_chat_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader 最小可识别的 PNG 文件头
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newFileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestSaveUpload(t *testing.T) {
	dir := t.TempDir()
	svc := &Service{conf: config.ChatConfig{MaxUploadSize: 1 << 10}, staticDir: dir}

	res, err := svc.SaveUpload(newFileHeader(t, "photo.PNG", pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "image", res.MessageType)
	assert.True(t, strings.HasPrefix(res.Url, constants.STATIC_FILE_URL_PREFIX))
	assert.True(t, strings.HasSuffix(res.AssetId, ".png"))
	_, err = os.Stat(filepath.Join(dir, res.AssetId))
	assert.NoError(t, err)

	pdf, err := svc.SaveUpload(newFileHeader(t, "notes.pdf", []byte("%PDF-1.4\n")))
	require.NoError(t, err)
	assert.Equal(t, "pdf", pdf.MessageType)

	_, err = svc.SaveUpload(newFileHeader(t, "script.sh", []byte("#!/bin/sh\necho hi\n")))
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	_, err = svc.SaveUpload(newFileHeader(t, "big.png", append(pngHeader, make([]byte, 2<<10)...)))
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	_, err = svc.SaveUpload(nil)
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestSendWithUpload_RejectedCallerLeavesNoFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SendWithUpload(ctx, outsider, SendCommand{ClassId: mysqltest.ClassId},
		newFileHeader(t, "photo.png", pngHeader))
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	_, err = f.svc.SendWithUpload(ctx, student, SendCommand{ClassId: "C404"},
		newFileHeader(t, "photo.png", pngHeader))
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))

	// 类型与附件不符，文件已保存后发送失败
	_, err = f.svc.SendWithUpload(ctx, student, SendCommand{ClassId: mysqltest.ClassId, MessageType: "bogus"},
		newFileHeader(t, "photo.png", pngHeader))
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	assert.Empty(t, listDir(t, f.svc.staticDir))
	assert.Equal(t, 0, f.publisher.count())
}

func TestSendWithUpload_RetryKeepsOneFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cmd := SendCommand{ClassId: mysqltest.ClassId, ClientMessageId: "img-1"}

	first, err := f.svc.SendWithUpload(ctx, teacher, cmd, newFileHeader(t, "photo.png", pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "image", first.Message.MessageType)

	again, err := f.svc.SendWithUpload(ctx, teacher, cmd, newFileHeader(t, "photo.png", pngHeader))
	require.NoError(t, err)
	assert.True(t, again.Duplicate)
	assert.Equal(t, first.Message.Id, again.Message.Id)

	require.NotNil(t, first.Message.MediaAssetId)
	assert.Equal(t, []string{*first.Message.MediaAssetId}, listDir(t, f.svc.staticDir))
	assert.Equal(t, 1, f.publisher.count())
}
