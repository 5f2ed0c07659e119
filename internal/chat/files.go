package chat

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/matheus3301/livechat/internal/store"
)

// MaxFileSize bounds attachments and status media.
const MaxFileSize = 8 << 20

// EncodeFile reads the file at path into a data URL. The MIME type comes
// from the extension, falling back to content sniffing.
func EncodeFile(path string) (dataURL, mimeType string, err error) {
	const op = "chat.EncodeFile"

	info, err := os.Stat(path)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	if info.Size() > MaxFileSize {
		return "", "", fmt.Errorf("%s: %s is larger than %d bytes", op, path, MaxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	mimeType = mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), mimeType, nil
}

// MediaKindOf is the status kind for a MIME type: video for video/*, image
// otherwise.
func MediaKindOf(mimeType string) store.MediaKind {
	if strings.HasPrefix(mimeType, "video/") {
		return store.MediaVideo
	}
	return store.MediaImage
}

// MessageTypeOf is the message type an attachment of mimeType is sent as.
func MessageTypeOf(mimeType string) store.MessageType {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return store.TypeImage
	case strings.HasPrefix(mimeType, "audio/"):
		return store.TypeVoice
	}
	return store.TypeFile
}

// AttachFile encodes the file at path as an attachment.
func AttachFile(path string) (*Attachment, error) {
	url, mimeType, err := EncodeFile(path)
	if err != nil {
		return nil, err
	}
	return &Attachment{Kind: MessageTypeOf(mimeType), Name: filepath.Base(path), URL: url}, nil
}
