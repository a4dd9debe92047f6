package yophone

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// MaxFileSize is the largest attachment the API accepts.
const MaxFileSize = 50 << 20

var (
	// ErrFileNotFound is returned when an attachment path does not exist.
	ErrFileNotFound = errors.New("yophone: file does not exist")
	// ErrFileTooLarge is returned when an attachment exceeds MaxFileSize.
	ErrFileTooLarge = errors.New("yophone: file exceeds 50MB limit")
)

type attachment struct {
	name     string
	mimeType string
	content  []byte
}

// SendFiles uploads files to chatID with an optional caption. All paths are
// checked and read before anything is sent.
func (c *Client) SendFiles(ctx context.Context, chatID string, paths []string, caption string) (Result, error) {
	files := make([]attachment, 0, len(paths))
	for _, path := range paths {
		a, err := readAttachment(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sendMessageEndpoint, err)
		}
		files = append(files, a)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := writeUploadForm(w, chatID, caption, files); err != nil {
		return nil, fmt.Errorf("%s: build form: %w", sendMessageEndpoint, err)
	}

	var result Result
	if err := c.send(ctx, sendMessageEndpoint, &body, w.FormDataContentType(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func readAttachment(path string) (attachment, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return attachment{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if err != nil {
		return attachment{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return attachment{}, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxFileSize {
		return attachment{}, fmt.Errorf("%w: %s", ErrFileTooLarge, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return attachment{}, fmt.Errorf("read %s: %w", path, err)
	}

	return attachment{
		name:     filepath.Base(path),
		mimeType: mimetype.Detect(content).String(),
		content:  content,
	}, nil
}

func writeUploadForm(w *multipart.Writer, chatID, caption string, files []attachment) error {
	if err := w.WriteField("to", chatID); err != nil {
		return err
	}
	if err := w.WriteField("text", caption); err != nil {
		return err
	}

	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.name))
		header.Set("Content-Type", f.mimeType)

		part, err := w.CreatePart(header)
		if err != nil {
			return err
		}
		if _, err := part.Write(f.content); err != nil {
			return err
		}
	}

	return w.Close()
}
