package tool

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/moyoez/moneylens-go/types"
)

// GetFileInfoFromPath reads the local file info used for validation and upload.
// The MIME type is sniffed from the content; the extension is only a fallback.
func GetFileInfoFromPath(filePath string) (*types.LocalFile, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file")
	}

	fileType := ""
	if mt, err := mimetype.DetectFile(filePath); err == nil {
		fileType = mt.String()
		if mt.Is("application/octet-stream") {
			fileType = ""
		}
	} else {
		DefaultLogger.Debugf("Failed to sniff %s: %v", filePath, err)
	}
	if fileType == "" {
		fileType = mime.TypeByExtension(filepath.Ext(filePath))
	}
	if fileType == "" {
		fileType = "application/octet-stream" // Default MIME type
	}
	if mediaType, _, err := mime.ParseMediaType(fileType); err == nil {
		fileType = mediaType
	}

	return &types.LocalFile{
		Path:     filePath,
		FileName: filepath.Base(filePath),
		Size:     fileInfo.Size(),
		FileType: fileType,
	}, nil
}
