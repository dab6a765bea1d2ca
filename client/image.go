package client

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
)

var mimeByExt = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"heic": "image/heic",
}

// imageExt derives the storage extension from the picked file's name,
// defaulting to jpeg when it cannot be determined.
func imageExt(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if _, ok := mimeByExt[ext]; !ok {
		return "jpeg"
	}
	return ext
}

// imagePath builds the storage path for an upload: owner ID plus the
// current time plus the extension.
func imagePath(ownerID, filename string) string {
	return fmt.Sprintf("%s/%d.%s", ownerID, time.Now().UnixMilli(), imageExt(filename))
}

// storagePath extracts the object path from a public storage URL, so a
// replaced image can be deleted by path. ok is false for URLs that do
// not point into our storage.
func storagePath(publicURL string) (string, bool) {
	u, err := url.Parse(publicURL)
	if err != nil {
		return "", false
	}
	const prefix = "/storage/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", false
	}
	objectPath := strings.TrimPrefix(u.Path, prefix)
	if objectPath == "" {
		return "", false
	}
	return objectPath, true
}

// replaceImage uploads new image bytes, deleting the object behind the
// previous URL first when there is one. A failed deletion aborts the
// replacement before any upload happens. It returns the public URL and
// storage path of the new object.
func replaceImage(ctx context.Context, gw Gateway, ownerID, filename string, data []byte, previousURL *string) (string, string, error) {
	if previousURL != nil {
		if old, ok := storagePath(*previousURL); ok {
			if err := gw.DeleteImage(ctx, old); err != nil {
				return "", "", fmt.Errorf("delete previous image: %w", err)
			}
		}
	}

	objectPath := imagePath(ownerID, filename)
	publicURL, err := gw.UploadImage(ctx, data, objectPath, mimeByExt[imageExt(filename)])
	if err != nil {
		return "", "", fmt.Errorf("upload image: %w", err)
	}
	return publicURL, objectPath, nil
}
