package storage

import (
	"fmt"
	"path"
	"strings"
	"time"
)

var keyReplacer = strings.NewReplacer("/", "_", "\\", "_", "..", "_", " ", "_")

// Key builds the blob key for an owner's upload:
// {prefix}/{owner}/{base}_{unixMillis}{ext}. Path separators and traversal
// segments in owner and filename are replaced so the key stays in its
// owner's namespace.
func Key(prefix, owner, filename string, at time.Time) string {
	ext := path.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	if base == "" {
		base = "upload"
	}

	name := fmt.Sprintf("%s_%d%s",
		keyReplacer.Replace(base),
		at.UnixMilli(),
		keyReplacer.Replace(ext),
	)

	return path.Join(prefix, keyReplacer.Replace(owner), name)
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
