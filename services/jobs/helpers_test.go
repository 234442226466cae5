package jobs

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

func bytesReader(s string) io.Reader {
	return strings.NewReader(s)
}

func chtimes(baseDir, key string, ts time.Time) error {
	return os.Chtimes(filepath.Join(baseDir, filepath.FromSlash(key)), ts, ts)
}
