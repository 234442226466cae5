package middleware

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// AssetFiles are the static files whose URLs carry a content hash
var AssetFiles = []string{
	"css/site.css",
	"js/app.js",
	"images/favicon.svg",
}

var (
	assetVersions   = map[string]string{}
	assetVersionsMu sync.RWMutex
)

// InitAssetVersions hashes AssetFiles under staticDir for cache busting
func InitAssetVersions(staticDir string) {
	versions := make(map[string]string, len(AssetFiles))
	for _, name := range AssetFiles {
		if version := computeFileHash(filepath.Join(staticDir, filepath.FromSlash(name))); version != "" {
			versions[name] = version
		}
	}

	assetVersionsMu.Lock()
	assetVersions = versions
	assetVersionsMu.Unlock()
	log.Printf("[INFO] Asset versions initialized: %d of %d files", len(versions), len(AssetFiles))
}

// computeFileHash returns the first 8 characters of the MD5 hash of a file
func computeFileHash(path string) string {
	file, err := os.Open(path)
	if err != nil {
		log.Printf("[WARNING] Failed to open file for hashing %s: %v", path, err)
		return ""
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		log.Printf("[WARNING] Failed to hash file %s: %v", path, err)
		return ""
	}
	return hex.EncodeToString(hash.Sum(nil))[:8]
}

// AssetVersion returns the hash for name, or "1" when unknown
func AssetVersion(name string) string {
	assetVersionsMu.RLock()
	defer assetVersionsMu.RUnlock()
	if v, ok := assetVersions[name]; ok {
		return v
	}
	return "1"
}

// AssetURL returns the versioned /static URL for name
func AssetURL(name string) string {
	return "/static/" + name + "?v=" + AssetVersion(name)
}
