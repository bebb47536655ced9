// internal/storage/cleanup.go
package storage

import (
	"context"
	"log"
	"path"
	"path/filepath"
	"strings"
)

// DeleteArtifacts removes analysis segment artifacts, best-effort. Manifest
// entries are deleted first (targeted), then any remaining file under dir
// whose name matches prefix, covering runs that never recorded a manifest.
// Missing files are not errors; other failures are logged and swallowed.
func DeleteArtifacts(ctx context.Context, store Store, dir string, manifest []string, prefix string) {
	for _, entry := range manifest {
		name := path.Base(filepath.ToSlash(entry))
		if name == "" || name == "." || name == "/" {
			continue
		}
		if _, err := store.Delete(ctx, dir, name); err != nil {
			log.Printf("failed to delete artifact %s/%s: %v", dir, name, err)
		}
	}

	if prefix == "" {
		return
	}
	names, err := store.List(ctx, dir)
	if err != nil {
		log.Printf("failed to list artifact directory %s: %v", dir, err)
		return
	}
	for _, name := range names {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if _, err := store.Delete(ctx, dir, name); err != nil {
			log.Printf("failed to delete artifact %s/%s: %v", dir, name, err)
		}
	}
}
