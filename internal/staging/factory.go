package staging

import (
	"fmt"
	"net/url"
	"path/filepath"

	"recdocs/internal/config"
	"recdocs/internal/docs"
)

// NewStagingAreaFromConfig creates a StagingArea for owner based on the config type.
// Filesystem staging areas are kept in one directory per owner.
func NewStagingAreaFromConfig(cfg config.StagingConfig, owner docs.OwnerRef) (docs.StagingArea, error) {
	switch cfg.Type {
	case "memory", "":
		return NewMemoryStagingArea(), nil
	case "filesystem":
		if cfg.StagingDir == "" {
			return nil, fmt.Errorf("filesystem staging area requires staging_dir to be set")
		}
		var cipher contentCipher
		if cfg.Encrypt {
			if cfg.KeyPath == "" {
				return nil, fmt.Errorf("encrypted staging area requires key_path to be set")
			}
			c, err := loadOrCreateIdentity(cfg.KeyPath)
			if err != nil {
				return nil, err
			}
			cipher = c
		}
		dir := filepath.Join(cfg.StagingDir, url.PathEscape(owner.String()))
		return NewFileSystemStagingArea(dir, cipher)
	default:
		return nil, fmt.Errorf("unknown staging area type: %s", cfg.Type)
	}
}
