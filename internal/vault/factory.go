package vault

import (
	"context"
	"fmt"

	"recdocs/internal/config"
	"recdocs/internal/drive"
)

// NewVaultFromConfig creates a Vault implementation based on the vault config type.
func NewVaultFromConfig(ctx context.Context, cfg config.VaultConfig) (drive.Vault, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryVault("memory"), nil
	case "s3":
		return NewS3Vault(ctx, "s3", cfg)
	case "filesystem":
		if cfg.FSVaultRoot == "" {
			return nil, fmt.Errorf("filesystem vault requires fs_vault_root to be set")
		}
		return NewFileSystemVault("filesystem", cfg.FSVaultRoot)
	default:
		return nil, fmt.Errorf("unknown vault type: %s", cfg.Type)
	}
}
