package setting

import "context"

// SettingRepository reads configuration rows. Settings are mutated by
// administrative flows elsewhere; this core only reads them.
type SettingRepository interface {
	// ListActive returns every active setting
	ListActive(ctx context.Context) ([]Setting, error)

	// GetActive returns the active setting for key or ErrSettingNotFound
	GetActive(ctx context.Context, key string) (Setting, error)
}
