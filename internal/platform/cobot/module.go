package cobot

import (
	"github.com/spf13/afero"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/fatflowers/hubreport/pkg/config"
)

// NewSource returns the HTTP client, behind the disk cache when a dump folder is set.
func NewSource(cfg *cfgpkg.Config, log *zap.SugaredLogger) Source {
	client := NewClient(cfg, log)
	if cfg.Cobot.DumpFolder == "" {
		return client
	}
	return NewDiskCache(client, afero.NewOsFs(), cfg.Cobot.DumpFolder, log)
}

var Module = fx.Options(
	fx.Provide(NewSource),
)
