package cobot

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/fatflowers/hubreport/pkg/dateutil"
	"github.com/fatflowers/hubreport/pkg/logctx"
	"github.com/fatflowers/hubreport/pkg/tool"
	"github.com/fatflowers/hubreport/pkg/types"
)

// DiskCache is a read-through cache of fetched snapshots, one JSON file per
// hub and date under dir. It is advisory: unreadable or corrupt entries are
// refetched and failed writes only cost a later refetch.
type DiskCache struct {
	next Source
	fs   afero.Fs
	dir  string
	log  *zap.SugaredLogger
}

func NewDiskCache(next Source, fs afero.Fs, dir string, log *zap.SugaredLogger) *DiskCache {
	return &DiskCache{next: next, fs: fs, dir: dir, log: log}
}

func (c *DiskCache) path(hub string, asOf time.Time) string {
	return filepath.Join(c.dir, filepath.Base(hub), dateutil.FormatDate(asOf)+".json")
}

func (c *DiskCache) Fetch(ctx context.Context, hub string, asOf time.Time) ([]types.MembershipSnapshot, error) {
	log := logctx.FromCtx(ctx, c.log)
	p := c.path(hub, asOf)

	if items, ok := c.read(p); ok {
		log.Debugw("memberships served from cache", "path", p, "count", len(items))
		return items, nil
	}

	items, err := c.next.Fetch(ctx, hub, asOf)
	if err != nil {
		return nil, err
	}
	if err := c.write(p, items); err != nil {
		log.Warnw("failed to write memberships cache", "path", p, "err", err)
	}
	return items, nil
}

func (c *DiskCache) read(p string) ([]types.MembershipSnapshot, bool) {
	data, err := afero.ReadFile(c.fs, p)
	if err != nil {
		return nil, false
	}
	var items []types.MembershipSnapshot
	if err := json.Unmarshal(data, &items); err != nil || items == nil {
		c.log.Warnw("ignoring corrupt memberships cache entry", "path", p, "err", err)
		return nil, false
	}
	return items, true
}

// write goes through a temp file and rename so readers never see a partial entry.
func (c *DiskCache) write(p string, items []types.MembershipSnapshot) error {
	if items == nil {
		items = []types.MembershipSnapshot{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode memberships: %w", err)
	}
	if err := c.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}
	tmp := p + ".tmp-" + tool.GenerateUUIDV7()
	if err := afero.WriteFile(c.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := c.fs.Rename(tmp, p); err != nil {
		_ = c.fs.Remove(tmp)
		return fmt.Errorf("failed to move cache file into place: %w", err)
	}
	return nil
}
