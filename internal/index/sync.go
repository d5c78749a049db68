package index

import (
	"log/slog"
	"time"

	"github.com/starford/menushell/internal/checksum"
	"github.com/starford/menushell/internal/menu"
)

// Sync brings the catalog up to date with store:
//   - new/changed menus are upserted
//   - menus no longer in the store are deleted
func Sync(db MenuIndex, store *menu.Store, logger *slog.Logger) error {
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	var upserted, removed int
	now := time.Now().UTC()
	live := make(map[string]struct{}, store.Len())
	for _, n := range store.Nodes() {
		live[n.Path] = struct{}{}

		row, opts := Rows(n)
		if checksums[row.Path] == row.Checksum {
			continue
		}
		row.UpdatedAt = now
		if err := db.UpsertMenu(row, opts); err != nil {
			logger.Warn("sync: upsert failed", slog.String("path", row.Path), slog.String("error", err.Error()))
			continue
		}
		upserted++
		logger.Debug("sync: cataloged", slog.String("path", row.Path))
	}

	for p := range checksums {
		if _, ok := live[p]; ok {
			continue
		}
		if err := db.DeleteMenu(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		removed++
		logger.Debug("sync: removed stale", slog.String("path", p))
	}

	logger.Info("sync: catalog up to date",
		slog.Int("menus", len(live)),
		slog.Int("upserted", upserted),
		slog.Int("removed", removed))
	return nil
}

// Rows converts a node to its catalog rows. The checksum covers everything
// but the timestamp, so unchanged nodes are skipped on the next Sync.
func Rows(n *menu.Node) (MenuRow, []OptionRow) {
	row := MenuRow{
		Path:        n.Path,
		Parent:      n.Parent,
		Kind:        n.Kind,
		Title:       n.Title,
		Subtitle:    n.Subtitle,
		Description: n.Description,
	}
	opts := make([]OptionRow, len(n.Options))
	for i, o := range n.Options {
		opts[i] = OptionRow{
			Ordinal:    o.Ordinal,
			Label:      o.Label,
			TargetKind: o.Target.Kind.String(),
			Target:     o.Target.Ref(),
		}
	}
	// Rows are plain strings and ints; encoding cannot fail.
	row.Checksum, _ = checksum.Of(row, opts)
	return row, opts
}
