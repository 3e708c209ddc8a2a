package index

import (
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/starford/fitch/internal/checksum"
	"github.com/starford/fitch/internal/models"
	"github.com/starford/fitch/internal/modal"
	"github.com/starford/fitch/internal/parser"
	"github.com/starford/fitch/internal/proof"
	"github.com/starford/fitch/internal/storage"
	"github.com/starford/fitch/internal/verify"
)

// Prepared is a decoded proof file ready to be verified.
type Prepared struct {
	Summary models.ProofSummary
	// Doc is nil when the file could not be decoded; Summary.Error says why.
	Doc    *proof.Document
	Config verify.Config
}

// Prepare decodes a proof file, resolving its header against def.
func Prepare(rel string, data []byte, def verify.Config) Prepared {
	p := Prepared{Summary: models.ProofSummary{
		Path:      rel,
		Title:     strings.TrimSuffix(path.Base(rel), storage.Ext),
		System:    string(modal.None),
		Checksum:  checksum.Sum(data),
		Status:    models.StatusPending,
		UpdatedAt: time.Now().UTC(),
	}}
	fail := func(err error) Prepared {
		p.Summary.Status, p.Summary.Error = models.StatusError, err.Error()
		return p
	}

	res, err := parser.Parse(data)
	if err != nil {
		return fail(err)
	}
	if res.Header.Title != "" {
		p.Summary.Title = res.Header.Title
	}
	cfg, err := res.Header.Config(def)
	if err != nil {
		return fail(err)
	}
	if cfg.System != "" {
		p.Summary.System = string(cfg.System)
	}
	doc, err := res.Document()
	if err != nil {
		return fail(err)
	}
	p.Doc, p.Config = doc, cfg
	return p
}

// Sync walks the vault and brings the index up to date:
//   - new/changed files are decoded, verified and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, def verify.Config, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, m.Path, data, def); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteProof(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile decodes and verifies data in the calling goroutine and stores
// the result.
func indexFile(db *DB, rel string, data []byte, def verify.Config) error {
	p := Prepare(rel, data, def)
	if err := db.UpsertProof(p.Summary); err != nil {
		return err
	}
	if p.Doc == nil {
		return nil
	}
	return db.SaveReport(rel, verify.Run(rel, p.Doc, p.Config))
}
