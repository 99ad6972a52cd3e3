// Package indexer reconciles a database-backed file index with the live
// filesystem. It walks directories depth-first, compares what is on disk
// against the stored records, and inserts, updates or removes records so the
// index converges to the state of the tree. All case-sensitivity decisions
// are delegated to the casemode policy so the four filesystem/database
// combinations are handled uniformly.
package indexer

import (
	"path/filepath"
	"strings"

	"github.com/rmuit/file-indexer/internal/casemode"
	"github.com/rmuit/file-indexer/internal/config"
	"github.com/rmuit/file-indexer/internal/hash"
	"github.com/rmuit/file-indexer/internal/logger"
	"github.com/rmuit/file-indexer/internal/store"
)

// Indexer is the reconciliation engine. It is single-threaded; one
// ProcessPaths call runs to completion before the next starts.
type Indexer struct {
	cfg    *config.Config
	log    logger.Logger
	store  store.Store
	mode   casemode.Mode
	hasher *hash.FileHasher
	root   string

	// onDirExit, when set, observes the cache-balance check at every
	// directory exit. Tests use it to assert the caches exist exactly while
	// their directory is being processed.
	onDirExit func(dir string, recordsCached, subdirsCached bool)
}

// New creates an Indexer for a validated configuration.
func New(cfg *config.Config, log logger.Logger, st store.Store) (*Indexer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	hasher, err := hash.New(cfg.HashAlgo)
	if err != nil {
		return nil, err
	}
	return &Indexer{
		cfg:    cfg,
		log:    log,
		store:  st,
		mode:   cfg.Mode(),
		hasher: hasher,
		root:   filepath.Clean(cfg.AllowedBaseDirectory),
	}, nil
}

// stats are the per-run counters reported at the end of ProcessPaths.
type stats struct {
	added           int64
	updated         int64
	equal           int64
	skipped         int64
	symlinksSkipped int64
	errors          int64
}

// run holds the state owned by one ProcessPaths invocation: both caches and
// the counters. Keeping it per-call makes the "caches empty at the end"
// invariant structural.
type run struct {
	ix *Indexer
	// records maps dir key to filename key to the cached record for every
	// directory currently being processed.
	records map[string]map[string]*store.Record
	// subdirs maps dir key to the set of first-level subdirectory names
	// (original casing) appearing in stored dir values below it.
	subdirs map[string]map[string]struct{}
	stats   stats
}

func (ix *Indexer) newRun() *run {
	return &run{
		ix:      ix,
		records: make(map[string]map[string]*store.Record),
		subdirs: make(map[string]map[string]struct{}),
	}
}

// ProcessPaths validates the given paths and reconciles each of them with
// the index. It returns false without processing anything when any path
// fails validation. A non-nil error means the run was aborted: the connection
// could not be prepared, a database read failed, or an update failed so that
// the database and the engine's view of it diverged.
func (ix *Indexer) ProcessPaths(paths []string) (bool, error) {
	if err := ix.store.Prepare(); err != nil {
		ix.log.Error("Failed to prepare the database connection: {error}.",
			logger.Context{"error": err})
		return false, err
	}

	valid := make([]string, 0, len(paths))
	ok := true
	for _, path := range paths {
		abs := ix.validatePath(path, true)
		if abs == "" {
			ok = false
			continue
		}
		valid = append(valid, abs)
	}
	if !ok {
		return false, nil
	}

	r := ix.newRun()
	for _, abs := range valid {
		if err := r.processFileOrDir(abs); err != nil {
			return false, err
		}
	}
	r.report()

	if len(r.records) != 0 || len(r.subdirs) != 0 {
		ix.log.Warning("Internal caches are not empty after processing; code error?", nil)
	}
	return true, nil
}

// report summarizes the run's counters. Lines appear in a fixed order and
// only when their counter is non-zero.
func (r *run) report() {
	log := r.ix.log
	if r.stats.added > 0 {
		log.Info("Added {count} new file(s).", logger.Context{"count": r.stats.added})
	}
	if r.stats.updated > 0 {
		log.Info("Updated {count} file(s).", logger.Context{"count": r.stats.updated})
	}
	if r.stats.equal > 0 {
		log.Info("Reindexed {count} file(s) which were already indexed and equal.",
			logger.Context{"count": r.stats.equal})
	}
	if r.stats.skipped > 0 {
		log.Info("Skipped {count} already indexed file(s).", logger.Context{"count": r.stats.skipped})
	}
	if r.stats.symlinksSkipped > 0 {
		log.Info("Skipped {count} symlink(s).", logger.Context{"count": r.stats.symlinksSkipped})
	}
	if r.stats.errors > 0 {
		log.Warning("Encountered {count} indexing error(s).", logger.Context{"count": r.stats.errors})
	}
}

// relFromRoot converts an absolute path inside the allowed root to the
// "/"-separated relative form stored in the database ("" for the root).
func (ix *Indexer) relFromRoot(abs string) string {
	if abs == ix.root {
		return ""
	}
	rel := strings.TrimPrefix(abs, ix.root+string(filepath.Separator))
	return filepath.ToSlash(rel)
}

// splitRel splits a relative path into its directory part ("" for the root)
// and basename.
func splitRel(rel string) (dir, base string) {
	i := strings.LastIndex(rel, "/")
	if i < 0 {
		return "", rel
	}
	return rel[:i], rel[i+1:]
}

// joinRel joins a relative directory and a name.
func joinRel(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
