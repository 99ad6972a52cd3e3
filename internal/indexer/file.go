package indexer

import (
	"strings"

	"github.com/rmuit/file-indexer/internal/ferrors"
	"github.com/rmuit/file-indexer/internal/logger"
	"github.com/rmuit/file-indexer/internal/store"
)

// processFile reconciles one file with the index: it checks for records
// shadowed by the file, then hashes and inserts/updates as needed, or skips
// when the cached record makes that unnecessary.
func (r *run) processFile(abs string) error {
	ix := r.ix
	rel := ix.relFromRoot(abs)
	dir, base := splitRel(rel)
	dirKey := ix.mode.Key(dir)
	fileKey := ix.mode.Key(base)

	r.checkRecordsUnderFile(rel, dirKey, base)

	recordsCache, cached := r.records[dirKey]
	provisional := false
	if !cached {
		// The file is processed outside a walked parent; fetch just its own
		// row(s) and cache them for the duration of this file.
		records, err := ix.store.FetchOne(dir, base)
		if err != nil {
			return err
		}
		if ix.mode.NeedsRecordDedup() && len(records) > 1 {
			records = r.dedupRecords(records, dir, []string{base})
		}
		recordsCache = make(map[string]*store.Record, 1)
		for _, rec := range records {
			recordsCache[ix.mode.Key(rec.Filename)] = rec
		}
		r.records[dirKey] = recordsCache
		provisional = true
	}
	defer func() {
		if provisional {
			delete(r.records, dirKey)
		}
	}()

	cachedRec := recordsCache[fileKey]
	if cachedRec == nil || ix.cfg.ReindexAll {
		digest, err := ix.hasher.HashFile(abs)
		if err != nil {
			ix.log.Error("{algo}_file error processing {path}!?",
				logger.Context{"algo": ix.hasher.Algo(), "path": abs})
			r.stats.errors++
			return nil
		}

		rec := &store.Record{Dir: dir, Filename: base, Values: make(map[string]string)}
		if cachedRec != nil {
			// Carry over any extra cached fields; only the hash is
			// recomputed here.
			for field, value := range cachedRec.Values {
				rec.Values[field] = value
			}
		}
		rec.Values[ix.cfg.HashField()] = digest

		switch {
		case cachedRec == nil:
			fid, err := ix.store.Insert(rec)
			if err != nil {
				ix.log.Error("Failed to insert record for '{file}': {error}. If this is a uniqueness violation, the case_insensitive_database setting may not match the actual database collation.",
					logger.Context{"file": rel, "error": err})
				r.stats.errors++
				return nil
			}
			rec.Fid = fid
			recordsCache[fileKey] = rec
			r.stats.added++
		case !r.recordsEqual(rec, cachedRec):
			if err := ix.store.Update(cachedRec.Fid, rec); err != nil {
				// A failed insert leaves an incomplete but consistent index;
				// a failed update means our view and the database disagree.
				return ferrors.NewFatalInconsistency(dir, base,
					"failed to update record for '"+rel+"'", err)
			}
			rec.Fid = cachedRec.Fid
			recordsCache[fileKey] = rec
			r.stats.updated++
		default:
			r.stats.equal++
		}
		return nil
	}

	r.stats.skipped++
	return nil
}

// recordsEqual compares a freshly computed record against the cached one.
// Differing field values make them unequal; so does a dir/filename casing
// difference during a full reindex, which triggers a re-casing update.
func (r *run) recordsEqual(fresh, cached *store.Record) bool {
	for field, value := range fresh.Values {
		if cached.Values[field] != value {
			return false
		}
	}
	if r.ix.cfg.ReindexAll && (fresh.Dir != cached.Dir || fresh.Filename != cached.Filename) {
		return false
	}
	return true
}

// checkRecordsUnderFile is the check for indexed records below a path that
// is now a file. It relies on the parent's subdirectory cache, so it is a
// no-op when the file is processed on its own.
func (r *run) checkRecordsUnderFile(rel, parentDirKey, base string) {
	ix := r.ix
	subdirsCache, walked := r.subdirs[parentDirKey]
	if !walked {
		return
	}

	var shadowed []string
	for name := range subdirsCache {
		if ix.mode.Equal(name, base) {
			shadowed = append(shadowed, name)
		}
	}
	if len(shadowed) == 0 {
		return
	}

	ix.log.Warning("Indexed records exist with '{file}' (which is a file) as nonexistent base directory.",
		logger.Context{"file": rel})
	if !ix.cfg.RemoveNonexistentFromIndex {
		return
	}

	// One case-aware subtree delete covers every casing of the name.
	n, err := ix.store.DeleteSubtree(rel)
	if err != nil {
		ix.log.Error("Failed to remove indexed records below '{dir}': {error}.",
			logger.Context{"dir": rel, "error": err})
		r.stats.errors++
		return
	}
	ix.log.Info("Removed {count} indexed record(s) with '{file}' (which is a file) as nonexistent base directory.",
		logger.Context{"count": n, "file": rel})
	for _, name := range shadowed {
		delete(subdirsCache, name)
	}
}

// dedupRecords resolves database rows that collide under case-insensitive
// matching. The row whose dir and filename exactly match the on-disk casing
// wins; with no exact match the first row wins. Losing rows are deleted
// unconditionally, because they actively corrupt later equality checks.
func (r *run) dedupRecords(records []*store.Record, onDiskDir string, onDiskNames []string) []*store.Record {
	ix := r.ix
	names := make(map[string]bool, len(onDiskNames))
	for _, name := range onDiskNames {
		names[name] = true
	}
	matchesDisk := func(rec *store.Record) bool {
		return rec.Dir == onDiskDir && names[rec.Filename]
	}

	kept := make(map[string]*store.Record, len(records))
	var order []string
	for _, rec := range records {
		key := strings.ToLower(rec.Filename)
		prev, collision := kept[key]
		if !collision {
			kept[key] = rec
			order = append(order, key)
			continue
		}

		keep, drop := prev, rec
		if !matchesDisk(prev) && matchesDisk(rec) {
			keep, drop = rec, prev
		}
		if _, err := ix.store.DeleteByFid(drop.Fid); err != nil {
			ix.log.Error("Failed to remove duplicate record for '{file}': {error}.",
				logger.Context{"file": drop.Path(), "error": err})
			r.stats.errors++
		} else {
			ix.log.Warning("Removed record for '{removed}' because another record for '{kept}' exists. These records are duplicate because the file system is apparently case insensitive.",
				logger.Context{"removed": drop.Path(), "kept": keep.Path()})
		}
		kept[key] = keep
	}

	result := make([]*store.Record, 0, len(order))
	for _, key := range order {
		result = append(result, kept[key])
	}
	return result
}
