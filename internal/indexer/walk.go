package indexer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rmuit/file-indexer/internal/logger"
	"github.com/rmuit/file-indexer/internal/store"
)

// processFileOrDir dispatches an absolute path to the directory or file
// processor. Symlinks are skipped unless configured otherwise; with symlink
// processing on, a link counts as whatever its target is and is indexed
// under its own name.
func (r *run) processFileOrDir(abs string) error {
	ix := r.ix
	fi, err := os.Lstat(abs)
	if err != nil {
		ix.log.Error("Cannot access '{path}': {error}.", logger.Context{"path": abs, "error": err})
		r.stats.errors++
		return nil
	}

	if fi.Mode()&os.ModeSymlink != 0 {
		if !ix.cfg.ProcessSymlinks {
			ix.log.Error("'{path}' is a symlink; this is not supported.", logger.Context{"path": abs})
			r.stats.symlinksSkipped++
			return nil
		}
		// Follow the link only to classify it; a dangling link goes through
		// the file processor, which will report the hash failure.
		if target, err := os.Stat(abs); err == nil {
			fi = target
		}
	}

	if fi.IsDir() {
		return r.processDirectory(abs)
	}
	return r.processFile(abs)
}

// processDirectory reconciles one directory: it checks the parent's cache
// for a record shadowed by this directory, reads entries and records,
// recurses, and verifies the cache balance on exit.
func (r *run) processDirectory(abs string) error {
	ix := r.ix
	rel := ix.relFromRoot(abs)
	dirKey := ix.mode.Key(rel)

	r.checkRecordMatchingDirectory(rel)

	entries, err := r.readDirectory(abs, rel)

	// Caches for this directory are released however we leave, and their
	// existence at that point is an invariant worth verifying.
	defer func() {
		_, recordsCached := r.records[dirKey]
		_, subdirsCached := r.subdirs[dirKey]
		if !recordsCached || !subdirsCached {
			ix.log.Warning("Internal caches for directory '{dir}' are missing; code error?",
				logger.Context{"dir": rel})
		}
		if ix.onDirExit != nil {
			ix.onDirExit(rel, recordsCached, subdirsCached)
		}
		delete(r.records, dirKey)
		delete(r.subdirs, dirKey)
	}()

	if err != nil {
		return err
	}

	for _, name := range entries {
		if err := r.processFileOrDir(filepath.Join(abs, name)); err != nil {
			return err
		}
	}
	return nil
}

// readDirectory reads the live entries of a directory, populates the record
// and subdirectory caches for it, and runs the two directory-scope
// consistency checks. It returns the (possibly deduplicated) entry names to
// process.
func (r *run) readDirectory(abs, rel string) ([]string, error) {
	ix := r.ix
	dirKey := ix.mode.Key(rel)

	var names []string
	dirents, err := os.ReadDir(abs)
	if err != nil {
		ix.log.Error("Cannot read directory '{path}': {error}.",
			logger.Context{"path": abs, "error": err})
		r.stats.errors++
	} else {
		for _, ent := range dirents {
			names = append(names, ent.Name())
		}
		if ix.cfg.SortDirectoryEntries {
			sort.Strings(names)
		}
	}

	// A case-sensitive filesystem can hold entries that only differ in
	// casing; a case-insensitive database cannot store both. The first in
	// enumeration order wins.
	if ix.mode.NeedsEntryDedup() {
		seen := make(map[string]string, len(names))
		deduped := names[:0]
		for _, name := range names {
			lower := strings.ToLower(name)
			if first, collision := seen[lower]; collision {
				ix.log.Warning("Directory '{dir}' contains entries for both {entry1} and {entry2}; these cannot both be indexed in a case insensitive database. Skipping the latter file.",
					logger.Context{"dir": rel, "entry1": first, "entry2": name})
				continue
			}
			seen[lower] = name
			deduped = append(deduped, name)
		}
		names = deduped
	}

	onDisk := make(map[string]bool, len(names))
	for _, name := range names {
		onDisk[ix.mode.Key(name)] = true
	}

	records, err := ix.store.FetchDirRecords(rel)
	if err != nil {
		return nil, err
	}
	if ix.mode.NeedsRecordDedup() {
		records = r.dedupRecords(records, rel, names)
	}
	recordsCache := make(map[string]*store.Record, len(records))
	for _, rec := range records {
		recordsCache[ix.mode.Key(rec.Filename)] = rec
	}
	r.records[dirKey] = recordsCache

	subdirNames, err := ix.store.FetchSubdirNames(rel)
	if err != nil {
		return nil, err
	}
	subdirsCache := make(map[string]struct{}, len(subdirNames))
	for _, name := range subdirNames {
		subdirsCache[name] = struct{}{}
	}
	r.subdirs[dirKey] = subdirsCache

	r.checkNonexistentFiles(rel, recordsCache, onDisk)
	r.checkNonexistentSubdirs(rel, subdirsCache, onDisk)

	return names, nil
}

// checkNonexistentFiles is the check for indexed files that no longer exist
// in this directory. Names occupied by a directory on disk are left to the
// directory check instead.
func (r *run) checkNonexistentFiles(rel string, recordsCache map[string]*store.Record, onDisk map[string]bool) {
	ix := r.ix

	var missing []string
	for key, rec := range recordsCache {
		if !onDisk[key] {
			missing = append(missing, rec.Filename)
		}
	}
	if len(missing) == 0 {
		return
	}
	sort.Strings(missing)
	list := strings.Join(missing, ", ")

	if !ix.cfg.RemoveNonexistentFromIndex {
		ix.log.Warning("Indexed records exist for the following nonexistent files in directory '{dir}': {files}.",
			logger.Context{"dir": rel, "files": list})
		return
	}

	n, err := ix.store.DeleteFilesInDir(rel, missing)
	if err != nil {
		ix.log.Error("Failed to remove indexed records in directory '{dir}': {error}.",
			logger.Context{"dir": rel, "error": err})
		r.stats.errors++
		return
	}
	ix.log.Info("Removed {count} indexed record(s) for nonexistent files in directory '{dir}': {files}.",
		logger.Context{"count": n, "dir": rel, "files": list})
	for key := range recordsCache {
		if !onDisk[key] {
			delete(recordsCache, key)
		}
	}
}

// checkNonexistentSubdirs is the check for indexed records in
// subdirectories that no longer exist on disk. A name now occupied by a
// file is left to the file processor's check. When matching is
// case-insensitive, one subtree delete covers every casing of a name; the
// logged name is the lexicographically smallest casing.
func (r *run) checkNonexistentSubdirs(rel string, subdirsCache map[string]struct{}, onDisk map[string]bool) {
	ix := r.ix

	var missing []string
	for name := range subdirsCache {
		if !onDisk[ix.mode.Key(name)] {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return
	}
	sort.Strings(missing)

	if !ix.cfg.RemoveNonexistentFromIndex {
		ix.log.Warning("Indexed records exist for files in the following nonexistent subdirectories of directory '{dir}': {subdirs}.",
			logger.Context{"dir": rel, "subdirs": strings.Join(missing, ", ")})
		return
	}

	handled := make(map[string]bool, len(missing))
	for _, name := range missing {
		key := ix.mode.Key(name)
		if handled[key] {
			continue
		}
		handled[key] = true

		subdir := joinRel(rel, name)
		n, err := ix.store.DeleteSubtree(subdir)
		if err != nil {
			ix.log.Error("Failed to remove indexed records below '{dir}': {error}.",
				logger.Context{"dir": subdir, "error": err})
			r.stats.errors++
			continue
		}
		ix.log.Info("Removed {count} indexed record(s) for file(s) in (subdirectories of) nonexistent directory '{dir}'.",
			logger.Context{"count": n, "dir": subdir})
		for cached := range subdirsCache {
			if ix.mode.Key(cached) == key {
				delete(subdirsCache, cached)
			}
		}
	}
}

// checkRecordMatchingDirectory is the check for an indexed file record whose
// name is now occupied by a directory. It relies on the parent's record
// cache, so it is a no-op when the directory is processed on its own.
func (r *run) checkRecordMatchingDirectory(rel string) {
	ix := r.ix
	if rel == "" {
		return
	}
	parentRel, base := splitRel(rel)
	recordsCache, walked := r.records[ix.mode.Key(parentRel)]
	if !walked {
		return
	}
	fileKey := ix.mode.Key(base)
	rec, found := recordsCache[fileKey]
	if !found {
		return
	}

	// The logged casing is the one stored in the record, which may differ
	// from the directory's actual casing.
	ix.log.Warning("Indexed record exists for file '{file}', which actually matches a directory.",
		logger.Context{"file": rec.Path()})
	if !ix.cfg.RemoveNonexistentFromIndex {
		return
	}

	n, err := ix.store.DeleteByFid(rec.Fid)
	if err != nil {
		ix.log.Error("Failed to remove indexed record for '{file}': {error}.",
			logger.Context{"file": rec.Path(), "error": err})
		r.stats.errors++
		return
	}
	if n != 1 {
		ix.log.Warning("Received strange value {count} while trying to remove indexed record for file '{file}' which actually matches a directory.",
			logger.Context{"count": n, "file": rec.Path()})
	}
	ix.log.Info("Removed indexed record for file '{file}' which actually matches a directory.",
		logger.Context{"file": rec.Path()})
	delete(recordsCache, fileKey)
}
