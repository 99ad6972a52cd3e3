package indexer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rmuit/file-indexer/internal/ferrors"
	"github.com/rmuit/file-indexer/internal/logger"
)

// validatePath normalizes a user-supplied path to absolute canonical form
// and enforces containment in the allowed root. Failures are logged once at
// error level and reported as "" rather than an error value.
func (ix *Indexer) validatePath(input string, checkExistence bool) string {
	abs, err := ix.validate(input, checkExistence)
	if err == nil {
		return abs
	}

	ctx := logger.Context{"path": input}
	switch err.Reason {
	case ferrors.EmptyPath:
		ix.log.Error("'{path}' is not a valid path.", ctx)
	case ferrors.NotADirectory:
		ix.log.Error("'{path}' is not a directory.", ctx)
	case ferrors.NotInAllowedBase:
		ctx["base"] = ix.root
		ix.log.Error("'{path}' is not within the allowed base directory '{base}'.", ctx)
	default:
		ix.log.Error("'{path}' does not exist.", ctx)
	}
	return ""
}

// validate resolves input against the base directory, canonicalizes the
// parent while keeping the basename as given (a symlink is indexed under its
// own name, not its target), and checks containment and existence.
func (ix *Indexer) validate(input string, checkExistence bool) (string, *ferrors.PathError) {
	if input == "" {
		return "", ferrors.NewPathError(input, ferrors.EmptyPath, "empty path")
	}

	hadTrailingSlash := len(input) > 1 && strings.HasSuffix(input, "/")

	path := input
	if !filepath.IsAbs(path) {
		base, err := ix.cfg.ResolveBaseDirectory()
		if err != nil {
			return "", ferrors.NewPathError(input, ferrors.NotFound, err.Error())
		}
		resolved := filepath.Join(base, path)
		// "." and "./x" are unsurprising; other relative forms get a debug
		// line showing what they resolved to.
		if path != "." && !strings.HasPrefix(path, "./") {
			ix.log.Debug("Processing '{path}' as '{resolved}'.",
				logger.Context{"path": input, "resolved": resolved})
		}
		path = resolved
	}
	path = filepath.Clean(path)

	parent := filepath.Dir(path)
	resolvedParent, err := filepath.EvalSymlinks(parent)
	if err != nil {
		return "", ferrors.NewPathError(input, ferrors.NotFound, "parent does not exist")
	}
	abs := filepath.Join(resolvedParent, filepath.Base(path))

	if abs != ix.root && !strings.HasPrefix(abs, ix.root+string(filepath.Separator)) {
		return "", ferrors.NewPathError(input, ferrors.NotInAllowedBase,
			"path is outside the allowed base directory")
	}

	if checkExistence {
		if _, err := os.Lstat(abs); err != nil {
			return "", ferrors.NewPathError(input, ferrors.NotFound, "path does not exist")
		}
	} else {
		fi, err := os.Stat(resolvedParent)
		if err != nil || !fi.IsDir() {
			return "", ferrors.NewPathError(input, ferrors.NotFound, "parent is not a directory")
		}
	}

	if hadTrailingSlash {
		fi, err := os.Stat(abs)
		if err == nil && !fi.IsDir() {
			return "", ferrors.NewPathError(input, ferrors.NotADirectory,
				"trailing slash on a non-directory")
		}
	}

	return abs, nil
}
