package cache

// On-disk layout of one cache entry pod:
//
//	<root>/repos/<key>/
//	  git/                the bare or mirror clone
//	  .git-cache-lock     per-entry lock file, created on first use and
//	                      never deleted afterwards
//	  .git-cache-meta     entry metadata
//	  .git-cache-used     marker; mtime records the last served clone
//	  .git-cache-tmp-*    transient populate directories
const (
	reposDirName   = "repos"
	repoDirName    = "git"
	lockFileName   = ".git-cache-lock"
	metaFileName   = ".git-cache-meta"
	usedMarkerName = ".git-cache-used"
	tmpDirPrefix   = ".git-cache-tmp-"
	tmpDirPattern  = ".git-cache-tmp-*"
)
