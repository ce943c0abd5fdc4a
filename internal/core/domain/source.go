package domain

// SourceArchive is the fetched, pinned Chromium source tarball together with
// its hashes file. Pipeline-local; never persisted.
type SourceArchive struct {
	Version     string
	ArchivePath string
	HashesPath  string
	Verified    bool
}
