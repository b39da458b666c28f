package db

// FileId, ProjectId and SourceRootId are stable ids allocated by a Database
// and valid for the lifetime of a workspace (spec §4.12, "Stable ids"): a
// reload preserves existing ids and only allocates new ones for genuinely
// new files, so a dependent query's cached result keyed by FileId survives
// a reload that didn't touch that file.
type FileId uint32

type ProjectId uint32

type SourceRootId uint32

// Revision is the database's logical clock: every input setter that changes
// a value bumps it by one (spec §4.12, "setters bump a revision number").
type Revision uint64
