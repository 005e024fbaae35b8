// Package registry manages the local mirror of the shared skill registry.
//
// The mirror is a working copy of the registry repository. Every published
// skill lives in its own directory under packages/, keyed by skill id, and
// is replaced wholesale on republish. The mirror is freshened before each
// read or write and is never trusted to be clean: an interrupted rebase or
// a directory that is not a repository is detected and repaired, or
// reported, before anything else happens.
//
// There is no locking. Concurrent publishers against the same remote are
// reconciled by a single rebase-and-retry cycle; a second collision fails
// the publish. Two local invocations sharing one mirror directory are not
// coordinated at all.
package registry
