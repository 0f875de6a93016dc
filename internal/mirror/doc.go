// Package mirror keeps the local template mirror in step with its remote.
//
// The mirror is a sparse checkout of the remote's templates/ subtree. Setup
// creates it, Update moves it forward when the remote branch is a strict
// descendant of the local one, and Uninstall removes it. Local history is
// never rewritten: a diverged mirror is reported and left untouched.
//
// Version control is reached through Port, with a go-git implementation
// (GoGit) and one that shells out to the git binary (Shell).
package mirror
