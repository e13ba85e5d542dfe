// Package vfs implements the simulated filesystem the terminal commands operate on.
//
// The filesystem is an in-memory tree of termsim.Node values rooted at "/",
// plus a current working directory. Paths given to every operation may be
// absolute, home-relative ("~", "~/x") or relative to the working directory.
//
// Failures are returned as *PathError values wrapping one of the sentinel
// errors below. PathError renders the conventional "tool: message" text a
// real shell prints, so commands can surface it verbatim.
//
// A FileSystem is owned by a single session and is not safe for concurrent
// use; callers serialize access.
package vfs
