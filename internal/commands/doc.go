// Package commands implements the simulated shell commands.
//
// Every command operates on the single *vfs.FileSystem injected into NewSet
// and returns a Result: either terminal output or an EditorRequest asking the
// host to open an edit surface. Command failures are never returned as Go
// errors; they are rendered into the output text the way a real shell prints
// them.
package commands
