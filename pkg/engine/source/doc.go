// Package source provides rule set sources for the evaluation engine.
//
// FileSource loads GCL rule files from a file or directory with per-file
// error isolation: one malformed file never prevents loading of the rest.
// MemorySource serves rule sets from memory for tests and embedding.
// Watcher re-triggers evaluation when rule or template files change on
// disk, with debouncing to absorb editor write bursts.
package source
