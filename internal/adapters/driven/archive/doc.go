// Package archive implements driven.ArchiveSink backends that copy canonical
// and derived files into an external document management system.
//
// Pushes are best effort: callers log failures and carry on.
package archive
