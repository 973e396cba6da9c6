// Package preflight checks the filesystem locations and tools draftkit
// depends on. The doctor command runs every check and prints the results;
// nothing here changes state except creating the journal when it is missing.
package preflight
