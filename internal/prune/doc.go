// Package prune implements stale branch cleanup for local and remote branch
// scopes, including age-based classification, protected branch exclusions,
// and dry-run previews.
package prune
