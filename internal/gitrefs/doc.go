// Package gitrefs queries and mutates git branch references.
//
// It provides ReferenceSource implementations that list local heads or a
// remote's tracking references together with their last commit timestamps,
// and BranchDeleter implementations that remove local or remote branches.
package gitrefs
