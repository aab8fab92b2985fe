// Package plan computes the outstanding work set for a download run.
//
// Remote documents are numbered sequentially and named by a fixed scheme
// (prefix + zero-padded ID + extension). Given an ID range and the set of
// IDs already present in the output store, [Outstanding] emits one immutable
// [Job] per missing ID, in ascending order. A job is never re-enqueued
// within a run; cross-run retry works by re-invoking the program against the
// same output, which recomputes the set from what is actually on disk.
package plan
