// Package store is the output destination for fetched documents, backed by
// gocloud.dev/blob.
//
// The default destination is a local directory opened through the file
// driver, which writes plain files: a completed job is a file named exactly
// like the remote document, and existence with size > 0 is the only
// resumability signal. There is no manifest or database. Other bucket
// schemes (s3, gcs, mem) work unchanged; the drivers are linked by the
// caller.
package store
