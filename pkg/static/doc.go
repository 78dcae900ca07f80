// Package static serves the public asset directory from a local directory
// or an S3 bucket.
package static
