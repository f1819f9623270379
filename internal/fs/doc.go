// Package fs provides filesystem abstractions for testability and fault injection.
//
//   - [LocalFS]: Production implementation using standard os package
//   - [FaultyFS]: Test utility that injects open, read, write, sync, close and
//     rename failures for files matching a name pattern
//
// Production code uses fs.Default; tests swap in a FaultyFS:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".tmp-", fs.Fault{FailAfterBytes: 1024})
//
// Operations take no context.Context: local file operations are not
// interruptible at the syscall level. Slow remote storage goes through
// blobstore, which does take a context.
package fs
