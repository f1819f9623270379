// Package mmap provides read-only memory-mapped file access for zero-copy
// reads of local blobs.
//
//	m, err := mmap.Open("scratch.bin")
//	if err != nil { ... }
//	defer m.Close()
//	data := m.Bytes()
//
// Unix platforms use mmap(2) via golang.org/x/sys/unix. Other platforms fall
// back to reading the file into memory.
//
// The slice returned by Bytes must not be used after Close.
package mmap
