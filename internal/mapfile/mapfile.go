// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package mapfile gives read-only access to guest program files without
// copying them.
package mapfile

// File is a read-only view of a file's contents.
type File struct {
	Data  []byte
	close func() error
}

// Close releases the view. Data must not be used afterwards.
func (f *File) Close() error {
	if f.close == nil {
		return nil
	}
	err := f.close()
	f.close = nil
	f.Data = nil
	return err
}
