// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

//go:build !unix

package mapfile

import "os"

// Open reads path into memory.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &File{Data: data}, nil
}
