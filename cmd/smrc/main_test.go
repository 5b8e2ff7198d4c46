// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"log/slog"
	"reflect"
	"testing"

	"github.com/gogpu/smrecomp"
)

func TestParseBackends(t *testing.T) {
	tests := []struct {
		name    string
		want    []smrecomp.Backend
		wantErr bool
	}{
		{"glsl", []smrecomp.Backend{smrecomp.BackendGLSL}, false},
		{"glasm", []smrecomp.Backend{smrecomp.BackendGLASM}, false},
		{"all", []smrecomp.Backend{smrecomp.BackendGLASM, smrecomp.BackendGLSL}, false},
		{"spirv", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBackends(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseBackends() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseBackends() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLocalSize(t *testing.T) {
	got, err := parseLocalSize("8, 4,1")
	if err != nil {
		t.Fatalf("parseLocalSize() error = %v", err)
	}
	if got != [3]uint32{8, 4, 1} {
		t.Errorf("parseLocalSize() = %v", got)
	}
	for _, bad := range []string{"", "1,2", "1,x,3", "1,2,3,4"} {
		if _, err := parseLocalSize(bad); err == nil {
			t.Errorf("parseLocalSize(%q) succeeded", bad)
		}
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger("trace", false)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	if !logger.Enabled(context.Background(), smrecomp.LevelTrace) {
		t.Error("trace level not enabled")
	}
	logger, err = newLogger("WARN", true)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info enabled at warn level")
	}
	if _, err := newLogger("verbose", false); err == nil {
		t.Error("unknown level accepted")
	}
}
