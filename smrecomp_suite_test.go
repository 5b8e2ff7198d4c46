// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package smrecomp_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

//go:generate mockgen -write_package_comment=false -package=$GOPACKAGE -destination=mock_environment_test.go github.com/gogpu/smrecomp/maxwell Environment

func TestSmrecomp(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Smrecomp Suite")
}
