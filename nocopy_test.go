// SPDX-License-Identifier: GPL-3.0-or-later

package zsock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/checker"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/packages"
)

func TestSocketCopyRejectedByVet(t *testing.T) {
	if testing.Short() {
		t.Skip("skip test in short mode")
	}

	cfg := &packages.Config{Mode: packages.LoadAllSyntax, Tests: false}
	pkgs, err := packages.Load(cfg, "./testdata/copysocket")
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	require.Zero(t, packages.PrintErrors(pkgs))

	graph, err := checker.Analyze([]*analysis.Analyzer{copylock.Analyzer}, pkgs, nil)
	require.NoError(t, err)

	var messages []string
	for _, action := range graph.Roots {
		require.NoError(t, action.Err)
		for _, diag := range action.Diagnostics {
			messages = append(messages, diag.Message)
		}
	}

	// One diagnostic per copy; Moved passes a pointer and is accepted.
	require.Len(t, messages, 2)
	for _, message := range messages {
		assert.Contains(t, message, "zsock.Socket")
	}
}
