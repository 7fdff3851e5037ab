package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/tzres/tzengine/cmd/tzresolve/internal/config"
)

func runCmd(t *testing.T, cmd *cobra.Command, dir string, args []string) string {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetContext(withConfig(context.Background(), &config.Config{DataDir: dir, DefaultZone: "Etc/GMT-1"}))
	cmd.SetOut(&buf)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute(), "Execute(%v)", args)
	return buf.String()
}

func TestListCmdPrintsZones(t *testing.T) {
	dir := writeDataDir(t)
	out := runCmd(t, newListCmd(), dir, nil)
	require.Contains(t, out, "Etc/GMT-1")
}

func TestResolveCmdByEpoch(t *testing.T) {
	dir := writeDataDir(t)
	out := runCmd(t, newResolveCmd(), dir, []string{"--epoch", "1590000000", "Etc/GMT-1"})
	require.Contains(t, out, "total_offset=3600s")
}

func TestResolveCmdRejectsBothEpochAndAt(t *testing.T) {
	dir := writeDataDir(t)
	cmd := newResolveCmd()
	cmd.SetContext(withConfig(context.Background(), &config.Config{DataDir: dir}))
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--epoch", "0", "--at", "2020-01-01T00:00:00", "Etc/GMT-1"})
	require.Error(t, cmd.Execute(), "resolve with both --epoch and --at")
}
