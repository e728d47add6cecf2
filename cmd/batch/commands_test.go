package main

import (
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/hubreport/pkg/dateutil"
)

func run(cmd *cobra.Command, args ...string) error {
	// never nil, or cobra falls back to os.Args
	cmd.SetArgs(append([]string{}, args...))
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.Execute()
}

func TestCrawlCommand_RejectsBadFlags(t *testing.T) {
	err := run(newCrawlCommand())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--date")

	require.ErrorIs(t, run(newCrawlCommand(), "--date", "15.01.2016"), dateutil.ErrInvalidDate)
	require.ErrorIs(t, run(newCrawlCommand(), "--from", "2016-01-01", "--to", "soon"), dateutil.ErrInvalidDate)
	require.Error(t, run(newCrawlCommand(), "--from", "2016-01-01"))
	require.Error(t, run(newCrawlCommand(), "--date", "2016-01-01", "--from", "2016-01-01", "--to", "2016-01-02"))
}

func TestReportCommand_RejectsBadFlags(t *testing.T) {
	err := run(newReportCommand())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--month")

	require.ErrorIs(t, run(newReportCommand(), "--month", "2016-13"), dateutil.ErrInvalidDate)
	require.ErrorIs(t, run(newReportCommand(), "--from", "2016-01", "--to", "2016/02"), dateutil.ErrInvalidDate)
	require.Error(t, run(newReportCommand(), "--to", "2016-02"))
}
