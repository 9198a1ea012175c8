package store

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSelectsLocalMode(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))

	for _, dsn := range []string{"", "  ", "postgres://PLACEHOLDER"} {
		st, err := Open(dsn, t.TempDir(), logger)
		require.NoError(t, err)
		assert.IsType(t, &Local{}, st, "dsn %q must select the local backend", dsn)
		require.NoError(t, st.Close())
	}
}
