package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "tulip_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Add(3)

	path := filepath.Join(t.TempDir(), "tulip.prom")
	require.NoError(t, writeTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tulip_test_total 3")
}

func TestWriteTextfileDisabled(t *testing.T) {
	if IsEnabled() {
		t.Skip("registry initialized by another test")
	}
	assert.ErrorIs(t, WriteTextfile(filepath.Join(t.TempDir(), "x.prom")), ErrDisabled)
}
