package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppm/internal/domain"
	"ppm/internal/session"
)

const analysisJSON = `{"resumen_general":{"costo_en_contrato":1000,"precio_estimado_mercado":1200,"diferencia_total":200,"diferencia_porcentaje":20,"credibilidad":80},"alertas":["Overpriced cement"],"recomendaciones":[],"partidas":[]}`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeSelection(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(names))
	for _, n := range names {
		p := filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(p, []byte("%PDF-1.4 "+n), 0o600))
		paths = append(paths, p)
	}
	return paths
}

func TestFingerprintCommand_OrderIndependent(t *testing.T) {
	paths := writeSelection(t, "a.pdf", "b.pdf")

	first, err := execute(t, "fingerprint", paths[0], paths[1])
	require.NoError(t, err)
	second, err := execute(t, "fingerprint", paths[1], paths[0])
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "route:       temp/")
}

func TestAnalyzeCommand_CacheHitPersistsToProfile(t *testing.T) {
	var uploads atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/files/check":
			_, _ = w.Write([]byte(`{"items":[{"name":"a.pdf","size":14,"exists":true,"route":"r/1","cache":true}],"route":"r/1","combined_cache":` + analysisJSON + `}`))
		case "/api/upload/temp":
			uploads.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	t.Setenv("PPM_API_BASE_URL", server.URL)
	t.Setenv("PPM_LOG_LEVEL", "error")
	stateFile := filepath.Join(t.TempDir(), "p.msgpack")
	paths := writeSelection(t, "a.pdf")

	out, err := execute(t, "analyze", "--state-file", stateFile, paths[0])
	require.NoError(t, err)
	assert.Contains(t, out, "$1,000")
	assert.Contains(t, out, "Overpriced cement")
	assert.Zero(t, uploads.Load())

	route, err := session.NewState(session.NewFileStore(stateFile), "default").Route(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Route("r/1"), route)

	out, err = execute(t, "view", "--state-file", stateFile, "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "$1,000")
}

func TestAnalyzeCommand_RejectsUnsupportedFile(t *testing.T) {
	t.Setenv("PPM_API_BASE_URL", "http://127.0.0.1:1")
	paths := writeSelection(t, "notes.txt")

	_, err := execute(t, "analyze", "--state-file", filepath.Join(t.TempDir(), "p.msgpack"), paths[0])

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestViewCommand_NothingLoaded(t *testing.T) {
	t.Setenv("PPM_API_BASE_URL", "http://127.0.0.1:1")
	t.Setenv("PPM_API_PUBLIC_ANALYSIS", "")

	out, err := execute(t, "view", "--state-file", filepath.Join(t.TempDir(), "p.msgpack"))

	require.NoError(t, err)
	assert.Contains(t, out, "No analysis loaded yet.")
}
