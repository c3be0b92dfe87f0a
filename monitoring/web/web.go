// Package web serves the monitor page.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

//go:embed dist
var dist embed.FS

// DevModeEnv names the environment variable that makes the monitor read its
// page from disk. A true value selects the dist directory of the source tree,
// any other non-boolean value is taken as the directory to serve.
const DevModeEnv = "ELASTICBUF_MONITOR_DEV"

// Handler serves the page and its assets. Responses are not cached since the
// page is edited in place in development mode.
func Handler() http.Handler {
	files := http.FileServer(Assets())

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		files.ServeHTTP(w, r)
	})
}

// Assets returns the files of the page.
func Assets() http.FileSystem {
	if dir, ok := devDir(); ok {
		return http.Dir(dir)
	}

	sub, err := fs.Sub(dist, "dist")
	if err != nil {
		panic(err)
	}

	return http.FS(sub)
}

func devDir() (string, bool) {
	v := os.Getenv(DevModeEnv)
	if v == "" {
		return "", false
	}

	on, err := strconv.ParseBool(v)
	if err != nil {
		return v, true
	}

	if !on {
		return "", false
	}

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("web: cannot locate the source tree")
	}

	return filepath.Join(filepath.Dir(file), "dist"), true
}
