// Package paths locates and opens Aseprite documents, either on the local
// filesystem or over HTTP.
package paths

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
)

// DataEnv names an environment variable holding a directory that Find
// searches first.
const DataEnv = "ASEPRITE_DATA"

// Find locates the passed document name and returns an absolute or relative
// path to find it at, or an empty string.
//
// For example, for "hero.aseprite" it may return
// "aseprint.runfiles/go_aseprite/testdata/hero.aseprite".
//
// URLs are returned unchanged.
func Find(fileName string) string {
	if isURL(fileName) {
		return fileName
	}
	for _, path := range possiblePaths(fileName) {
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			glog.V(2).Infof("paths.Find(%q)=%s", fileName, path)
			return path
		}
	}
	return ""
}

// Open locates the passed file in the same locations that Find would look,
// and opens it. http:// and https:// names are fetched instead.
func Open(fileName string) (io.ReadSeekCloser, error) {
	if isURL(fileName) {
		return openHTTP(fileName)
	}
	path := Find(fileName)
	if path == "" {
		return nil, &os.PathError{Op: "find", Path: fileName, Err: os.ErrNotExist}
	}
	return openLocal(path)
}

// NoFindOpen opens exactly the passed path or URL.
func NoFindOpen(fileName string) (io.ReadSeekCloser, error) {
	if isURL(fileName) {
		return openHTTP(fileName)
	}
	return openLocal(fileName)
}

func isURL(name string) bool {
	return strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://")
}

func possibleDirs() []string {
	var dirs []string
	if d := os.Getenv(DataEnv); d != "" {
		dirs = append(dirs, d)
	}
	dirs = append(dirs, ".", "testdata")
	if exe, err := os.Executable(); err == nil {
		runfiles := exe + ".runfiles"
		dirs = append(dirs,
			filepath.Join(runfiles, "go_aseprite", "testdata"),
			filepath.Join(runfiles, "_main", "testdata"),
			filepath.Dir(exe))
	}
	return dirs
}

func possiblePaths(fileName string) []string {
	if filepath.IsAbs(fileName) {
		return []string{fileName}
	}
	var out []string
	for _, d := range possibleDirs() {
		out = append(out, filepath.Join(d, fileName))
	}
	return out
}
