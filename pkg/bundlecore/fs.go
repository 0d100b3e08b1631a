package bundlecore

import "os"

// osFileSystem is the default loader.FileSystem when an embedder supplies
// none: plain os.ReadFile, matching how esbuild's own CLI falls back
// to the real filesystem when no plugin claims a load.
type osFileSystem struct{}

func (osFileSystem) ReadFile(path string) (string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(contents), nil
}
