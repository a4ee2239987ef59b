// Package scaffold implements the `init` command: writing a default
// warp.config.yml that a user edits into their real target list.
package scaffold

import (
	"fmt"
	"os"
)

// DefaultFileName is the config file `init` writes when none is given.
const DefaultFileName = "warp.config.yml"

const defaultConfig = `# warp build configuration.
# Docs: https://www.npmjs.com/package/warp (replace with your package's
# real documentation link once this scaffold is committed).

exports:
  ".": "./src/index.ts"

targets:
  - name: esm
    tsconfig: tsconfig.json
`

// Write creates path with the default scaffold config. It refuses to
// overwrite an existing file but that is not an error the caller should
// fail the process over — init exits 0 either way. Wrote reports whether
// a new file was actually created.
func Write(path string) (wrote bool, err error) {
	if path == "" {
		path = DefaultFileName
	}
	if _, statErr := os.Stat(path); statErr == nil {
		return false, nil
	} else if !os.IsNotExist(statErr) {
		return false, fmt.Errorf("checking %q: %w", path, statErr)
	}

	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return false, fmt.Errorf("writing %q: %w", path, err)
	}
	return true, nil
}
