package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const template = `# apix project file. Paths may use <projectFolder>, <packageName> and <unscopedPackageName>.

[project]
entryPoint = "%s"
# packageJson = "<projectFolder>/package.json"
# name = "my-package"

[apiReport]
enabled = true
reportFileName = "<unscopedPackageName>.api.md"
reportFolder = "<projectFolder>/etc/"
reportTempFolder = "<projectFolder>/temp/"

[dtsRollup]
enabled = false
untrimmedFilePath = "<projectFolder>/dist/<unscopedPackageName>.d.ts"
# alphaTrimmedFilePath = ""
# betaTrimmedFilePath = ""
# publicTrimmedFilePath = ""

[docModel]
enabled = false
apiJsonFilePath = "<projectFolder>/temp/<unscopedPackageName>.api.json"
# releaseTagThreshold = "public"

[cache]
enabled = false
# dir = ""

# [messages.extractor.ae-forgotten-export]
# logLevel = "warning"
# addToApiReportFile = true
`

// WriteTemplate creates dir/apix.toml with the given entry point. It refuses to
// overwrite an existing file.
func WriteTemplate(dir, entryPoint string) (string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to stat %q: %w", path, err)
	}
	if entryPoint == "" {
		entryPoint = "<projectFolder>/lib/index.d.ts"
	}
	entryPoint = strings.ReplaceAll(filepath.ToSlash(entryPoint), `"`, `\"`)
	if err := os.WriteFile(path, []byte(fmt.Sprintf(template, entryPoint)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
