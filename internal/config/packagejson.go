package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

type packageJSON struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// readPackageJSON returns the package name and version; a missing file yields empty values.
func readPackageJSON(path string) (name, version string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", "", nil
		}
		return "", "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", "", fmt.Errorf("%s: %w", path, err)
	}
	return pkg.Name, pkg.Version, nil
}
