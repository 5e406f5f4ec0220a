package oracle

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ToolNames are the binary names tried when no tool path is configured.
// guru is the oracle's later name in golang.org/x/tools.
var ToolNames = []string{"oracle", "guru"}

// InstallHint tells users how to get the tool.
const InstallHint = "install golang.org/x/tools/cmd/oracle (or its successor cmd/guru), or set GOORACLE_PATH"

// Env reads environment variables. os.Getenv satisfies it.
type Env func(key string) string

// LocateTool finds the oracle binary. An explicit path (from a flag, the
// environment or the config file) wins. A bare name is looked up like the
// defaults. Otherwise each of ToolNames is searched for in, in order:
//  1. $GOBIN
//  2. each $GOPATH/bin
//  3. $HOME/go/bin
//  4. anywhere in PATH
func LocateTool(explicit string, getenv Env) (string, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	if explicit != "" {
		if strings.ContainsRune(explicit, filepath.Separator) || strings.ContainsRune(explicit, '/') {
			if isExecutable(explicit) {
				return explicit, nil
			}
			return "", fmt.Errorf("%w: %s is not an executable file", ErrToolNotFound, explicit)
		}
		if path, ok := search(explicit, getenv); ok {
			return path, nil
		}
		return "", fmt.Errorf("%w: %q not in GOBIN, GOPATH/bin or PATH; %s", ErrToolNotFound, explicit, InstallHint)
	}

	for _, name := range ToolNames {
		if path, ok := search(name, getenv); ok {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: tried %s; %s", ErrToolNotFound, strings.Join(ToolNames, ", "), InstallHint)
}

func search(name string, getenv Env) (string, bool) {
	for _, dir := range goBinDirs(getenv) {
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, true
		}
	}

	if path, err := exec.LookPath(name); err == nil {
		return path, true
	}
	return "", false
}

func goBinDirs(getenv Env) []string {
	var dirs []string

	if gobin := getenv("GOBIN"); gobin != "" {
		dirs = append(dirs, gobin)
	}
	for _, p := range filepath.SplitList(getenv("GOPATH")) {
		if p != "" {
			dirs = append(dirs, filepath.Join(p, "bin"))
		}
	}
	if home := getenv("HOME"); home != "" {
		dirs = append(dirs, filepath.Join(home, "go", "bin"))
	}

	return dirs
}

// isExecutable checks if a file exists and is executable.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	if info.Mode().IsRegular() {
		return info.Mode()&0111 != 0
	}

	return false
}
