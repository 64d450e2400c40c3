package constants

import (
	"os"
	"path/filepath"
)

const DefaultHomeEnv string = "RESTAKE_HOME"
const ConfigEnv string = "RESTAKE_CONFIG"

var DefaultHome string

func init() {
	if home := os.Getenv(DefaultHomeEnv); home != "" {
		DefaultHome = home
		return
	} else {
		// ~/.restake default
		userHomeDir, err := os.UserHomeDir()
		if err != nil {
			DefaultHome = "/data"
		} else {
			DefaultHome = filepath.Join(userHomeDir, ".restake")
		}
	}
}
