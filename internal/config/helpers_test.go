// ABOUTME: Test helpers for config tests
// ABOUTME: Provides utilities for environment variable management

package config

import (
	"os"
	"testing"
)

// withCleanEnv clears the environment, points the config directory at a
// temp dir, sets the extra vars and returns a cleanup function that restores
// the original env. Use with t.Cleanup().
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    t.Cleanup(withCleanEnv(t, map[string]string{
//	        "STOREFRONT_API_URL": "http://api.test",
//	    }))
//	}
func withCleanEnv(t *testing.T, extra map[string]string) func() {
	t.Helper()

	originalEnv := os.Environ()
	dir := t.TempDir()

	os.Clearenv()
	os.Setenv("STOREFRONT_CONFIG_DIR", dir)

	for key, value := range extra {
		os.Setenv(key, value)
	}

	// godotenv reads .env from the working directory
	wd, _ := os.Getwd()
	os.Chdir(dir)

	return func() {
		os.Chdir(wd)
		os.Clearenv()
		for _, env := range originalEnv {
			for i := 0; i < len(env); i++ {
				if env[i] == '=' {
					os.Setenv(env[:i], env[i+1:])
					break
				}
			}
		}
	}
}
