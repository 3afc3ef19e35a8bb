package configuration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/getsops/sops/v3/decrypt"
	"gopkg.in/yaml.v3"
)

// sopsFormat maps a secrets file extension to the SOPS store format
func sopsFormat(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".json":
		return "json"
	default:
		return "yaml"
	}
}

// DecryptSOPSFile decrypts a SOPS-encrypted YAML or JSON file and returns the parsed data
func DecryptSOPSFile(filePath string) (map[string]interface{}, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}

	// key resolution (age, pgp, kms) is handled by the SOPS library from the environment
	cleartext, err := decrypt.File(filePath, sopsFormat(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt SOPS file: %w", err)
	}

	// JSON is valid YAML, one decoder serves both formats
	var data map[string]interface{}
	if err := yaml.Unmarshal(cleartext, &data); err != nil {
		return nil, fmt.Errorf("failed to parse decrypted document: %w", err)
	}

	return data, nil
}
