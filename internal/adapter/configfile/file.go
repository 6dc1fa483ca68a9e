package configfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk configuration. Zero values mean "not set".
type File struct {
	Address         string   `yaml:"address"`
	CopyPort        int      `yaml:"copy_port"`
	PastePort       int      `yaml:"paste_port"`
	CopyCommand     string   `yaml:"copy_command"`
	PasteCommand    string   `yaml:"paste_command"`
	Shell           string   `yaml:"shell"`
	Backlog         int      `yaml:"backlog"`
	TransientErrors []string `yaml:"transient_errors"`
	MetricsAddress  string   `yaml:"metrics_address"`
	LogLevel        string   `yaml:"log_level"`
	LogFormat       string   `yaml:"log_format"`
}

// Load reads the config file at path. A missing file yields an empty File
// unless required is set.
func Load(path string, required bool) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return File{}, nil
		}
		return File{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML document. Unknown keys are rejected.
func Parse(data []byte) (File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("parse config: %w", err)
	}
	return f, nil
}
