// Package file reads and writes the files around a score transformation.
package file

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/divVerent/choirsplit/internal/processor"
)

// ReadConfig reads the global config. A missing config file yields the defaults.
func ReadConfig(fsys fs.FS, configFile string) (*processor.Config, error) {
	f, err := fsys.Open(configFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &processor.Config{}, nil
		}
		return nil, fmt.Errorf("could not open: %v", err)
	}
	defer f.Close()
	var config processor.Config
	err = yaml.NewDecoder(f).Decode(&config)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("could not decode: %v", err)
	}
	return &config, nil
}
