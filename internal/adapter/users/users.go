// Package users supplies allow-lists from configuration or a YAML file.
package users

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Static is an allow-list fixed at startup.
type Static struct {
	names []string
}

func NewStatic(names []string) *Static {
	return &Static{names: append([]string(nil), names...)}
}

func (s *Static) AllowedUsernames(context.Context) ([]string, error) {
	return append([]string(nil), s.names...), nil
}

type fileDocument struct {
	AllowedUsers []string `yaml:"allowed_users"`
}

// File reads the allow-list from a YAML document on every call, so edits
// apply without a restart. A missing file is an empty list.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) AllowedUsernames(context.Context) ([]string, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read allow-list: %w", err)
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse allow-list %s: %w", f.path, err)
	}
	return doc.AllowedUsers, nil
}
