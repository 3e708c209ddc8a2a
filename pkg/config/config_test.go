package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	Token string `yaml:"token"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("CFG_TEST_NAME", "fitch")
	t.Setenv("CFG_TEST_PORT", "")
	path := writeFile(t, "name: ${CFG_TEST_NAME}\nport: ${CFG_TEST_PORT:-8080}\ntoken: ${CFG_TEST_UNSET}\n")

	var s sample
	if err := Load(path, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "fitch" || s.Port != 8080 || s.Token != "" {
		t.Errorf("loaded = %+v", s)
	}
}

func TestLoad_Validates(t *testing.T) {
	path := writeFile(t, "port: 0\n")
	var s sample
	if err := Load(path, &s); err == nil {
		t.Error("expected validation error")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeFile(t, "port: [\n")
	var s sample
	if err := Load(path, &s); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadOptional(t *testing.T) {
	s := sample{Port: 9000}
	found, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &s)
	if err != nil || found {
		t.Fatalf("missing file: found = %v, err = %v", found, err)
	}
	if s.Port != 9000 {
		t.Errorf("defaults changed: %+v", s)
	}

	found, err = LoadOptional(writeFile(t, "port: 7000\n"), &s)
	if err != nil || !found || s.Port != 7000 {
		t.Errorf("present file: found = %v, err = %v, s = %+v", found, err, s)
	}

	bad := sample{}
	if _, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &bad); err == nil {
		t.Error("expected defaults to be validated")
	}
}
