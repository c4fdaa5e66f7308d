package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/yorlang/yorlang/internal/errdef"
)

const (
	SettingsFormatTOML SettingsFormat = "toml"
	SettingsFormatYAML SettingsFormat = "yaml"
	SettingsFormatJSON SettingsFormat = "json"
)

type Settings struct {
	Limits LimitSettings  `json:"limits" toml:"limits" yaml:"limits"`
	Output OutputSettings `json:"output" toml:"output" yaml:"output"`
	REPL   REPLSettings   `json:"repl"   toml:"repl"   yaml:"repl"`
}

type SettingsFormat string

type SettingsHandle struct {
	Path   string
	Format SettingsFormat
}

func candidates(dir string) []SettingsHandle {
	return []SettingsHandle{
		{Path: filepath.Join(dir, "settings.toml"), Format: SettingsFormatTOML},
		{Path: filepath.Join(dir, "settings.yaml"), Format: SettingsFormatYAML},
		{Path: filepath.Join(dir, "settings.json"), Format: SettingsFormatJSON},
	}
}

// LoadSettings reads the first settings file found in Dir, trying TOML,
// YAML, then JSON. Missing files fall through; a file that fails to parse
// is an error. With no file at all the defaults are returned along with a
// TOML handle for saving.
func LoadSettings() (Settings, SettingsHandle, error) {
	list := candidates(Dir())

	var accumulated error
	for _, candidate := range list {
		data, err := os.ReadFile(candidate.Path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			accumulated = errors.Join(
				accumulated,
				errdef.Wrap(errdef.CodeFilesystem, err, "read settings %q", candidate.Path),
			)
			continue
		}

		settings, err := decodeSettings(data, candidate.Format)
		if err != nil {
			return Settings{}, SettingsHandle{}, errdef.Wrap(
				errdef.CodeConfig,
				err,
				"parse settings %q",
				candidate.Path,
			)
		}
		return NormaliseSettings(settings), candidate, nil
	}

	if accumulated != nil {
		return Settings{}, SettingsHandle{}, accumulated
	}
	return DefaultSettings(), list[0], nil
}

func decodeSettings(data []byte, format SettingsFormat) (Settings, error) {
	var settings Settings
	switch format {
	case SettingsFormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&settings); err != nil {
			return Settings{}, err
		}
	case SettingsFormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&settings); err != nil && !errors.Is(err, io.EOF) {
			return Settings{}, err
		}
	case SettingsFormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&settings); err != nil {
			return Settings{}, err
		}
	default:
		return Settings{}, fmt.Errorf("unsupported settings format %q", format)
	}
	return settings, nil
}

func encodeSettings(settings Settings, format SettingsFormat) ([]byte, error) {
	switch format {
	case SettingsFormatTOML:
		return toml.Marshal(settings)
	case SettingsFormatYAML:
		return yaml.Marshal(settings)
	case SettingsFormatJSON:
		buf := &bytes.Buffer{}
		enc := json.NewEncoder(buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(settings); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported settings format %q", format)
	}
}

func SaveSettings(settings Settings, handle SettingsHandle) error {
	settings = NormaliseSettings(settings)
	path := handle.Path
	format := handle.Format
	if path == "" {
		path = filepath.Join(Dir(), "settings.toml")
	}
	if format == "" {
		format = SettingsFormatTOML
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "ensure settings directory")
	}
	data, err := encodeSettings(settings, format)
	if err != nil {
		return errdef.Wrap(errdef.CodeConfig, err, "encode settings")
	}
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "write settings %q", path)
	}
	return nil
}

// writeFileAtomic writes to a temp file in the same directory and renames
// it over path.
func writeFileAtomic(path string, data []byte, perm fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".yorlang-settings-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return errors.Join(err, tmp.Close())
	}
	if err := tmp.Chmod(perm); err != nil {
		return errors.Join(err, tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
