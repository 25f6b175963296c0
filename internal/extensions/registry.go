// Package extensions registers side-loaded editor extensions in a VS Code Server
// extensions.json registry so the editor picks them up over Remote SSH.
package extensions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cp "github.com/otiai10/copy"
)

var (
	// ErrRegistryNotFound is returned when the registry file does not exist.
	ErrRegistryNotFound = errors.New("extension registry not found")
	// ErrInvalidRegistry is returned when the registry is not a JSON array.
	ErrInvalidRegistry = errors.New("extension registry is not valid JSON")
)

// Extension names one extension to register.
type Extension struct {
	ID               string `yaml:"id"`
	Version          string `yaml:"version"`
	RelativeLocation string `yaml:"relative_location"`
}

// Publisher is recorded in the metadata of every registered extension.
type Publisher struct {
	ID          string `yaml:"id"`
	DisplayName string `yaml:"display_name"`
}

// DefaultPublisher returns the publisher of the bundled device extensions.
func DefaultPublisher() Publisher {
	return Publisher{ID: "pamir-ai", DisplayName: "Pamir AI"}
}

// DefaultExtensions returns the bundled device extensions.
func DefaultExtensions() []Extension {
	return []Extension{
		{ID: "pamir-ai.device-manager", Version: "1.1.0", RelativeLocation: "pamir-ai.device-manager-1.1.0-universal"},
		{ID: "pamir-ai.distiller-messaging", Version: "1.0.0", RelativeLocation: "pamir-ai.distiller-messaging-1.0.0-universal"},
		{ID: "pamir-ai.distiller-ports", Version: "1.1.0", RelativeLocation: "pamir-ai.distiller-ports-1.1.0-universal"},
		{ID: "pamir-ai.happy-session-manager", Version: "1.1.0", RelativeLocation: "pamir-ai.happy-session-manager-1.1.0-universal"},
		{ID: "pamir-ai.pamir-welcome", Version: "1.1.0", RelativeLocation: "pamir-ai.pamir-welcome-1.1.0-universal"},
	}
}

// Entry is one record of extensions.json as written by the editor.
type Entry struct {
	Identifier       Identifier `json:"identifier"`
	Version          string     `json:"version"`
	Location         Location   `json:"location"`
	RelativeLocation string     `json:"relativeLocation"`
	Metadata         Metadata   `json:"metadata"`
}

type Identifier struct {
	ID string `json:"id"`
}

type Location struct {
	Mid    int    `json:"$mid"`
	Path   string `json:"path"`
	Scheme string `json:"scheme"`
}

type Metadata struct {
	InstalledTimestamp   int64  `json:"installedTimestamp"`
	Source               string `json:"source"`
	PublisherDisplayName string `json:"publisherDisplayName"`
	PublisherID          string `json:"publisherId"`
	IsPreReleaseVersion  bool   `json:"isPreReleaseVersion"`
	HasPreReleaseVersion bool   `json:"hasPreReleaseVersion"`
	PreRelease           bool   `json:"preRelease"`
}

// Options controls a registration run.
type Options struct {
	RegistryPath  string
	ExtensionsDir string
	Publisher     Publisher
	Backup        bool
	DryRun        bool
	Now           func() time.Time
}

// Result reports what a registration run did.
type Result struct {
	Added   []string
	Present []string
	// Steps lists every wanted extension in order with its outcome.
	Steps  []Step
	Total  int
	Backup string
}

// Step is the outcome for one wanted extension.
type Step struct {
	ID    string
	Added bool
}

// Register appends an entry for every extension whose id is not yet in the
// registry and writes the registry back. Existing entries are kept verbatim.
func Register(opts Options, wanted []Extension) (*Result, error) {
	data, err := os.ReadFile(opts.RegistryPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrRegistryNotFound, opts.RegistryPath)
	}
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRegistry, opts.RegistryPath, err)
	}
	if entries == nil {
		return nil, fmt.Errorf("%w: %s: not an array", ErrInvalidRegistry, opts.RegistryPath)
	}

	existing := make(map[string]bool, len(entries))
	for i, raw := range entries {
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return nil, fmt.Errorf("%w: %s: entry %d is null", ErrInvalidRegistry, opts.RegistryPath, i)
		}
		var e struct {
			Identifier Identifier `json:"identifier"`
		}
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRegistry, opts.RegistryPath, err)
		}
		existing[e.Identifier.ID] = true
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	timestamp := now().UnixMilli()

	result := &Result{}
	for _, ext := range wanted {
		if existing[ext.ID] {
			result.Present = append(result.Present, ext.ID)
			result.Steps = append(result.Steps, Step{ID: ext.ID})
			continue
		}
		raw, err := json.Marshal(newEntry(ext, opts, timestamp))
		if err != nil {
			return nil, fmt.Errorf("encode entry %s: %w", ext.ID, err)
		}
		entries = append(entries, raw)
		existing[ext.ID] = true
		result.Added = append(result.Added, ext.ID)
		result.Steps = append(result.Steps, Step{ID: ext.ID, Added: true})
	}
	result.Total = len(entries)

	if opts.DryRun {
		return result, nil
	}

	if opts.Backup {
		result.Backup = opts.RegistryPath + ".bak"
		if err := cp.Copy(opts.RegistryPath, result.Backup); err != nil {
			return nil, fmt.Errorf("backup registry: %w", err)
		}
	}

	out, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode registry: %w", err)
	}
	if err := writeFileKeepMode(opts.RegistryPath, out); err != nil {
		return nil, fmt.Errorf("write registry: %w", err)
	}
	return result, nil
}

func newEntry(ext Extension, opts Options, timestamp int64) Entry {
	return Entry{
		Identifier: Identifier{ID: ext.ID},
		Version:    ext.Version,
		Location: Location{
			Mid:    1,
			Path:   filepath.ToSlash(filepath.Join(opts.ExtensionsDir, ext.RelativeLocation)),
			Scheme: "file",
		},
		RelativeLocation: ext.RelativeLocation,
		Metadata: Metadata{
			InstalledTimestamp:   timestamp,
			Source:               "vsix",
			PublisherDisplayName: opts.Publisher.DisplayName,
			PublisherID:          opts.Publisher.ID,
		},
	}
}

func writeFileKeepMode(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(path, data, mode)
}
