package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// ChecksumsFile is the manifest name written next to config files.
const ChecksumsFile = ".checksums"

// ChecksumManifest pins config files to their BLAKE3 hashes, keyed by basename.
type ChecksumManifest struct {
	Version     int               `yaml:"version"`
	GeneratedAt string            `yaml:"generated_at"`
	Hashes      map[string]string `yaml:"hashes"`
}

// LockReport describes the manifests written by Lock.
type LockReport struct {
	Manifests []string
	Files     map[string]string // path -> hash
}

// ComputeBlake3Hash computes the BLAKE3 hash of a file.
func ComputeBlake3Hash(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

// LoadChecksums reads the manifest from dir. A missing manifest returns
// (nil, nil): verification is opt-in.
func LoadChecksums(dir string) (*ChecksumManifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ChecksumsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read checksums: %w", err)
	}

	var manifest ChecksumManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse checksums: %w", err)
	}
	if manifest.Version != 1 {
		return nil, fmt.Errorf("unsupported checksums version: %d", manifest.Version)
	}
	return &manifest, nil
}

// Lock hashes the config at configPath and every file it includes, writing
// one manifest per directory.
func Lock(configPath string) (*LockReport, error) {
	files, err := ConfigFiles(configPath)
	if err != nil {
		return nil, err
	}

	report := &LockReport{Files: make(map[string]string, len(files))}
	for dir, paths := range groupByDir(files) {
		manifest := ChecksumManifest{
			Version:     1,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			Hashes:      make(map[string]string, len(paths)),
		}

		// Keep entries for files outside this include tree.
		if existing, err := LoadChecksums(dir); err == nil && existing != nil {
			for name, hash := range existing.Hashes {
				manifest.Hashes[name] = hash
			}
		}

		for _, path := range paths {
			hash, err := ComputeBlake3Hash(path)
			if err != nil {
				return nil, fmt.Errorf("failed to hash %s: %w", path, err)
			}
			manifest.Hashes[filepath.Base(path)] = hash
			report.Files[path] = hash
		}

		data, err := yaml.Marshal(manifest)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal checksums: %w", err)
		}

		manifestPath := filepath.Join(dir, ChecksumsFile)
		if err := os.WriteFile(manifestPath, data, 0o600); err != nil {
			return nil, fmt.Errorf("failed to write checksums: %w", err)
		}
		report.Manifests = append(report.Manifests, manifestPath)
	}

	sort.Strings(report.Manifests)
	return report, nil
}

// verifyChecksums checks files against the manifest in their directory.
// Directories without a manifest are skipped.
func verifyChecksums(files []string) error {
	for dir, paths := range groupByDir(files) {
		manifest, err := LoadChecksums(dir)
		if err != nil {
			return err
		}
		if manifest == nil {
			continue
		}

		for _, path := range paths {
			name := filepath.Base(path)
			expected, ok := manifest.Hashes[name]
			if !ok {
				return fmt.Errorf("config file %s has no hash in %s\n"+
					"Run: slashgw config lock --config %s", name, filepath.Join(dir, ChecksumsFile), path)
			}

			actual, err := ComputeBlake3Hash(path)
			if err != nil {
				return err
			}
			if actual != expected {
				return fmt.Errorf("config verification failed for %s: hash mismatch\n"+
					"If you edited this file intentionally, run: slashgw config lock", path)
			}
		}
	}
	return nil
}

func groupByDir(paths []string) map[string][]string {
	out := make(map[string][]string)
	for _, p := range paths {
		dir := filepath.Dir(p)
		out[dir] = append(out[dir], p)
	}
	return out
}
