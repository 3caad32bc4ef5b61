/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package datasources

import (
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"github.com/google/quantab/core/logging"
	"github.com/google/quantab/core/tables"
)

// Manager handles loading and caching of data sources. Sources are
// registered up front and loaded lazily on first use.
//
// Cached tables are shared between callers and must not be modified; the
// engine operations never modify their inputs.
type Manager struct {
	mu sync.RWMutex

	// Source metadata indexed by name
	sources map[string]*DataSource

	// Cached tables indexed by source name, populated lazily
	tables map[string]*tables.Table

	// Registered loaders indexed by source type
	loaders map[string]DataSourceLoader

	// Base directory for resolving relative paths
	baseDir string
}

// NewManager creates a manager with the given loaders registered.
func NewManager(loaders ...DataSourceLoader) *Manager {
	m := &Manager{
		sources: make(map[string]*DataSource),
		tables:  make(map[string]*tables.Table),
		loaders: make(map[string]DataSourceLoader),
	}
	for _, l := range loaders {
		m.RegisterLoader(l)
	}
	return m
}

// RegisterLoader registers a data source loader for a specific source type.
// If a loader is already registered for this type, it will be replaced.
func (m *Manager) RegisterLoader(loader DataSourceLoader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaders[loader.SourceType()] = loader
}

// SetBaseDir sets the directory relative file paths are resolved against.
func (m *Manager) SetBaseDir(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseDir = dir
}

// AddSource registers a source, replacing any source of the same name and
// dropping its cached table.
func (m *Manager) AddSource(source *DataSource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[source.Name] = source
	delete(m.tables, source.Name)
}

// GetSource returns the source metadata by name.
func (m *Manager) GetSource(name string) *DataSource {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sources[name]
}

// GetSourceNames returns the names of all registered sources in order.
func (m *Manager) GetSourceNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.sources))
	for name := range m.sources {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LoadData returns the table of a registered source, loading it on first
// access.
func (m *Manager) LoadData(sourceName string) (*tables.Table, error) {
	// Check cache first (with read lock)
	m.mu.RLock()
	if table, ok := m.tables[sourceName]; ok {
		m.mu.RUnlock()
		return table, nil
	}
	source, ok := m.sources[sourceName]
	if !ok {
		m.mu.RUnlock()
		return nil, fmt.Errorf("source %q not found", sourceName)
	}
	loader, hasLoader := m.loaders[source.SourceType]
	baseDir := m.baseDir
	m.mu.RUnlock()

	if !hasLoader {
		return nil, fmt.Errorf("no loader registered for source type %q", source.SourceType)
	}

	config := resolveConfigPaths(source.Config, baseDir)
	table, err := loader.Load(config)
	if err != nil {
		return nil, fmt.Errorf("failed to load source %q: %w", sourceName, err)
	}
	logging.WithTable(sourceName).Info("loaded source",
		"type", source.SourceType, "rows", table.NumRecords(), "fields", len(table.Fields()))

	// Cache the result; a concurrent load of the same source keeps the
	// first table stored
	m.mu.Lock()
	defer m.mu.Unlock()
	if cached, ok := m.tables[sourceName]; ok {
		return cached, nil
	}
	m.tables[sourceName] = table
	return table, nil
}

// Open loads a file by path, relative to the working directory rather than
// the base directory. The path is registered as a source named after
// itself, with the loader type implied by its extension.
func (m *Manager) Open(path string) (*tables.Table, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	if _, ok := m.sources[path]; !ok {
		m.sources[path] = &DataSource{
			Name:       path,
			SourceType: SourceTypeForPath(path),
			Config:     map[string]string{KeyFilePath: abs},
		}
	}
	m.mu.Unlock()
	return m.LoadData(path)
}

// resolveConfigPaths resolves a relative file_path against baseDir.
func resolveConfigPaths(config map[string]string, baseDir string) map[string]string {
	resolved := make(map[string]string, len(config))
	for k, v := range config {
		resolved[k] = v
	}
	if p := resolved[KeyFilePath]; baseDir != "" && p != "" && !filepath.IsAbs(p) {
		resolved[KeyFilePath] = filepath.Join(baseDir, p)
	}
	return resolved
}

// InvalidateCache removes a source from the cache, forcing reload on next access.
func (m *Manager) InvalidateCache(sourceName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tables, sourceName)
}

// IsLoaded returns whether data for a source is currently cached.
func (m *Manager) IsLoaded(sourceName string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.tables[sourceName]
	return ok
}

// GetLoadedSources returns names of all currently loaded (cached) sources.
func (m *Manager) GetLoadedSources() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.tables))
	for name := range m.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
