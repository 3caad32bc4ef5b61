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

package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer InitDefault()

	WithComponent("aggregates").Warn("skipping row", "key", 3)

	out := buf.String()
	if !strings.Contains(out, "component=aggregates") || !strings.Contains(out, "key=3") {
		t.Errorf("unexpected log output: %q", out)
	}
}

func TestInitLevelAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "quantab.log")
	if err := Init(Config{Level: LevelWarn, Format: "json", OutputPath: path}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	GetLogger().Info("hidden")
	GetLogger().Warn("shown")
	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Error("INFO message written at WARN level")
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("expected JSON warning, got %q", out)
	}

	// GetLogger recovers a default logger after Close
	if GetLogger() == nil {
		t.Error("expected a default logger after Close")
	}
}
