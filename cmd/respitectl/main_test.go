// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testCatalog = `name,category,tags,lat,lon
Riverside,park,quiet;trees,37.5670,126.9785
Hilltop,park,view;trees,37.5690,126.9800
Bean There,cafe,wifi;quiet,37.5660,126.9770
Page Turner,library,quiet;books,37.5650,126.9790
`

const testClicks = `timestamp,user_id,name,category
2026-05-10 09:00:00,u1,Riverside,park
2026-05-11 09:00:00,u1,Hilltop,park
2026-05-11 15:00:00,u1,Bean There,cafe
2026-05-12 09:00:00,u2,Page Turner,library
`

// writeFixture lays out a catalog, an empty ledger location and a config
// file pointing at both, returning the config path and the click log path.
func writeFixture(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "places.csv")
	clicksPath := filepath.Join(dir, "clicks.csv")
	ledgerPath := filepath.Join(dir, "ledger", "interactions.csv")
	configPath := filepath.Join(dir, "config.yaml")

	for path, body := range map[string]string{catalogPath: testCatalog, clicksPath: testClicks} {
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("WriteFile(%s) error = %v", path, err)
		}
	}
	cfg := fmt.Sprintf(`catalog:
  path: %s
ledger:
  backend: file
  path: %s
recommend:
  seed: 7
logging:
  level: error
`, catalogPath, ledgerPath)
	if err := os.WriteFile(configPath, []byte(cfg), 0o600); err != nil {
		t.Fatalf("WriteFile(config) error = %v", err)
	}
	return configPath, clicksPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLedgerImportAndTail(t *testing.T) {
	configPath, clicks := writeFixture(t)

	out, err := execute(t, "-c", configPath, "ledger", "import", clicks)
	if err != nil {
		t.Fatalf("ledger import error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Imported 4 interactions into the file ledger") {
		t.Errorf("import output = %q", out)
	}

	out, err = execute(t, "-c", configPath, "ledger", "tail", "-n", "2")
	if err != nil {
		t.Fatalf("ledger tail error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("tail printed %d lines, want 2:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "Bean There") || !strings.Contains(lines[1], "Page Turner") {
		t.Errorf("tail = %q, want Bean There then Page Turner", lines)
	}
}

func TestProfile(t *testing.T) {
	configPath, clicks := writeFixture(t)
	if _, err := execute(t, "-c", configPath, "ledger", "import", clicks); err != nil {
		t.Fatalf("ledger import error = %v", err)
	}

	out, err := execute(t, "-c", configPath, "profile", "u1")
	if err != nil {
		t.Fatalf("profile error = %v", err)
	}
	if !strings.Contains(out, "Top categories:") || !strings.Contains(out, "park") {
		t.Errorf("profile output = %q, want park in top categories", out)
	}

	// The profile covers the whole ledger, including actors without selections.
	out, err = execute(t, "-c", configPath, "profile", "nobody")
	if err != nil {
		t.Fatalf("profile error = %v", err)
	}
	if !strings.Contains(out, "park") {
		t.Errorf("profile output for new actor = %q, want park", out)
	}
}

func TestProfile_EmptyLedger(t *testing.T) {
	configPath, _ := writeFixture(t)

	out, err := execute(t, "-c", configPath, "profile", "u1")
	if err != nil {
		t.Fatalf("profile error = %v", err)
	}
	if !strings.Contains(out, "No selections recorded yet.") {
		t.Errorf("profile output = %q", out)
	}
}

func TestNeighbors(t *testing.T) {
	configPath, _ := writeFixture(t)

	out, err := execute(t, "-c", configPath, "--json", "neighbors", "park", "-k", "2")
	if err != nil {
		t.Fatalf("neighbors error = %v", err)
	}
	if !strings.Contains(out, `"category": "park"`) {
		t.Errorf("neighbors output = %q", out)
	}

	if _, err := execute(t, "-c", configPath, "neighbors", "museum"); err == nil {
		t.Error("neighbors of an unknown category error = nil, want error")
	}
}

func TestRecommend(t *testing.T) {
	configPath, _ := writeFixture(t)

	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr bool
	}{
		{
			name: "with origin",
			args: []string{"recommend", "--actor", "u1", "--lat", "37.5665", "--lon", "126.9780", "--radius", "2"},
			want: []string{"Query 1 for u1", " km"},
		},
		{
			name: "far away origin",
			args: []string{"recommend", "--actor", "u1", "--lat", "35.1", "--lon", "129.0", "--radius", "1"},
			want: []string{"No places within the radius."},
		},
		{
			name: "repeated queries",
			args: []string{"recommend", "--actor", "u1", "-n", "3"},
			want: []string{"Query 3 for u1"},
		},
		{
			name: "declared context",
			args: []string{"recommend", "--actor", "u1", "--context", "mood=tired", "--context", "energy=low"},
			want: []string{"Query 1 for u1", "Context: energy=low, mood=tired"},
		},
		{
			name:    "context without value",
			args:    []string{"recommend", "--actor", "u1", "--context", "mood"},
			wantErr: true,
		},
		{
			name:    "missing actor",
			args:    []string{"recommend"},
			wantErr: true,
		},
		{
			name:    "zero times",
			args:    []string{"recommend", "--actor", "u1", "-n", "0"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"-c", configPath}, tt.args...)...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v\n%s", err, tt.wantErr, out)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output %q missing %q", out, w)
				}
			}
		})
	}
}
