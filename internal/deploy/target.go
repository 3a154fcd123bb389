// Package deploy updates a checkout of the app on a host, restarts it and
// waits for it to report healthy.
package deploy

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Target describes one place the app runs. An empty host or "local" means
// this machine.
type Target struct {
	Name           string        `yaml:"name"`
	Host           string        `yaml:"host"`
	User           string        `yaml:"user"`
	SSHPort        int           `yaml:"ssh_port"`
	Dir            string        `yaml:"dir"`
	Branch         string        `yaml:"branch"`
	Binary         string        `yaml:"binary"`
	Service        string        `yaml:"service"`
	Port           int           `yaml:"port"`
	HealthPath     string        `yaml:"health_path"`
	HealthAttempts int           `yaml:"health_attempts"`
	HealthDelay    time.Duration `yaml:"health_delay"`
	LogFile        string        `yaml:"log_file"`
	LogTailLines   int           `yaml:"log_tail_lines"`
}

func (t *Target) applyDefaults() {
	if t.Dir == "" {
		t.Dir = "."
	}
	if t.Branch == "" {
		t.Branch = "main"
	}
	if t.Binary == "" {
		t.Binary = "./bin/rentalai"
	}
	if t.Port == 0 {
		t.Port = 5000
	}
	if t.HealthPath == "" {
		t.HealthPath = "/health"
	}
	if t.HealthAttempts <= 0 {
		t.HealthAttempts = 10
	}
	if t.HealthDelay <= 0 {
		t.HealthDelay = 3 * time.Second
	}
	if t.LogFile == "" {
		t.LogFile = "logs/rentalai.log"
	}
	if t.LogTailLines <= 0 {
		t.LogTailLines = 50
	}
}

func (t Target) IsLocal() bool {
	return t.Host == "" || strings.EqualFold(t.Host, "local")
}

// HealthURL is the health endpoint as seen from the target host.
func (t Target) HealthURL() string {
	return fmt.Sprintf("http://127.0.0.1:%d%s", t.Port, t.HealthPath)
}

type Targets map[string]Target

type targetsFile struct {
	Targets map[string]Target `yaml:"targets"`
}

// LoadTargets reads a deploy file of the form
//
//	targets:
//	  production:
//	    host: example.com
//	    ...
func LoadTargets(path string) (Targets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading deploy file: %w", err)
	}
	var f targetsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing deploy file: %w", err)
	}
	out := make(Targets, len(f.Targets))
	for name, t := range f.Targets {
		if t.Name == "" {
			t.Name = name
		}
		t.applyDefaults()
		out[name] = t
	}
	return out, nil
}

func (ts Targets) Get(name string) (Target, error) {
	t, ok := ts[name]
	if !ok {
		names := make([]string, 0, len(ts))
		for n := range ts {
			names = append(names, n)
		}
		sort.Strings(names)
		return Target{}, fmt.Errorf("unknown deploy target %q (known: %s)", name, strings.Join(names, ", "))
	}
	return t, nil
}
