// Package detect reports which of the tools skills commonly depend on are
// installed, and at what version.
package detect

import (
	"context"
	"os/exec"
	goruntime "runtime"
	"strings"
	"time"

	"github.com/skillhub-labs/skillhub/internal/logger"
)

// probeTimeout bounds each version query so a hung tool cannot stall detect.
const probeTimeout = 5 * time.Second

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands found on PATH.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, err
	}
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// probe is one tool and the commands that may report its version, tried
// in order.
type probe struct {
	key      string
	commands [][]string
}

var probes = []probe{
	{key: "node", commands: [][]string{{"node", "--version"}}},
	{key: "python", commands: [][]string{{"python3", "--version"}, {"python", "--version"}}},
	{key: "git", commands: [][]string{{"git", "--version"}}},
	{key: "p4", commands: [][]string{{"p4", "-V"}}},
}

// Report maps a tool to its version line. A nil value means the tool is
// not installed.
type Report map[string]*string

// Probe queries every known tool. It never fails; missing or broken tools
// are reported as nil.
func Probe(ctx context.Context, run Runner) Report {
	if run == nil {
		run = ExecRunner
	}

	goVersion := goruntime.Version()
	report := Report{"go": &goVersion}

	for _, p := range probes {
		report[p.key] = nil
		for _, c := range p.commands {
			version, ok := query(ctx, run, c)
			if ok {
				report[p.key] = &version
				break
			}
		}
	}
	return report
}

func query(ctx context.Context, run Runner, command []string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out, err := run(ctx, command[0], command[1:]...)
	if err != nil {
		logger.G(ctx).WithField("command", command[0]).WithError(err).Debug("tool not available")
		return "", false
	}
	line := firstLine(string(out))
	if line == "" {
		return "", false
	}
	return line, true
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
