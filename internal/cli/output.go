package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/skillhub-labs/skillhub/internal/config"
	"github.com/skillhub-labs/skillhub/internal/errdefs"
	"github.com/skillhub-labs/skillhub/internal/registry"
	"github.com/skillhub-labs/skillhub/internal/vcs"
)

var (
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

// PrintError reports err the way the user should see it. Ambiguous matches
// list every candidate so the user can pick one.
func PrintError(w io.Writer, err error) {
	if amb, ok := errdefs.AsAmbiguity(err); ok {
		fmt.Fprintf(w, "AMBIGUITY_ERROR: Found multiple %s skills matching \"%s\":\n", amb.Scope, amb.Pattern)
		for _, c := range amb.Candidates {
			fmt.Fprintf(w, " - %s\n", c)
		}
		fmt.Fprintln(w, "Please choose one of the candidates above and run the command again with a more specific name.")
		return
	}
	errorColor.Fprint(w, "Error: ")
	fmt.Fprintln(w, err)
}

func loadConfig() (*config.Config, error) {
	return config.Load(config.ResolvePath(configPath))
}

func newMirror(cfg *config.Config) *registry.Mirror {
	return registry.New(cfg.MirrorDir(), cfg.Registry.URL, cfg.Branch(), vcs.NewGit())
}
