package paths

import (
	"flag"
	"strings"
)

// SetupDocumentFlag registers a string flag on fs (flag.CommandLine if nil)
// naming the Aseprite document to open. The default is the first candidate
// that Find locates, or empty if none is found.
func SetupDocumentFlag(fs *flag.FlagSet, flagName string, flagPtr *string, candidates ...string) {
	if fs == nil {
		fs = flag.CommandLine
	}
	def := ""
	for _, c := range candidates {
		if def = Find(c); def != "" {
			break
		}
	}
	usage := "Path or URL of an Aseprite document (.aseprite or .ase)"
	if len(candidates) > 0 {
		usage += "; looked for " + strings.Join(candidates, ", ") + " in $" + DataEnv + " and the usual data directories"
	}
	fs.StringVar(flagPtr, flagName, def, usage)
}
