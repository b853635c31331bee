// Package config holds the configuration contract the snapshot resolution core
// reads (spec §6): which dataset kinds to search, whether to echo live paths, and
// the mount topology to search under. It also carries the ambient concerns the
// teacher keeps alongside its domain config: verbosity-driven error formatting and
// an optional on-disk defaults file.
package config

import (
	"os"

	"github.com/k0kubun/pp"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/zfstm/zfstm/internal/mount"
)

// ErrorFormat switch between "%v" and "%+v" depending if we want more verbose info
var ErrorFormat = "%v"

// DefaultPath is where an on-disk defaults file is read from if none is given
// explicitly.
const DefaultPath = "/etc/zfstm/config.yaml"

func init() {
	pp.SetDefaultOutput(os.Stderr)
}

// SetVerboseMode change ErrorFormat and logs between verbose and non verbose mode
func SetVerboseMode(verbose bool) {
	if verbose {
		ErrorFormat = "%+v"
		log.SetFormatter(&log.TextFormatter{DisableLevelTruncation: true})
		log.SetLevel(log.DebugLevel)
		log.Debug("verbosity set to debug and will print stacktraces")
	} else {
		ErrorFormat = "%v"
		log.SetFormatter(&log.TextFormatter{
			DisableLevelTruncation: true,
			DisableTimestamp:       true,
		})
		log.SetLevel(log.WarnLevel)
	}
}

// Config is the configuration contract the core reads (spec §6). The core itself
// consults OptAltReplicated, OptNoLiveVers and SnapPoint; Pwd and
// OptRequestedDir are carried for collaborators outside the core. CLI-only
// concerns (formatting, execution mode) live in cmd/zfstm instead.
type Config struct {
	// OptAltReplicated enables replica fan-out (C7 dataset kind selection).
	OptAltReplicated bool
	// OptNoLiveVers suppresses echoing input paths as the live set.
	OptNoLiveVers bool
	// SnapPoint is the mount topology to search under.
	SnapPoint mount.Topology
	// Pwd is the caller's working directory, consumed by external collaborators
	// (restore destination, display) but carried here since the teacher keeps it
	// on the same struct.
	Pwd string
	// OptRequestedDir is the directory the interactive browser or deleted-lookup
	// is rooted at.
	OptRequestedDir string
}

// FileDefaults is the shape of the optional on-disk defaults file.
type FileDefaults struct {
	OptAltReplicated bool   `yaml:"opt_alt_replicated"`
	OptNoLiveVers    bool   `yaml:"opt_no_live_vers"`
	SnapDir          string `yaml:"snap_dir"`
	LocalDir         string `yaml:"local_dir"`
}

// Load reads FileDefaults from path. A missing file is not an error: it returns
// the zero value, matching how the teacher's config.DefaultPath is treated as
// optional by its callers.
func Load(path string) (FileDefaults, error) {
	var fd FileDefaults
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fd, nil
	}
	if err != nil {
		return fd, err
	}
	if err := yaml.Unmarshal(data, &fd); err != nil {
		return fd, err
	}
	return fd, nil
}
