package commands

import (
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/assetbuilder/internal/version"
)

// VersionCmd implements the 'version' command.
type VersionCmd struct {
	Dir string `help:"Project directory whose revision is reported" default:"." type:"path"`
}

func (v *VersionCmd) Run() error {
	return PrintVersion(os.Stdout, v.Dir)
}

// PrintVersion writes the build metadata and the revision of dir to w.
func PrintVersion(w io.Writer, dir string) error {
	rev, err := version.Revision(dir)
	if err != nil {
		rev = "none"
	}
	_, err = fmt.Fprintf(w, "assetbuilder %s\ncommit: %s\nbuilt: %s\nproject revision: %s\n",
		version.Version, version.GitCommit, version.BuildTime, rev)
	return err
}
