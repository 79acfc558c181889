package maincmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mna/mainer"
	"gopkg.in/yaml.v3"

	"stagevm/lang/block"
	"stagevm/lang/blockspec"
	"stagevm/lang/loader"
	"stagevm/lang/renderer"
	"stagevm/lang/runtime"
)

const binName = "stagevm"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <project.zip>
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <project.zip>
       %[1]s -h|--help
       %[1]s -v|--version

Loads a project archive, compiles every target's scripts, and runs the
cooperative tick scheduler until the process is interrupted.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

If a stagevm.yaml file exists in the working directory, its stage_width
and stage_height are read and passed to the renderer as its presentation
size before the project is loaded.
`, binName)

	// configName is the optional tuning file read from the working
	// directory, mirroring the project manifest's own fixed filename
	// convention rather than requiring a flag to locate it.
	configName = "stagevm.yaml"
)

// tuning mirrors the optional stagevm.yaml file: the renderer presentation
// size a host can override without recompiling. The logical stage size is
// not affected; no other knob is read.
type tuning struct {
	StageWidth  int `yaml:"stage_width"`
	StageHeight int `yaml:"stage_height"`
}

func loadTuning(path string) (tuning, error) {
	var t tuning
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return t, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &t); err != nil {
		return t, fmt.Errorf("parse config: %w", err)
	}
	return t, nil
}

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args []string
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(flags map[string]bool) {
	// no boolean-valued flags need their presence distinguished from their
	// zero value in this command.
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) != 1 {
		return fmt.Errorf("expected exactly one argument, the path to a project archive")
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.run(ctx, stdio, c.args[0]); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return mainer.Failure
	}
	return mainer.Success
}

// run loads the project archive at archivePath and drives the scheduler
// one tick at a time until ctx is cancelled, per the single-operation CLI
// surface: exit 0 on normal termination, non-zero on load failure.
func (c *Cmd) run(ctx context.Context, stdio mainer.Stdio, archivePath string) error {
	t, err := loadTuning(configName)
	if err != nil {
		return err
	}

	r := renderer.NewHeadless()
	if t.StageWidth > 0 && t.StageHeight > 0 {
		r.Resize(renderer.Size{Width: t.StageWidth, Height: t.StageHeight})
	}

	project, diags, err := loader.LoadProject(archivePath, blockspec.Standard(), r)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	for _, d := range diags {
		fmt.Fprintf(stdio.Stderr, "diagnostic: %s\n", d.Message)
	}

	rt := runtime.NewRuntime(project, r)
	rt.StartHats(block.Trigger{Kind: block.WhenFlagClicked})

	ticker := time.NewTicker(runtime.StepTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := rt.Step(); err != nil {
				return fmt.Errorf("step: %w", err)
			}
		}
	}
}
