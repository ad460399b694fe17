package cli

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AndreyAkinshin/testrig/internal/config"
	"github.com/AndreyAkinshin/testrig/internal/containers"
	testrigerrors "github.com/AndreyAkinshin/testrig/internal/errors"
	"github.com/AndreyAkinshin/testrig/internal/framework"
	"github.com/AndreyAkinshin/testrig/internal/project"
)

type setupOptions struct {
	framework  string
	yes        bool
	install    bool
	containers []string
	agents     int
}

func (a *app) setupCommand() *cobra.Command {
	var opts setupOptions
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Detect the project and create the test tree and config",
		Long: `Detect the project stack, optionally install the test framework, create
the tests/ folder tree and write test-rig.config.yaml.

Setup is idempotent: existing folders, config and compose files are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSetup(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.framework, "framework", "f", "", "test framework: vitest, jest or pytest")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "accept defaults without prompting")
	cmd.Flags().BoolVar(&opts.install, "install", false, "install the framework with npm or pip")
	cmd.Flags().StringSliceVar(&opts.containers, "containers", nil, "testcontainers to configure (postgres, redis, arangodb, mongodb, mysql)")
	cmd.Flags().IntVarP(&opts.agents, "agents", "a", 0, "default number of parallel agents")
	return cmd
}

func (a *app) runSetup(cmd *cobra.Command, opts setupOptions) error {
	root, err := a.getwd()
	if err != nil {
		return err
	}

	info, err := project.Detect(root)
	if err != nil {
		return testrigerrors.Config(err.Error())
	}

	a.out.Title("testrig setup")
	a.out.SummaryItem("Project", info.Name)
	a.out.SummaryItem("Stack", string(info.Tech))
	a.out.SummaryItem("Architecture", string(info.Kind))

	interactive := !a.opts.headless && !opts.yes
	prompt := &prompter{in: bufio.NewReader(a.stdin), out: a.out.Out()}

	fw := opts.framework
	if fw == "" {
		fw = info.DefaultFramework()
		if interactive {
			fw = prompt.choice("Test framework", framework.Names(), fw)
		}
	}
	if !slices.Contains(framework.Names(), fw) {
		return testrigerrors.Configf("unknown framework %q (want %s)", fw, strings.Join(framework.Names(), ", "))
	}

	selected := opts.containers
	if selected == nil && interactive {
		selected = prompt.list("Testcontainers (comma separated, empty for none)", containers.Supported())
	}
	for _, name := range selected {
		if _, ok := config.ContainerPorts[name]; !ok {
			return testrigerrors.Configf("unsupported container %q (want %s)", name, strings.Join(containers.Supported(), ", "))
		}
	}

	install := opts.install
	if !install && interactive {
		install = prompt.confirm(fmt.Sprintf("Install %s now", fw), false)
	}
	if install {
		a.out.Action("Installing %s...", fw)
		if err := framework.Install(cmd.Context(), a.exec, root, fw, info.Tech); err != nil {
			return err
		}
		a.out.Done("Installed %s", fw)
	}

	if err := project.CreateFolders(root); err != nil {
		return testrigerrors.Wrap(err, "create test folders")
	}
	a.out.Done("Created tests/ folder tree")

	cfg := config.Generate(config.GenerateOptions{Framework: fw, ParallelAgents: opts.agents, Containers: selected})
	if config.Exists(root) {
		a.out.Info("Keeping existing %s", config.FileName)
		if cfg, _, err = config.LoadConfig(root, ""); err != nil {
			return err
		}
	} else {
		path, err := config.Write(root, cfg)
		if err != nil {
			return testrigerrors.Wrap(err, "write config")
		}
		a.out.Done("Wrote %s", relPath(root, path))
	}

	parsed, err := cfg.ParsedContainers()
	if err != nil {
		return err
	}
	written, err := containers.WriteComposeFile(root, parsed)
	if err != nil {
		return err
	}
	if written {
		a.out.Done("Wrote %s", containers.ComposeFileName)
	}

	a.out.Section("Next steps")
	a.out.Step(1, "testrig generate <component>")
	a.out.Step(2, "testrig run")
	a.out.Step(3, "testrig run --parallel")
	return nil
}

// prompter asks line-based questions on stdin.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *prompter) ask(question, def string) string {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", question, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}
	line, _ := p.in.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

// choice accepts an option name or its 1-based index.
func (p *prompter) choice(question string, options []string, def string) string {
	for i, o := range options {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, o)
	}
	answer := p.ask(question, def)
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
		return options[n-1]
	}
	return answer
}

func (p *prompter) list(question string, options []string) []string {
	answer := p.ask(fmt.Sprintf("%s [%s]", question, strings.Join(options, ", ")), "")
	var out []string
	for _, item := range strings.Split(answer, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (p *prompter) confirm(question string, def bool) bool {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	switch strings.ToLower(p.ask(question+" ("+hint+")", "")) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return def
	}
}

func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}
