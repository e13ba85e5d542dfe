package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/darwinyusef/termsim/internal/events"
	"github.com/darwinyusef/termsim/internal/services"
	"github.com/darwinyusef/termsim/internal/tui"
	"github.com/darwinyusef/termsim/pkg/termsim"
)

// editorTerminator ends the content of a nano session in line mode.
const editorTerminator = "EOF"

var runCmd = &cobra.Command{
	Use:   "run <exercise_id>",
	Short: "Run an exercise in line mode, reading commands from stdin or a script",
	Long: `Run loads an exercise and feeds it one command per line, printing each
command's output followed by the exercise feedback. It needs no terminal and
is meant for scripts, CI and quick checks of exercise files.

Commands are read from --script, or from stdin when no script is given.
After a nano command, the following lines are the file content, up to a line
containing only EOF. Blank lines and lines starting with '#' are skipped.
The command 'exit' stops the run.

Exits with code 14 when the input ends before the exercise is completed.`,
	Example: `  termsim run linux-basics --script answers.txt
  printf 'pwd\nls\n' | termsim run linux-basics
  termsim run linux-basics --resume < answers.txt`,
	Args:              RequireExerciseID,
	ValidArgsFunction: completeExerciseIDs,
	RunE:              runRun,
}

var runFlags struct {
	script string
	resume bool
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runFlags.script, "script", "", "File with one command per line (default: stdin)")
	runCmd.Flags().BoolVar(&runFlags.resume, "resume", false, "Continue from saved progress")
}

func resetRunFlags() {
	runFlags.script = ""
	runFlags.resume = false
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	a, err := newApp(ctx, cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	in := cmd.InOrStdin()
	echo := runFlags.script != "" || !tui.IsInteractive()
	if runFlags.script != "" {
		f, err := os.Open(runFlags.script)
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		in = f
	}

	r := newLineRunner(a.manager, a.bus, cmd.OutOrStdout(), echo)
	defer r.Close()
	return r.Run(ctx, args[0], runFlags.resume, in)
}

// lineRunner drives an ExerciseManager from a line-oriented reader and
// prints what the full-screen terminal would show.
type lineRunner struct {
	mgr  *services.ExerciseManager
	out  io.Writer
	echo bool

	mu      sync.Mutex
	pending []events.Event
	unsub   func()
}

func newLineRunner(mgr *services.ExerciseManager, bus *events.Bus, out io.Writer, echo bool) *lineRunner {
	r := &lineRunner{mgr: mgr, out: out, echo: echo}
	r.unsub = bus.SubscribeAll(func(_ context.Context, e events.Event) {
		r.mu.Lock()
		r.pending = append(r.pending, e)
		r.mu.Unlock()
	})
	return r
}

// Close stops collecting events.
func (r *lineRunner) Close() {
	r.unsub()
}

// Run loads exerciseID and submits every line of in. It returns
// termsim.ErrExerciseIncomplete when in is exhausted first.
func (r *lineRunner) Run(ctx context.Context, exerciseID string, resume bool, in io.Reader) error {
	var err error
	if resume {
		var resumed bool
		_, resumed, err = r.mgr.ResumeExercise(ctx, exerciseID)
		if err == nil && resumed {
			r.println(tui.MutedStyle.Render("Resumed from saved progress."))
		}
	} else {
		_, err = r.mgr.LoadExercise(ctx, exerciseID)
	}
	r.flushEvents()
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if trimmed == "exit" {
			break
		}
		r.submit(ctx, line, scanner)
		if r.mgr.Completed() {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read commands: %w", err)
	}

	if !r.mgr.Completed() {
		p := r.mgr.Progress()
		return fmt.Errorf("%w: %s stopped at step %d of %d", termsim.ErrExerciseIncomplete, exerciseID, p.Current+1, p.Total)
	}
	return nil
}

func (r *lineRunner) submit(ctx context.Context, line string, scanner *bufio.Scanner) {
	if r.echo {
		sh := r.mgr.Shell()
		user := sh.Env()["USER"]
		if user == "" {
			user = termsim.DefaultUser
		}
		r.println(tui.Prompt(user, sh.Commands().FileSystem().CurrentPath()) + line)
	}

	res, _ := r.mgr.Submit(ctx, line)
	if req, ok := res.Editor(); ok {
		var content []string
		for scanner.Scan() {
			text := strings.TrimRight(scanner.Text(), "\r")
			if text == editorTerminator {
				break
			}
			content = append(content, text)
		}
		body := strings.Join(content, "\n")
		if len(content) > 0 {
			body += "\n"
		}
		res = r.mgr.CommitEdit(req, body)
	}

	for _, l := range tui.FormatOutput(res.Text()) {
		r.println(l)
	}
	r.flushEvents()
}

func (r *lineRunner) flushEvents() {
	r.mu.Lock()
	evs := r.pending
	r.pending = nil
	r.mu.Unlock()

	for _, e := range evs {
		for _, l := range tui.FormatEvent(e) {
			r.println(l)
		}
	}
}

func (r *lineRunner) println(s string) {
	fmt.Fprintln(r.out, s)
}
