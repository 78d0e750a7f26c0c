// Package slurm renders and submits the batch scripts that run the
// counting pipeline on the shared cluster.
package slurm

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Job describes one batch script.
type Job struct {
	Name      string
	Partition string

	// walltime, HH:MM:SS
	Time string

	// e.g. "16G"
	Memory string

	CPUs int

	// optional accounting group; omitted when empty
	Account string

	// environment modules loaded before the command
	Modules []string

	// the command line the job executes, already argv-split
	Command []string
}

// Render produces the batch script text. It is pure so scripts can be
// inspected (and tested) without a scheduler.
func Render(j Job) (string, error) {
	if len(j.Command) == 0 {
		return "", fmt.Errorf("job %q has no command", j.Name)
	}

	var b strings.Builder
	b.WriteString("#!/bin/bash\n")
	fmt.Fprintf(&b, "#SBATCH --job-name=%s\n", j.Name)
	fmt.Fprintf(&b, "#SBATCH --partition=%s\n", j.Partition)
	fmt.Fprintf(&b, "#SBATCH --time=%s\n", j.Time)
	fmt.Fprintf(&b, "#SBATCH --mem=%s\n", j.Memory)
	fmt.Fprintf(&b, "#SBATCH --cpus-per-task=%d\n", j.CPUs)
	fmt.Fprintf(&b, "#SBATCH --output=%s_%%j.out\n", j.Name)
	if j.Account != "" {
		fmt.Fprintf(&b, "#SBATCH --account=%s\n", j.Account)
	}
	b.WriteString("\n")

	for _, m := range j.Modules {
		fmt.Fprintf(&b, "module load %s\n", m)
	}
	if len(j.Modules) > 0 {
		b.WriteString("\n")
	}

	b.WriteString(shellJoin(j.Command))
	b.WriteString("\n")
	return b.String(), nil
}

// WriteScript renders the job and writes it executable to path.
func WriteScript(path string, j Job) (string, error) {
	script, err := Render(j)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		return "", err
	}
	return script, nil
}

// Submit hands a written script to sbatch and returns the scheduler's
// response line (e.g. "Submitted batch job 123456").
func Submit(scriptPath string) (string, error) {
	sbatch, err := exec.LookPath("sbatch")
	if err != nil {
		return "", fmt.Errorf("failed to find sbatch on PATH; is this a SLURM cluster?")
	}

	out, err := exec.Command(sbatch, scriptPath).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("failed to submit %s: %v: %s", scriptPath, err, string(out))
	}
	return strings.TrimSpace(string(out)), nil
}

// shellJoin quotes argv words that need it and joins them for the script,
// breaking long command lines with continuations per flag pair.
func shellJoin(argv []string) string {
	var words []string
	for _, w := range argv {
		if strings.ContainsAny(w, " \t\"'$&|;<>()*?!") {
			w = "'" + strings.ReplaceAll(w, "'", `'\''`) + "'"
		}
		words = append(words, w)
	}

	var b strings.Builder
	for i, w := range words {
		if i == 0 {
			b.WriteString(w)
			continue
		}
		// start a continuation line at each flag for readability
		if strings.HasPrefix(w, "-") {
			b.WriteString(" \\\n  ")
		} else {
			b.WriteString(" ")
		}
		b.WriteString(w)
	}
	return b.String()
}
