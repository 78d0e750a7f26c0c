package coex

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/madeline1230/Coexistence-for-Dis-evo/config"
	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/slurm"
	"github.com/spf13/cobra"
)

// Submit is the handler for `coex submit`: render the batch script for
// `coex count` and optionally hand it to sbatch.
func Submit(cmd *cobra.Command, args []string) {
	c := config.New()

	out, _ := cmd.Flags().GetString("out")
	jobName, _ := cmd.Flags().GetString("job-name")
	cpus, _ := cmd.Flags().GetInt("cpus")
	if cpus < 1 {
		cpus = c.Cluster.CPUs
	}
	scriptOut, _ := cmd.Flags().GetString("script-out")
	if scriptOut == "" {
		scriptOut = filepath.Join(out, "count_job.sh")
	}
	toStdout, _ := cmd.Flags().GetBool("stdout")
	run, _ := cmd.Flags().GetBool("run")

	job := slurm.Job{
		Name:      jobName,
		Partition: c.Cluster.Partition,
		Time:      c.Cluster.Time,
		Memory:    c.Cluster.Memory,
		CPUs:      cpus,
		Account:   c.Cluster.Account,
		Modules:   c.Cluster.Modules,
		Command:   countCommand(cmd, cpus),
	}

	if err := os.MkdirAll(filepath.Dir(scriptOut), 0755); err != nil {
		stderr.Fatalf("failed to create script directory: %v", err)
	}
	script, err := slurm.WriteScript(scriptOut, job)
	if err != nil {
		stderr.Fatalf("failed to write batch script: %v", err)
	}
	stderr.Printf("wrote %s", scriptOut)

	if toStdout {
		fmt.Print(script)
	}

	if run {
		resp, err := slurm.Submit(scriptOut)
		if err != nil {
			stderr.Fatalf("%v", err)
		}
		fmt.Println(resp)
	}
}

// countCommand rebuilds the `coex count` invocation the job will run from
// the flags passed to submit. Threads follow the CPU request.
func countCommand(cmd *cobra.Command, cpus int) []string {
	exe, err := os.Executable()
	if err != nil {
		exe = "coex"
	}
	argv := []string{exe, "count"}

	for _, flag := range []string{"fastq-dir", "out", "template", "barcode-list", "multi-bc", "sample"} {
		if v, _ := cmd.Flags().GetString(flag); v != "" {
			argv = append(argv, "--"+flag, v)
		}
	}
	for _, flag := range []string{"skip-split", "demux-only", "remap", "use-bowtie2"} {
		if v, _ := cmd.Flags().GetBool(flag); v {
			argv = append(argv, "--"+flag)
		}
	}
	if paired, _ := cmd.Flags().GetBool("paired-end"); !paired {
		argv = append(argv, "--paired-end=false")
	}
	if rl, _ := cmd.Flags().GetInt("read-length"); rl > 0 {
		argv = append(argv, "--read-length", strconv.Itoa(rl))
	}
	argv = append(argv, "--threads", strconv.Itoa(cpus))

	return argv
}
