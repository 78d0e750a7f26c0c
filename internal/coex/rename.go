package coex

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/madeline1230/Coexistence-for-Dis-evo/internal/platemap"
	"github.com/spf13/cobra"
)

// rawRe matches the file names the sequencing core delivers, e.g.
// 000000000-GRN6V_l01_n01_CoexP1_1__A1.fastq.gz. Capture groups: read
// number (n01/n02), run name, well.
var rawRe = regexp.MustCompile(`^[A-Za-z0-9-]+_l\d+_n0([12])_([^_]+)_\d+__([^.]+)\.fastq\.gz$`)

// renameOp is one planned file operation.
type renameOp struct {
	src, dst string

	// sort keys
	well, read string
}

// Rename is the handler for `coex rename`. It renames (or copies, or
// symlinks) raw FASTQ files to <run>_<paddedWell>_R<1|2>.fastq.gz.
func Rename(cmd *cobra.Command, args []string) {
	dir := args[0]
	out, _ := cmd.Flags().GetString("out")
	symlink, _ := cmd.Flags().GetBool("symlink")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if symlink && out == "" {
		stderr.Println("warning: --symlink requires --out, ignoring --symlink")
		symlink = false
	}

	ops, err := planRename(dir, out)
	if err != nil {
		stderr.Fatalf("%v", err)
	}
	if len(ops) == 0 {
		fmt.Println("No files matching the raw sequencer pattern found.")
		fmt.Println("Expected names like: 000000000-GRN6V_l01_n01_CoexP1_1__A1.fastq.gz")
		return
	}

	if out != "" {
		if err := os.MkdirAll(out, 0755); err != nil {
			stderr.Fatalf("failed to create output directory: %v", err)
		}
	}

	mode := "rename"
	if out != "" {
		mode = "copy"
		if symlink {
			mode = "symlink"
		}
	}
	fmt.Printf("Found %d files to %s\n", len(ops), mode)

	succeeded, failed := 0, 0
	for _, op := range ops {
		if dryRun {
			fmt.Printf("would %s: %s -> %s\n", mode, filepath.Base(op.src), filepath.Base(op.dst))
			continue
		}

		if _, err := os.Lstat(op.dst); err == nil {
			stderr.Printf("warning: %s already exists, skipping %s", filepath.Base(op.dst), filepath.Base(op.src))
			failed++
			continue
		}

		if err := applyRename(op, mode); err != nil {
			stderr.Printf("warning: %s: %v", filepath.Base(op.src), err)
			failed++
			continue
		}
		fmt.Printf("%s: %s -> %s\n", mode, filepath.Base(op.src), filepath.Base(op.dst))
		succeeded++
	}

	if dryRun {
		fmt.Printf("Dry run complete, %d files would be processed.\n", len(ops))
		return
	}
	fmt.Printf("Done: %d files processed", succeeded)
	if failed > 0 {
		fmt.Printf(", %d skipped", failed)
	}
	fmt.Println()
}

// planRename scans dir for raw FASTQ files and builds their operations,
// sorted by well then read number.
func planRename(dir, out string) ([]renameOp, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %v", dir, err)
	}

	dstDir := dir
	if out != "" {
		dstDir = out
	}

	var ops []renameOp
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := rawRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		read, run, well := m[1], m[2], platemap.PadWell(m[3])
		dst := fmt.Sprintf("%s_%s_R%s.fastq.gz", run, well, read)
		ops = append(ops, renameOp{
			src:  filepath.Join(dir, e.Name()),
			dst:  filepath.Join(dstDir, dst),
			well: well,
			read: read,
		})
	}

	sort.Slice(ops, func(i, j int) bool {
		if ops[i].well != ops[j].well {
			return ops[i].well < ops[j].well
		}
		return ops[i].read < ops[j].read
	})
	return ops, nil
}

// applyRename performs one operation in the chosen mode.
func applyRename(op renameOp, mode string) error {
	switch mode {
	case "symlink":
		src, err := filepath.Abs(op.src)
		if err != nil {
			return err
		}
		return os.Symlink(src, op.dst)
	case "copy":
		return copyFile(op.src, op.dst)
	default:
		return os.Rename(op.src, op.dst)
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".partial"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
