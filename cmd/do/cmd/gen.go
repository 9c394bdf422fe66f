package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const (
	cssInput  = "assets/css/input.css"
	cssOutput = "assets/css/output.css"
)

type generator struct {
	name string
	bin  string
	args []string
	// upToDate skips the generator unless --force is given
	upToDate func() bool
}

var generators = []generator{
	{
		name:     "templ",
		bin:      "templ",
		args:     []string{"generate"},
		upToDate: templUpToDate,
	},
	{
		name:     "tailwindcss",
		bin:      "tailwindcss",
		args:     []string{"-i", cssInput, "-o", cssOutput, "--minify"},
		upToDate: func() bool { return isUpToDate(cssOutput, tailwindInputs()) },
	},
}

func GenCmd() *cobra.Command {
	var force bool

	genCmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate templ components and build the tailwind stylesheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(force)
		},
	}
	genCmd.Flags().BoolVarP(&force, "force", "f", false, "regenerate even when outputs are up to date")

	return genCmd
}

func runGen(force bool) error {
	var missing []string
	for _, g := range generators {
		if _, err := exec.LookPath(g.bin); err != nil {
			missing = append(missing, g.bin)
		}
	}
	if len(missing) > 0 {
		fmt.Println("Missing binaries:", missing)
		fmt.Println("Install with:")
		fmt.Println("  go install github.com/a-h/templ/cmd/templ@v0.3.960")
		fmt.Println("  # tailwindcss: https://tailwindcss.com/blog/standalone-cli")
		return fmt.Errorf("missing required binaries: %v", missing)
	}

	start := time.Now()

	// templ runs first so tailwind scans the freshly generated components
	for _, g := range generators {
		if !force && g.upToDate() {
			fmt.Printf("[%s] skipped\n", g.name)
			continue
		}

		genStart := time.Now()
		c := exec.Command(g.bin, g.args...)
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("%s: %w", g.name, err)
		}
		fmt.Printf("[%s] done (%s)\n", g.name, time.Since(genStart).Round(time.Millisecond))
	}

	fmt.Printf("done (%s)\n", time.Since(start).Round(time.Millisecond))
	return nil
}

// tailwindInputs lists every file whose class names end up in the stylesheet
func tailwindInputs() []string {
	inputs := []string{cssInput}
	_ = filepath.WalkDir("internal/ui", func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".templ") || strings.HasSuffix(path, ".go") {
			inputs = append(inputs, path)
		}
		return nil
	})
	jsFiles, _ := filepath.Glob("assets/js/*.js")
	return append(inputs, jsFiles...)
}

// templUpToDate reports whether every .templ file under internal has a
// generated file at least as new as itself
func templUpToDate() bool {
	return templStale("internal") == nil
}

func templStale(root string) []string {
	var stale []string
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".templ") {
			return nil
		}
		if !isUpToDate(strings.TrimSuffix(path, ".templ")+"_templ.go", []string{path}) {
			stale = append(stale, path)
		}
		return nil
	})
	return stale
}

func isUpToDate(output string, inputs []string) bool {
	outInfo, err := os.Stat(output)
	if err != nil {
		return false
	}
	outMod := outInfo.ModTime()

	for _, input := range inputs {
		inInfo, err := os.Stat(input)
		if err != nil {
			continue
		}
		if inInfo.ModTime().After(outMod) {
			return false
		}
	}
	return true
}
