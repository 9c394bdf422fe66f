package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/templui/gallery/cmd/do/cmd"
	"github.com/templui/gallery/internal/logger"
)

func main() {
	maybeRebuild()

	flush := logger.Init(logger.Options{
		Development: os.Getenv("APP_ENV") != "production",
		AppName:     "gallery-do",
	})
	defer flush()

	rootCmd := &cobra.Command{
		Use:           "do",
		Short:         "Development and maintenance tools for the gallery",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(cmd.DevCmd())
	rootCmd.AddCommand(cmd.GenCmd())
	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.ImagesCmd())
	rootCmd.AddCommand(cmd.OrphansCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		flush()
		os.Exit(1)
	}
}

// maybeRebuild rebuilds bin/do and re-execs it when any cmd/do source is
// newer than the binary.
func maybeRebuild() {
	exe, err := os.Executable()
	if err != nil || !strings.HasSuffix(exe, "bin/do") {
		return
	}

	binInfo, err := os.Stat(exe)
	if err != nil {
		return
	}
	if !newerSources("cmd/do", binInfo.ModTime().UnixNano()) {
		return
	}

	fmt.Println("Rebuilding bin/do...")
	build := exec.Command("go", "build", "-o", exe, "./cmd/do")
	build.Stdout = os.Stdout
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		fmt.Println("Rebuild failed:", err)
		return
	}

	if err := syscall.Exec(exe, os.Args, os.Environ()); err != nil {
		fmt.Println("Re-exec failed:", err)
	}
}

func newerSources(root string, since int64) bool {
	var newer bool
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().UnixNano() > since {
			newer = true
			return filepath.SkipAll
		}
		return nil
	})
	return newer
}
