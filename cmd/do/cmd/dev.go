package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

func DevCmd() *cobra.Command {
	var proxyPort, appPort int

	devCmd := &cobra.Command{
		Use:   "dev",
		Short: "Run the gallery server under air with live reload",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(proxyPort, appPort)
		},
	}
	devCmd.Flags().IntVar(&proxyPort, "port", 8080, "port the reloading proxy listens on")
	devCmd.Flags().IntVar(&appPort, "app-port", 8090, "port the server itself listens on")

	return devCmd
}

func runDev(proxyPort, appPort int) error {
	airPath, err := exec.LookPath("air")
	if err != nil {
		fmt.Println("Missing binary: air")
		fmt.Println("Install with: go install github.com/air-verse/air@latest")
		return fmt.Errorf("air not found")
	}

	fmt.Println("Building bin/do...")
	build := exec.Command("go", "build", "-o", "bin/do", "./cmd/do")
	build.Stdout = os.Stdout
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		return fmt.Errorf("failed to build do: %w", err)
	}

	env := append(os.Environ(), "PORT="+strconv.Itoa(appPort))
	if os.Getenv("APP_ENV") == "" {
		env = append(env, "APP_ENV=development")
	}

	return syscall.Exec(airPath, airArgs(proxyPort, appPort), env)
}

// airArgs configures air entirely from flags; no .air.toml is read
func airArgs(proxyPort, appPort int) []string {
	watched := []string{"go", "templ", "css", "js", "sql", "md"}
	ignored := []string{"bin", "node_modules", "tmp", "data", "_examples"}

	return []string{
		"air",
		"-c", "/dev/null",
		"-root", ".",
		"-build.cmd", "./bin/do gen && go build -o ./tmp/gallery ./cmd/server",
		"-build.bin", "./tmp/gallery",
		"-build.delay", "100",
		"-build.exclude_dir", strings.Join(ignored, ","),
		"-build.exclude_regex", `_test\.go$|_templ\.go$|output\.css$`,
		"-build.include_ext", strings.Join(watched, ","),
		"-build.kill_delay", "500ms",
		"-build.send_interrupt", "true",
		"-proxy.enabled", "true",
		"-proxy.proxy_port", strconv.Itoa(proxyPort),
		"-proxy.app_port", strconv.Itoa(appPort),
	}
}
