package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/ssargent/navcodec/pkg/config"
)

const serviceName = "navcodec.service"

// Overridden in tests.
var (
	unitPath = "/etc/systemd/system/" + serviceName
	runCmd   = runCommand
	isRoot   = func() bool { return os.Geteuid() == 0 }
)

type unitOptions struct {
	Binary     string
	ConfigPath string
	User       string
	Mode       string
	Directory  string
	JournalDir string
}

var unitTemplate = template.Must(template.New("unit").Parse(`[Unit]
Description=navcodec {{if eq .Mode "watch"}}directory watcher{{else}}REST API server{{end}}
After=network-online.target
Wants=network-online.target

[Service]
User={{.User}}
Group={{.User}}
ExecStart={{.Binary}} --config {{.ConfigPath}}{{if .JournalDir}} --journal-dir {{.JournalDir}}{{end}} {{if eq .Mode "watch"}}auto --watch --directory {{.Directory}}{{else}}serve{{end}}
Restart=on-failure
NoNewPrivileges=true
UMask=0077
{{- if eq .Mode "watch"}}
ReadWritePaths={{.Directory}}
{{- end}}
{{- if .JournalDir}}
ReadWritePaths={{.JournalDir}}
{{- end}}
ReadWritePaths={{.ConfigDir}}

[Install]
WantedBy=multi-user.target
`))

func (o unitOptions) ConfigDir() string {
	return filepath.Dir(o.ConfigPath)
}

func renderSystemdUnit(opts unitOptions) (string, error) {
	if opts.Mode != "serve" && opts.Mode != "watch" {
		return "", fmt.Errorf("unknown service mode %q (want serve or watch)", opts.Mode)
	}
	if opts.Mode == "watch" && opts.Directory == "" {
		return "", fmt.Errorf("watch mode needs --directory")
	}
	var buf bytes.Buffer
	if err := unitTemplate.Execute(&buf, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func newServiceCmd() *cobra.Command {
	serviceCmd := &cobra.Command{
		Use:   "service",
		Short: "Manage navcodec as a systemd service",
		Long: `Manage navcodec as a systemd service. The service either runs the REST
API server or watches a directory for files to process.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}

	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install navcodec as a systemd service",
		Long: `Install navcodec as a systemd service.

This will:
- Create a configuration file if none exists
- Write the systemd unit file
- Enable and optionally start the service

Examples:
  navcodec service install
  navcodec service install --mode watch --directory /srv/nav --user nav`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isRoot() {
				return fmt.Errorf("service install requires root privileges (run with sudo)")
			}

			configPath := configPathFlag(cmd)
			user, _ := cmd.Flags().GetString("user")
			mode, _ := cmd.Flags().GetString("mode")
			directory, _ := cmd.Flags().GetString("directory")
			journalDir, _ := cmd.Flags().GetString("journal-dir")
			binary, _ := cmd.Flags().GetString("binary")
			startNow, _ := cmd.Flags().GetBool("start")

			if !config.ConfigExists(configPath) {
				if _, err := config.BootstrapConfig(configPath); err != nil {
					return err
				}
				cmd.Printf("Created new configuration at %s\n", configPath)
			} else if _, err := config.LoadConfig(configPath); err != nil {
				return err
			}

			unit, err := renderSystemdUnit(unitOptions{
				Binary:     binary,
				ConfigPath: configPath,
				User:       user,
				Mode:       mode,
				Directory:  directory,
				JournalDir: journalDir,
			})
			if err != nil {
				return err
			}
			if err := os.WriteFile(unitPath, []byte(unit), 0600); err != nil {
				return fmt.Errorf("failed to write unit file: %w", err)
			}

			if err := runCmd("systemctl", "daemon-reload"); err != nil {
				return fmt.Errorf("failed to reload systemd: %w", err)
			}
			if err := runCmd("systemctl", "enable", serviceName); err != nil {
				return fmt.Errorf("failed to enable service: %w", err)
			}
			if startNow {
				if err := runCmd("systemctl", "start", serviceName); err != nil {
					return fmt.Errorf("failed to start service: %w", err)
				}
			}

			cmd.Printf("Service %s installed (%s mode)\n", serviceName, mode)
			cmd.Printf("Config: %s\n", configPath)
			cmd.Printf("To view logs: sudo journalctl -u %s -f\n", serviceName)
			return nil
		},
	}
	installCmd.Flags().String("user", "navcodec", "user to run the service as")
	installCmd.Flags().String("mode", "serve", "what the service runs: serve or watch")
	installCmd.Flags().String("binary", "/usr/local/bin/navcodec", "path of the navcodec binary")
	installCmd.Flags().Bool("start", true, "start the service after installation")

	uninstallCmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Uninstall the navcodec service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isRoot() {
				return fmt.Errorf("service uninstall requires root privileges (run with sudo)")
			}

			_ = runCmd("systemctl", "stop", serviceName) // may already be stopped
			if err := runCmd("systemctl", "disable", serviceName); err != nil {
				cmd.Printf("Warning: could not disable service: %v\n", err)
			}
			if err := os.Remove(unitPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove unit file: %w", err)
			}
			if err := runCmd("systemctl", "daemon-reload"); err != nil {
				return fmt.Errorf("failed to reload systemd: %w", err)
			}

			cmd.Printf("Service %s uninstalled\n", serviceName)
			cmd.Printf("Note: configuration and journal files were not removed\n")
			return nil
		},
	}

	serviceCmd.AddCommand(installCmd, uninstallCmd)
	for _, action := range []string{"start", "stop", "restart", "status"} {
		serviceCmd.AddCommand(newSystemctlCmd(action))
	}

	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Show navcodec service logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			follow, _ := cmd.Flags().GetBool("follow")
			lines, _ := cmd.Flags().GetInt("lines")

			journalArgs := []string{"-u", serviceName}
			if follow {
				journalArgs = append(journalArgs, "-f")
			}
			if lines > 0 {
				journalArgs = append(journalArgs, fmt.Sprintf("-n%d", lines))
			}
			return runCmd("journalctl", journalArgs...)
		},
	}
	logsCmd.Flags().BoolP("follow", "f", false, "follow log output")
	logsCmd.Flags().IntP("lines", "n", 0, "number of lines to show")
	serviceCmd.AddCommand(logsCmd)

	return serviceCmd
}

func newSystemctlCmd(action string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: fmt.Sprintf("Run systemctl %s for the navcodec service", action),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runCmd("systemctl", action, serviceName); err != nil {
				return fmt.Errorf("systemctl %s failed: %w", action, err)
			}
			return nil
		},
	}
}

// runCommand runs a system command attached to the current terminal
func runCommand(command string, args ...string) error {
	c := exec.Command(command, args...)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}
