package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var projectNameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

const starterSystem = `system {
	name: "%s"

	service api {
		components: [
			db Database { type: "postgres" }
		]

		fields: [
			+Name: str
		]

		methods: [
			+create(name: str) -> id
		]

		endpoints: [
			POST /%s -> create(body) -> { id: str }
		]
	}
}
`

const starterConfig = `output-dir: .
max-simple: false
watch:
  debounce: 100
serve:
  addr: ":4777"
history:
  driver: sqlite3
  dsn: .simal-history.db
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init [project-name]",
		Short: "Scaffold a starter .simal file and .simalrc.yaml",
		Long:  "Interactively scaffold a starter SiMAL source file and configuration so there's something to run `simal build` against immediately.",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	successColor := color.New(color.FgGreen, color.Bold)
	infoColor := color.New(color.FgCyan)

	var projectName string
	if len(args) > 0 {
		projectName = args[0]
	} else {
		prompt := &survey.Input{Message: "Project name:"}
		if err := survey.AskOne(prompt, &projectName, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}

	if !projectNameRe.MatchString(projectName) {
		return fmt.Errorf("project name can only contain letters, numbers, dashes, and underscores")
	}

	var outputMode string
	modePrompt := &survey.Select{
		Message: "Default output mode:",
		Options: []string{"both (full + simple)", "simple only", "max-simple only"},
		Default: "both (full + simple)",
	}
	if err := survey.AskOne(modePrompt, &outputMode); err != nil {
		return err
	}

	config := starterConfig
	if outputMode == "max-simple only" {
		config = `output-dir: .
max-simple: true
watch:
  debounce: 100
serve:
  addr: ":4777"
history:
  driver: sqlite3
  dsn: .simal-history.db
`
	}

	sourcePath := projectName + ".simal"
	if _, err := os.Stat(sourcePath); err == nil {
		return fmt.Errorf("%s already exists", sourcePath)
	}

	source := fmt.Sprintf(starterSystem, projectName, projectName)
	if err := os.WriteFile(sourcePath, []byte(source), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", sourcePath, err)
	}
	infoColor.Printf("  created %s\n", sourcePath)

	configPath := ".simalrc.yaml"
	if _, err := os.Stat(configPath); err != nil {
		if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", configPath, err)
		}
		infoColor.Printf("  created %s\n", configPath)
	}

	fmt.Println()
	successColor.Printf("scaffolded %s\n\n", projectName)
	infoColor.Println("Get started:")
	fmt.Printf("  simal build %s\n", filepath.Clean(sourcePath))
	return nil
}
