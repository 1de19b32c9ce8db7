package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tunaaoguzhann/dataforge/dialect"
	"github.com/tunaaoguzhann/dataforge/loader"
	"github.com/tunaaoguzhann/dataforge/utils"
	"github.com/tunaaoguzhann/dataforge/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a migrations file without touching the database",
	Long: `Validate your migrations file against the rules of a dialect.

Checks include:
- Table and column naming (identifier length, allowed characters)
- Data types the dialect can render
- Primary key and auto increment usage
- Default values against column types
- Foreign key references between migrations
- Index definitions

The dialect comes from --dialect, then from the config file, then defaults to mysql.

Examples:
  dataforge validate                          # Validate migrations.yaml
  dataforge validate -f custom.yaml           # Validate another file
  dataforge validate --dialect pgsql          # Validate for PostgreSQL
  dataforge validate --format json            # Output validation results as JSON
`,
	Run: func(cmd *cobra.Command, args []string) {
		valid, err := validateMigrations()
		if err != nil {
			fmt.Printf("❌ Schema validation failed: %v\n", err)
			os.Exit(1)
		}
		if !valid {
			os.Exit(1)
		}
	},
}

var (
	validateFile    string
	validateFormat  string
	validateDialect string
)

func init() {
	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "migrations.yaml", "Migrations file to validate")
	validateCmd.Flags().StringVar(&validateDialect, "dialect", "", "Dialect to validate for (mysql, pgsql, sqlite, sqlsrv)")
	validateCmd.Flags().StringVar(&validateFormat, "format", "text", "Output format (text, json)")
}

func validateMigrations() (bool, error) {
	migrations, err := loader.LoadMigrations(validateFile)
	if err != nil {
		return false, fmt.Errorf("failed to load migrations: %w", err)
	}

	d, err := dialect.Parse(resolveDialect())
	if err != nil {
		return false, err
	}

	result := validator.NewSchemaValidator(d).Validate(migrations)
	if validateFormat == "json" {
		return result.Valid, outputJSON(result)
	}
	outputText(result)
	return result.Valid, nil
}

func resolveDialect() string {
	if validateDialect != "" {
		return validateDialect
	}
	if cfg, err := utils.LoadConfig(configPath()); err == nil {
		return cfg.Driver
	}
	return string(dialect.MySQL)
}

func outputJSON(result *validator.ValidationResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputText(result *validator.ValidationResult) {
	if result.Valid {
		color.Green("✅ Schema validation passed!")
	} else {
		color.Red("❌ Schema validation failed!")
	}

	printIssues("🔴 Errors", result.Errors)
	printIssues("🟡 Warnings", result.Warnings)
	printIssues("🔵 Info", result.Info)

	fmt.Printf("\n📊 Summary:\n")
	fmt.Printf("  • Errors: %d\n", len(result.Errors))
	fmt.Printf("  • Warnings: %d\n", len(result.Warnings))
	fmt.Printf("  • Info: %d\n", len(result.Info))

	if result.Valid {
		fmt.Printf("\n🎉 Your migrations are valid and ready to run!\n")
	} else {
		fmt.Printf("\n💡 Fix the errors above before running migrations.\n")
	}
}

func printIssues(title string, issues []validator.ValidationError) {
	if len(issues) == 0 {
		return
	}
	fmt.Printf("\n%s (%d):\n", title, len(issues))
	for i, issue := range issues {
		fmt.Printf("  %d. ", i+1)
		if issue.Table != "" {
			fmt.Printf("[%s]", issue.Table)
		}
		if issue.Column != "" {
			fmt.Printf(".%s", issue.Column)
		}
		if issue.Index != "" {
			fmt.Printf(" (index: %s)", issue.Index)
		}
		fmt.Printf(": %s\n", issue.Message)
	}
}
