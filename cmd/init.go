package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tunaaoguzhann/dataforge/utils"
)

const sampleConfig = `# Connection settings. Every key can be overridden with DB_<KEY>,
# e.g. DB_HOST or DB_PASS. Supported drivers: mysql, pgsql, sqlite, sqlsrv.
database:
  driver: mysql
  host: 127.0.0.1
  port: "3306"
  name: app
  user: root
  pass: ""
  # driver_name: postgres   # pgsql only: use lib/pq instead of pgx
  params:
    charset: utf8mb4
`

const sampleMigrations = `# Each entry creates or alters one table.
# Types: integer, bigint, string, text, boolean, date, datetime, timestamp,
#        decimal, float, json, enum
migrations:
  - model: User              # table name "users"
    columns:
      - {name: id, type: integer, primary_key: true, auto_increment: true}
      - {name: name, type: string, length: 100}
      - {name: email, type: string, unique: true}
      - {name: active, type: boolean, default: true}
      - {name: created_at, type: timestamp, default_expr: CURRENT_TIMESTAMP}
    seed:
      count: 10
      fields:
        name: name
        email: email
        active: bool

  - table: posts
    columns:
      - {name: id, type: integer, primary_key: true, auto_increment: true}
      - {name: user_id, type: integer, references: users.id}
      - {name: title, type: string, length: 200}
      - {name: status, type: enum, values: [draft, published], default: draft}
      - {name: body, type: text, nullable: true}
    indexes:
      - [user_id, status]

# Altering an existing table:
#  - table: users
#    columns:
#      - {name: nickname, type: string, nullable: true, after: name}
#      - {name: name, type: string, length: 150, change: true}
#    drop: [legacy_flag]
#    rename: [{from: name, to: full_name}]
`

const sampleSeeds = `# Fake kinds: name, first_name, last_name, email, username, phone, word,
# sentence, paragraph, url, uuid, date, timestamp, now, bool,
# int:min:max, float:min:max:precision, pick:a:b:c
seeds:
  - table: posts
    count: 25
    fields:
      user_id: int:1:10
      title: sentence
      status: pick:draft:published
      body: paragraph
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new dataforge project",
	Long: `Write example config, migrations and seeds files to the current directory.
Existing files are left untouched.

Examples:
  dataforge init
`,
	Run: func(cmd *cobra.Command, args []string) {
		files := []struct {
			name    string
			content string
		}{
			{utils.DefaultConfigFile, sampleConfig},
			{"migrations.yaml", sampleMigrations},
			{"seeds.yaml", sampleSeeds},
		}

		for _, f := range files {
			if _, err := os.Stat(f.name); err == nil {
				fmt.Printf("⚠️  %s already exists, skipping\n", f.name)
				continue
			}
			if err := os.WriteFile(f.name, []byte(f.content), 0644); err != nil {
				fmt.Printf("❌ Error creating %s: %v\n", f.name, err)
				os.Exit(1)
			}
			fmt.Printf("✅ Created %s\n", f.name)
		}

		fmt.Println("📝 Edit " + utils.DefaultConfigFile + " with your connection settings")
		fmt.Println("🚀 Run 'dataforge migrate' to create the tables, then 'dataforge seed'")
		fmt.Println("💡 Go structs with db tags can be migrated from code through loader.FromStructs")
	},
}
