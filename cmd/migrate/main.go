package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"

	"surveycopy/internal/datastore"
	"surveycopy/internal/fixture"
	"surveycopy/internal/models"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	app := &cli.App{
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(),
			commandImportSurvey(),
			commandDeleteSurvey(),
			commandPlugin(),
			commandConfig(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create tables and indexes",
		Action: func(c *cli.Context) error {
			db, err := getDb()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := datastore.Migrate(c.Context, db); err != nil {
				return err
			}

			log.Println("migrated")
			return nil
		},
	}
}

func commandImportSurvey() *cli.Command {
	return &cli.Command{
		Name:  "import-survey",
		Usage: "import a survey from a yaml file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			db, err := getDb()
			if err != nil {
				return err
			}
			defer db.Close()

			f, err := os.Open(c.String("input"))
			if err != nil {
				return err
			}
			defer f.Close()

			survey, err := fixture.ImportSurvey(c.Context, db, f)
			if err != nil {
				return err
			}

			for _, group := range survey.Groups {
				for _, question := range group.Questions {
					fmt.Printf("%d\t%d\t%d\t%s\n", survey.ID, group.ID, question.ID, question.Title)
				}
			}
			return nil
		},
	}
}

func commandDeleteSurvey() *cli.Command {
	return &cli.Command{
		Name:  "delete-survey",
		Usage: "delete a survey and everything under it",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:     "sid",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			db, err := getDb()
			if err != nil {
				return err
			}
			defer db.Close()

			return fixture.DeleteSurvey(c.Context, db, c.Int64("sid"))
		},
	}
}

func commandPlugin() *cli.Command {
	action := func(active bool) cli.ActionFunc {
		return func(c *cli.Context) error {
			name := c.Args().First()
			if name == "" {
				return errors.New("missing plugin name")
			}

			db, err := getDb()
			if err != nil {
				return err
			}
			defer db.Close()

			var plugin *models.Plugin
			if active {
				plugin, err = datastore.InstallAndActivatePlugin(c.Context, db, name)
			} else {
				plugin, err = datastore.DeactivatePlugin(c.Context, db, name)
			}
			if err != nil {
				return err
			}
			if plugin == nil {
				log.Printf("plugin %s not installed\n", name)
				return nil
			}

			log.Printf("plugin %s active=%t\n", plugin.Name, plugin.Active)
			return nil
		}
	}

	return &cli.Command{
		Name: "plugin",
		Subcommands: []*cli.Command{
			{
				Name:      "activate",
				ArgsUsage: "NAME",
				Action:    action(true),
			},
			{
				Name:      "deactivate",
				ArgsUsage: "NAME",
				Action:    action(false),
			},
		},
	}
}

func commandConfig() *cli.Command {
	return &cli.Command{
		Name: "config",
		Subcommands: []*cli.Command{
			{
				Name:      "set",
				ArgsUsage: "KEY VALUE",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return errors.New("usage: config set KEY VALUE")
					}

					db, err := getDb()
					if err != nil {
						return err
					}
					defer db.Close()

					return datastore.UpsertConfig(c.Context, db, &models.Config{
						Key:   c.Args().Get(0),
						Value: c.Args().Get(1),
					})
				},
			},
		},
	}
}

func getDb() (*bun.DB, error) {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		return nil, errors.New("missing DB_DSN")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
	))

	db := bun.NewDB(sqldb, pgdialect.New())
	return db, nil
}
