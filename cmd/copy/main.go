package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"surveycopy/internal/datastore"
	"surveycopy/internal/models"
	"surveycopy/internal/pkg/logging"
	"surveycopy/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
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
	vs, err := env.EnvsRequired("DB_DSN")
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatal(err)
	}
	// nolint:errcheck
	defer logger.Sync()

	app := &cli.App{
		Name: "copy",
		Commands: []*cli.Command{
			commandCopyQuestion(vs, logger),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandCopyQuestion(vs map[string]string, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "question",
		Usage: "copy a question into a group under a new code",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "qid", Required: true},
			&cli.StringFlag{Name: "code", Required: true},
			&cli.Int64Flag{Name: "gid", Required: true},
			&cli.BoolFlag{Name: "subquestions"},
			&cli.BoolFlag{Name: "answers"},
			&cli.BoolFlag{Name: "defaults"},
			&cli.BoolFlag{Name: "settings"},
			&cli.StringFlag{Name: "mode", Value: string(models.CopyModeAtomic)},
		},
		Action: func(c *cli.Context) error {
			req := services.CopyQuestionRequest{
				QuestionID: c.Int64("qid"),
				Code:       c.String("code"),
				GroupID:    c.Int64("gid"),
				CopyOptions: services.CopyOptions{
					CopySubquestions:   c.Bool("subquestions"),
					CopyAnswerOptions:  c.Bool("answers"),
					CopyDefaultAnswers: c.Bool("defaults"),
					CopySettings:       c.Bool("settings"),
					Mode:               models.CopyMode(c.String("mode")),
				},
			}
			if err := req.Validate(); err != nil {
				return err
			}

			sqldb := sql.OpenDB(pgdriver.NewConnector(
				pgdriver.WithDSN(vs["DB_DSN"]),
				pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
			))
			db := bun.NewDB(sqldb, pgdialect.New())
			defer db.Close()

			source, err := datastore.GetQuestion(c.Context, db, req.QuestionID)
			if err != nil {
				return fmt.Errorf("question %d: %w", req.QuestionID, err)
			}
			if err := services.CheckCopySource(source); err != nil {
				return fmt.Errorf("question %d: %w", req.QuestionID, err)
			}
			group, err := datastore.GetQuestionGroup(c.Context, db, req.GroupID)
			if err != nil {
				return fmt.Errorf("group %d: %w", req.GroupID, err)
			}

			copier := services.NewCopyQuestion(db, services.CopyQuestionValues{
				QuestionToCopy:   source,
				QuestionCode:     req.Code,
				QuestionGroupID:  group.ID,
				QuestionSurveyID: group.SurveyID,
			}, logger)

			report, err := copier.Copy(c.Context, req.CopyOptions)
			var copyErr *services.CopyError
			if errors.As(err, &copyErr) {
				report = copyErr.Report
			} else if err != nil {
				return err
			}

			b, jsonErr := json.MarshalIndent(report, "", "  ")
			if jsonErr != nil {
				return jsonErr
			}
			fmt.Println(string(b))
			return err
		},
	}
}
