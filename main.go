package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/statement-csv/cmd/batch"
	"fjacquet/statement-csv/cmd/convert"
	"fjacquet/statement-csv/cmd/dump"
	"fjacquet/statement-csv/cmd/formats"
	"fjacquet/statement-csv/cmd/mbank"
	"fjacquet/statement-csv/cmd/raiffeisen"
	"fjacquet/statement-csv/cmd/root"
	"fjacquet/statement-csv/cmd/summary"
	"fjacquet/statement-csv/cmd/survey"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func init() {
	// Environment first, so STMT_LOG_LEVEL applies before anything logs
	loadEnvSilently()
	root.Log.SetLevel(logLevelFromEnv())

	root.Init()

	root.Cmd.AddCommand(convert.Cmd)
	root.Cmd.AddCommand(dump.Cmd)
	root.Cmd.AddCommand(mbank.Cmd)
	root.Cmd.AddCommand(raiffeisen.Cmd)
	root.Cmd.AddCommand(batch.Cmd)
	root.Cmd.AddCommand(survey.Cmd)
	root.Cmd.AddCommand(summary.Cmd)
	root.Cmd.AddCommand(formats.Cmd)
}

// loadEnvSilently loads environment variables without logging anything
func loadEnvSilently() {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}
	_ = godotenv.Load(envFile)
}

func logLevelFromEnv() logrus.Level {
	level, err := logrus.ParseLevel(strings.ToLower(os.Getenv("STMT_LOG_LEVEL")))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
