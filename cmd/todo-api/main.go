// Command todo-api serves the todo API on AWS Lambda or locally, and
// consumes the todo table's change stream.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jacentio/todo-api/internal/config"
	"github.com/jacentio/todo-api/store"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("todo-api failed")
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "todo-api",
	Short:         "Todo CRUD API backed by DynamoDB",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runLambda,
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(lambdaCmd, serveCmd, streamCmd)
}

// setup loads configuration and returns a configured logger.
func setup(cmd *cobra.Command) (config.Config, *log.Logger, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}

	logger := log.New()
	logger.SetFormatter(&log.JSONFormatter{})
	logger.SetOutput(os.Stdout)
	logger.SetLevel(cfg.Level())
	return cfg, logger, nil
}

// openStore builds the DynamoDB client and verifies the table schema.
func openStore(ctx context.Context, cfg config.Config, logger *log.Logger) (*store.Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	s := store.New(client, store.Config{
		TableName:   cfg.TableName,
		StatusIndex: cfg.StatusIndex,
	})
	if err := s.Init(ctx, cfg.SkipSchemaValidation); err != nil {
		return nil, err
	}

	logger.WithFields(log.Fields{
		"table":    cfg.TableName,
		"index":    cfg.StatusIndex,
		"region":   cfg.Region,
		"endpoint": cfg.Endpoint,
	}).Info("store ready")
	return s, nil
}
