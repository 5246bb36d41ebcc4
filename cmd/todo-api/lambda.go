package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	echoadapter "github.com/awslabs/aws-lambda-go-api-proxy/echo"
	"github.com/spf13/cobra"

	"github.com/jacentio/todo-api/api"
	"github.com/jacentio/todo-api/stream"
)

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Serve API Gateway proxy events (default)",
	RunE:  runLambda,
}

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Consume DynamoDB stream events for the todo table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		h := stream.NewHandler(logger)
		lambda.Start(h.HandleChanges)
		return nil
	},
}

func runLambda(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	s, err := openStore(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	adapter := echoadapter.New(api.New(s, logger, api.WithAllowOrigins(cfg.AllowOrigins)))
	lambda.Start(adapter.ProxyWithContext)
	return nil
}
