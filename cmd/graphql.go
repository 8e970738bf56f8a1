package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	graphqlOperation string
	graphqlVariables string
	graphqlFile      string
)

var graphqlCmd = &cobra.Command{
	Use:   "graphql [query]",
	Short: "Run a GraphQL query against the web API",
	Long: `Run a GraphQL query and print the data field of the response.

The query is taken from the argument, from --file, or from stdin when
neither is given. Variables are passed as a JSON object.

Example:
  tuner graphql --operation GetProfile --variables '{"webname":"me"}' < profile.graphql`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGraphQL,
}

func init() {
	rootCmd.AddCommand(graphqlCmd)

	graphqlCmd.Flags().StringVar(&graphqlOperation, "operation", "", "Operation name")
	graphqlCmd.Flags().StringVar(&graphqlVariables, "variables", "", "Variables as a JSON object")
	graphqlCmd.Flags().StringVar(&graphqlFile, "file", "", "Read the query from a file")
}

func runGraphQL(cmd *cobra.Command, args []string) error {
	query, err := readQuery(args)
	if err != nil {
		return err
	}

	var variables any
	if graphqlVariables != "" {
		if !json.Valid([]byte(graphqlVariables)) {
			return fmt.Errorf("--variables is not valid JSON")
		}
		variables = json.RawMessage(graphqlVariables)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	_, s, _, err := openSession(ctx)
	if err != nil {
		return err
	}

	resp, err := s.Client().GraphQL(ctx, graphqlOperation, query, variables)
	if err != nil {
		return err
	}
	return printJSON(resp.Data)
}

func readQuery(args []string) (string, error) {
	switch {
	case len(args) == 1:
		return args[0], nil
	case graphqlFile != "":
		data, err := os.ReadFile(graphqlFile)
		if err != nil {
			return "", fmt.Errorf("failed to read query: %w", err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read query: %w", err)
		}
		if len(data) == 0 {
			return "", fmt.Errorf("no query given")
		}
		return string(data), nil
	}
}
