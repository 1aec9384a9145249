package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type options struct {
	baseURL string
	token   string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "backoffice-cli",
		Short:         "Back-office ledger CLI tool",
		Long:          `A command line interface for operating the back-office ledger: schema migrations, audits, balance recomputes and API tokens.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the back-office API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("BACKOFFICE_TOKEN"), "Bearer token for the API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		ledgerCmd(opts),
		accountsCmd(opts),
		migrateCmd(),
		tokenCmd(),
	)

	return rootCmd
}

// apiError is a non-2xx answer from the API.
type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api returned %d: %s", e.Status, e.Body)
}

// call sends a request to the API and returns the raw body. Statuses listed
// in accept are returned without error next to 2xx.
func (o *options) call(method, path string, accept ...int) ([]byte, int, error) {
	req, err := http.NewRequest(method, o.baseURL+path, nil)
	if err != nil {
		return nil, 0, err
	}
	if o.token != "" {
		req.Header.Set("Authorization", "Bearer "+o.token)
	}

	client := &http.Client{Timeout: o.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	if resp.StatusCode/100 == 2 {
		return body, resp.StatusCode, nil
	}
	for _, code := range accept {
		if resp.StatusCode == code {
			return body, resp.StatusCode, nil
		}
	}
	return nil, resp.StatusCode, &apiError{Status: resp.StatusCode, Body: truncate(string(body), 512)}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
