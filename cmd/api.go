package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bookywarm/wyrm/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to the backend
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	pretty := cmd.Bool("pretty")
	auth := cmd.Bool("auth")

	r.logger.Info("GET request", "path", path)

	resp, err := r.api.Do(ctx, http.MethodGet, path, nil, auth)
	if err != nil {
		if resp == nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty)
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

// APIPost makes a direct POST request to the backend
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	data := cmd.String("data")
	auth := cmd.Bool("auth")

	if data == "" {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}

	var body any
	if err := json.Unmarshal([]byte(data), &body); err != nil {
		return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, err)
	}

	r.logger.Info("POST request", "path", path)

	resp, err := r.api.Do(ctx, http.MethodPost, path, body, auth)
	if err != nil {
		if resp == nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, true)
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}
