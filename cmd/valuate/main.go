// Command valuate prices one property from the command line. The request is a
// JSON object read from -request or stdin; the result is printed as JSON.
//
//	echo '{"latitude":42.31,"longitude":-71.05,"bedrooms":3}' | valuate -parcel-source models/parcels.db
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"irea.valuation/internal/app"
	"irea.valuation/internal/appconf"
	"irea.valuation/internal/apperr"
	"irea.valuation/internal/logging"
	"irea.valuation/internal/valuation"
)

func main() {
	request := flag.String("request", "", "Request JSON (read from stdin when empty)")

	cfg, err := appconf.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	logger := logging.NewLogger(os.Stderr, cfg.LogLevel)

	var in io.Reader = os.Stdin
	if *request != "" {
		in = strings.NewReader(*request)
	}

	if err := run(context.Background(), cfg, logger, in, os.Stdout); err != nil {
		logging.LogError(logger, "valuation failed", err)
		if apperr.IsClientError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appconf.Config, logger *slog.Logger, in io.Reader, out io.Writer) error {
	var req valuation.Request
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		if apperr.FieldErrors(err) != nil {
			return err
		}
		return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	res, err := application.Valuator.Valuate(ctx, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
