package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/angelmondragon/pointsdash/internal/analytics"
	"github.com/angelmondragon/pointsdash/internal/display"
	"github.com/angelmondragon/pointsdash/pkg/logger"
	"github.com/angelmondragon/pointsdash/pkg/types"
)

type options struct {
	addr    string
	token   string
	sort    string
	dir     string
	latest  bool
	animate bool
	timeout time.Duration
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "dashctl", Format: logger.FormatConsole, Output: os.Stderr})

	var opts options
	flag.StringVar(&opts.addr, "addr", "http://localhost:8080", "dashboard API base URL")
	flag.StringVar(&opts.token, "token", os.Getenv("POINTSDASH_TOKEN"), "bearer token (defaults to $POINTSDASH_TOKEN)")
	flag.StringVar(&opts.sort, "sort", "", "column to sort list sections by")
	flag.StringVar(&opts.dir, "dir", "asc", "sort direction: asc or desc")
	flag.BoolVar(&opts.latest, "latest", false, "show the last computed dashboard instead of recomputing")
	flag.BoolVar(&opts.animate, "animate", false, "count headline values up")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	snapshot, sortState, err := fetchSnapshot(ctx, http.DefaultClient, opts)
	if err != nil {
		logg.Error(ctx, "fetch dashboard", err)
		os.Exit(1)
	}

	var anim *display.Animation
	if opts.animate {
		a := display.DefaultAnimation()
		anim = &a
	}
	if err := render(context.Background(), os.Stdout, snapshot, sortState, anim); err != nil {
		logg.Error(ctx, "render dashboard", err)
		os.Exit(1)
	}
}

func fetchSnapshot(ctx context.Context, client *http.Client, opts options) (*analytics.Snapshot, *display.SortState, error) {
	if strings.TrimSpace(opts.token) == "" {
		return nil, nil, errors.New("token is required")
	}

	path := "/api/v1/dashboard"
	if opts.latest {
		path += "/latest"
	}
	query := url.Values{}
	if opts.sort != "" {
		query.Set("sort", opts.sort)
		query.Set("dir", opts.dir)
	}
	target := strings.TrimRight(opts.addr, "/") + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+opts.token)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request dashboard: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var envelope types.ErrorEnvelope
		if json.Unmarshal(body, &envelope) == nil && envelope.Error.Code != "" {
			return nil, nil, fmt.Errorf("%s: %s", envelope.Error.Code, envelope.Error.Message)
		}
		return nil, nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var envelope struct {
		Data analytics.Snapshot `json:"data"`
		Meta struct {
			Sort *display.SortState `json:"sort"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, nil, fmt.Errorf("decode dashboard: %w", err)
	}
	return &envelope.Data, envelope.Meta.Sort, nil
}
