package workflow

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"gopkg.in/yaml.v3"
)

// ResolveRemote fetches args.URL (if set) and merges it into args: only
// Steps, Variables and Selectors are backfilled from the remote document
// when the local value is absent or empty; every other field (Inputs,
// StopOnError, IncludeDetailedResults, OutputParser) always stays local.
func ResolveRemote(args ExecuteSequenceArgs) (ExecuteSequenceArgs, error) {
	if args.URL == "" {
		return args, nil
	}

	body, err := fetchURL(args.URL)
	if err != nil {
		return args, &ValidationError{Message: fmt.Sprintf("failed to fetch url %q: %v", args.URL, err)}
	}

	var remote ExecuteSequenceArgs
	if err := yaml.Unmarshal(body, &remote); err != nil {
		return args, &ValidationError{Message: fmt.Sprintf("failed to parse workflow document from %q: %v", args.URL, err)}
	}

	if len(args.Steps) == 0 {
		args.Steps = remote.Steps
	}
	if len(args.Variables) == 0 {
		args.Variables = remote.Variables
	}
	if len(args.Selectors) == 0 {
		args.Selectors = remote.Selectors
	}
	return args, nil
}

var httpClient = resty.New().SetTimeout(30 * time.Second)

func fetchURL(url string) ([]byte, error) {
	switch {
	case strings.HasPrefix(url, "file://"):
		return os.ReadFile(strings.TrimPrefix(url, "file://"))
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		resp, err := httpClient.R().Get(url)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("http status %d", resp.StatusCode())
		}
		return resp.Body(), nil
	default:
		return nil, fmt.Errorf("unsupported url scheme in %q", url)
	}
}
