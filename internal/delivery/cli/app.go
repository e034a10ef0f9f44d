// Package cli implements the rakumart command line: one subcommand per API
// operation plus search display modes and the interactive console.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/run651/rakumart-1688/config"
	"github.com/run651/rakumart-1688/internal/domain"
	"github.com/run651/rakumart-1688/internal/infrastructure/rakumart"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitEmpty = 1 // the operation produced no result
	ExitUsage = 2 // bad flags or malformed JSON arguments
)

// App runs one command line invocation.
type App struct {
	cfg        *config.Config
	log        *zap.Logger
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	httpClient *http.Client
}

// New creates an App. Command output goes to stdout, diagnostics to stderr.
func New(cfg *config.Config, log *zap.Logger, stdin io.Reader, stdout, stderr io.Writer) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{cfg: cfg, log: log, stdin: stdin, stdout: stdout, stderr: stderr}
}

type command struct {
	name    string
	summary string
	run     func(a *App, ctx context.Context, args []string) int
}

func commands() []command {
	return []command{
		{"search", "Search products by keyword, filter and enrich them", (*App).runSearch},
		{"categories", "List the categories present in a keyword search", (*App).runCategories},
		{"console", "Search and browse the results interactively", (*App).runConsole},
		{"detail", "Fetch the detail of one product", (*App).runDetail},
		{"image", "Get the image id of a base64 encoded image", (*App).runImage},
		{"logistics", "List the available logistics carriers", (*App).runLogistics},
		{"tags", "List the available labelling tags", (*App).runTags},
		{"order", "Create an order", (*App).runOrder},
		{"update-status", "Update an order's status", (*App).runUpdateStatus},
		{"cancel", "Cancel an order", (*App).runCancel},
		{"orders", "List orders", (*App).runOrders},
		{"order-detail", "Fetch one order", (*App).runOrderDetail},
		{"stock", "List warehouse stock", (*App).runStock},
		{"porder", "Create a delivery order", (*App).runPorder},
		{"porder-update-status", "Update a delivery order's status", (*App).runPorderUpdateStatus},
		{"porder-cancel", "Cancel a delivery order", (*App).runPorderCancel},
		{"porders", "List delivery orders", (*App).runPorders},
		{"porder-detail", "Fetch one delivery order", (*App).runPorderDetail},
		{"ltrack", "Track an international shipment", (*App).runTrack},
	}
}

// Run dispatches args[0] to its subcommand and returns the exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		a.usage()
		return ExitUsage
	}
	name := args[0]
	switch name {
	case "help", "-h", "--help":
		a.usage()
		return ExitOK
	}
	for _, cmd := range commands() {
		if cmd.name == name {
			return cmd.run(a, ctx, args[1:])
		}
	}
	fmt.Fprintf(a.stderr, "unknown command %q\n\n", name)
	a.usage()
	return ExitUsage
}

func (a *App) usage() {
	fmt.Fprintln(a.stderr, "Usage: rakumart <command> [flags]")
	fmt.Fprintln(a.stderr)
	fmt.Fprintln(a.stderr, "Commands:")
	for _, cmd := range commands() {
		fmt.Fprintf(a.stderr, "  %-22s %s\n", cmd.name, cmd.summary)
	}
	fmt.Fprintln(a.stderr)
	fmt.Fprintln(a.stderr, "Run 'rakumart <command> --help' for the flags of a command.")
}

// callFlags are accepted by every command that calls the API.
type callFlags struct {
	timeout   string
	appKey    string
	appSecret string
	apiURL    string
	verbose   bool

	// endpoint overrides beyond --api-url, keyed by operation
	overrides map[rakumart.Operation]string
}

func (a *App) flagSet(name string, cf *callFlags) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.SortFlags = false
	fs.StringVar(&cf.timeout, "timeout", "", "HTTP timeout in seconds or as a duration (default api.timeout)")
	fs.StringVar(&cf.appKey, "app-key", "", "override the app key for this call")
	fs.StringVar(&cf.appSecret, "app-secret", "", "override the app secret for this call")
	fs.StringVar(&cf.apiURL, "api-url", "", "override the endpoint URL of this command")
	fs.BoolVarP(&cf.verbose, "verbose", "v", false, "print each request's endpoint and fields to stderr")
	return fs
}

// parse returns false with the exit code to use when parsing stopped.
func (a *App) parse(fs *pflag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return ExitOK, false
		}
		return ExitUsage, false
	}
	return ExitOK, true
}

// required reports the first empty required string flag.
func (a *App) required(fs *pflag.FlagSet, names ...string) (int, bool) {
	for _, name := range names {
		if f := fs.Lookup(name); f == nil || f.Value.String() == "" {
			fmt.Fprintf(a.stderr, "Error: --%s is required\n", name)
			return ExitUsage, false
		}
	}
	return ExitOK, true
}

// client builds an API client with the per-call overrides applied. The
// --api-url override goes to op.
func (a *App) client(cf *callFlags, op rakumart.Operation) (*rakumart.Client, error) {
	api := a.cfg.API
	if cf.appKey != "" {
		api.AppKey = cf.appKey
	}
	if cf.appSecret != "" {
		api.AppSecret = cf.appSecret
	}
	if cf.timeout != "" {
		d, err := parseTimeout(cf.timeout)
		if err != nil {
			return nil, err
		}
		api.Timeout = d
	}
	overrides := map[rakumart.Operation]string{op: cf.apiURL}
	for o, url := range cf.overrides {
		overrides[o] = url
	}
	for o, url := range overrides {
		if slot := rakumart.EndpointField(&api.Endpoints, o); slot != nil && url != "" {
			*slot = url
		}
	}

	opts, err := rakumart.OptionsFromConfig(api, a.log)
	if err != nil {
		return nil, err
	}
	opts.HTTPClient = a.httpClient
	client := rakumart.NewClient(opts)
	if cf.verbose {
		client.SetTrace(a.stderr)
	}
	return client, nil
}

// parseTimeout accepts plain seconds ("15", "2.5") or a duration ("500ms").
func parseTimeout(s string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("timeout must be positive, got %s", s)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", s)
	}
	return d, nil
}

// setupFailed reports an error raised before any call was made.
func (a *App) setupFailed(err error) int {
	fmt.Fprintln(a.stderr, "Error:", err)
	return ExitUsage
}

// failed reports a call that yielded no result. Invalid input maps to the
// usage exit code; everything else is an empty result.
func (a *App) failed(what string, err error) int {
	if errors.Is(err, domain.ErrInvalidRequest) {
		fmt.Fprintln(a.stderr, "Error:", err)
		return ExitUsage
	}
	fmt.Fprintf(a.stderr, "No %s returned.\n", what)
	if err != nil {
		fmt.Fprintln(a.stderr, "  cause:", err)
	}
	return ExitEmpty
}

// decodeArg parses a JSON-valued flag.
func (a *App) decodeArg(flag, value string, dst any) (int, bool) {
	if err := json.Unmarshal([]byte(value), dst); err != nil {
		fmt.Fprintf(a.stderr, "Error: --%s is not valid JSON: %v\n", flag, err)
		return ExitUsage, false
	}
	return ExitOK, true
}

// printJSON writes v as indented JSON without HTML escaping.
func (a *App) printJSON(v any) int {
	enc := json.NewEncoder(a.stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(a.stderr, "Error: encoding output:", err)
		return ExitEmpty
	}
	return ExitOK
}

// printValue prints a single text value, failing when it is empty.
func (a *App) printValue(what, value string) int {
	if value == "" {
		fmt.Fprintf(a.stderr, "No %s in response.\n", what)
		return ExitEmpty
	}
	fmt.Fprintln(a.stdout, value)
	return ExitOK
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
