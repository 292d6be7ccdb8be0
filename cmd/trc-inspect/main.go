// Command trc-inspect is an operator tool over the catalog store: list
// entries of a type, show one entry, or walk its version history.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	internalcatalog "github.com/tcat-tamu/trc-sub000/internal/catalog"
	"github.com/tcat-tamu/trc-sub000/internal/config"
	"github.com/tcat-tamu/trc-sub000/internal/observability"
	"github.com/tcat-tamu/trc-sub000/pkg/catalog"
	"github.com/tcat-tamu/trc-sub000/pkg/repo"
)

const usage = `usage: trc-inspect [-config file] <command> [args]

commands:
  list <works|relationships|accounts>
  show <works|relationships|accounts> <id>
  history <works|relationships|accounts> <id> [-actor id] [-limit n] [-reverse]
  version works <id> <version-id>
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "trc-inspect:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("trc-inspect", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	timeout := fs.Duration("timeout", 30*time.Second, "overall command timeout")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return fmt.Errorf("command required")
	}

	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	svc, err := internalcatalog.NewService(ctx, cfg, internalcatalog.ServiceOptions{
		Logger: observability.NewJSONLogger(os.Stderr),
	})
	if err != nil {
		return err
	}
	defer svc.Close(ctx)

	switch rest[0] {
	case "list":
		return runList(ctx, svc, rest[1:])
	case "show":
		return runShow(ctx, svc, rest[1:])
	case "history":
		return runHistory(ctx, svc, rest[1:])
	case "version":
		return runVersion(ctx, svc, rest[1:])
	default:
		return fmt.Errorf("unknown command %q", rest[0])
	}
}

func runList(ctx context.Context, svc *internalcatalog.Service, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("list: entry type required")
	}
	switch args[0] {
	case "works":
		return drain(svc.ListWorks(ctx))
	case "relationships":
		return drain(svc.ListRelationships(ctx))
	case "accounts":
		return drain(svc.ListAccounts(ctx))
	default:
		return fmt.Errorf("unknown entry type %q", args[0])
	}
}

func drain[D any](it *repo.Iterator[D]) error {
	enc := json.NewEncoder(os.Stdout)
	for it.Next() {
		if err := enc.Encode(it.Record()); err != nil {
			return err
		}
	}
	return it.Err()
}

func runShow(ctx context.Context, svc *internalcatalog.Service, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("show: entry type and id required")
	}
	var (
		record any
		err    error
	)
	switch args[0] {
	case "works":
		record, err = svc.GetWork(ctx, args[1])
	case "relationships":
		record, err = svc.GetRelationship(ctx, args[1])
	case "accounts":
		record, err = svc.GetAccount(ctx, args[1])
	default:
		return fmt.Errorf("unknown entry type %q", args[0])
	}
	if err != nil {
		return err
	}
	return printJSON(record)
}

func runHistory(ctx context.Context, svc *internalcatalog.Service, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("history: entry type and id required")
	}
	entryType, id := args[0], args[1]

	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	actor := fs.String("actor", "", "only versions committed by this actor")
	limit := fs.Int("limit", 0, "maximum number of versions")
	reverse := fs.Bool("reverse", false, "newest first")
	if err := fs.Parse(args[2:]); err != nil {
		return err
	}
	filter := repo.VersionFilter{Actor: *actor, Limit: *limit, Reverse: *reverse}

	var (
		metas []repo.VersionMeta
		err   error
	)
	switch entryType {
	case "works":
		metas, err = svc.WorkHistory(ctx, id, filter)
	case "relationships":
		metas, err = svc.RelationshipHistory(ctx, id, filter)
	case "accounts":
		metas, err = svc.AccountHistory(ctx, id, filter)
	default:
		return fmt.Errorf("unknown entry type %q", entryType)
	}
	if err != nil {
		return err
	}
	for _, meta := range metas {
		if err := printJSON(meta); err != nil {
			return err
		}
	}
	return nil
}

func runVersion(ctx context.Context, svc *internalcatalog.Service, args []string) error {
	if len(args) != 3 || args[0] != "works" {
		return fmt.Errorf("version: expected works <id> <version-id>")
	}
	versioned, err := svc.WorkVersion(ctx, args[1], args[2])
	if err != nil {
		return err
	}
	var record catalog.Work
	if err := json.Unmarshal(versioned.Data, &record); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	out := struct {
		repo.VersionMeta
		Record catalog.Work `json:"record"`
	}{versioned.VersionMeta, record}
	return printJSON(out)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Println(string(data))
	return err
}
