package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/rowbridge/rowbridge/internal/arrowconv"
	"github.com/rowbridge/rowbridge/internal/batch"
	"github.com/rowbridge/rowbridge/internal/config"
	"github.com/rowbridge/rowbridge/internal/convert"
	"github.com/rowbridge/rowbridge/internal/ingest"
	"github.com/rowbridge/rowbridge/internal/logger"
	"github.com/rowbridge/rowbridge/pkg/bigquery"
)

// Version is set at build time
var Version = "dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	if os.Args[1] == "version" {
		fmt.Println(Version)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)

	switch os.Args[1] {
	case "schema":
		runSchema(cfg, os.Args[2:])
	case "encode":
		runEncode(cfg, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: rowbridge <command> [flags]

commands:
  schema   convert a table schema descriptor to the canonical schema
  encode   convert msgpack binary rows to text rows for ingestion
  version  print version`)
}

// runSchema reads a descriptor JSON file, prints the canonical view of
// every field and the descriptor fingerprint.
func runSchema(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	in := fs.String("in", "", "path to table schema descriptor JSON")
	showArrow := fs.Bool("arrow", false, "also print the arrow schema used for columnar staging")
	fs.Parse(args)
	if *in == "" {
		fs.Usage()
		os.Exit(2)
	}

	ts, err := readTableSchema(*in)
	if err != nil {
		log.Fatal().Err(err).Str("path", *in).Msg("Failed to read descriptor")
	}

	schema, err := convert.FromTableSchema(ts, cfg.Convert.SchemaOptions())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to convert descriptor")
	}

	for _, f := range schema.Fields {
		nullable := "REQUIRED"
		if f.Nullable {
			nullable = "NULLABLE"
		}
		fmt.Printf("%s\t%s\t%s\n", f.Name, f.Type, nullable)
	}
	fmt.Printf("fingerprint\t%d\n", convert.FingerprintTableSchema(ts))

	if *showArrow {
		as, err := arrowconv.ToArrowSchema(schema)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to build arrow schema")
		}
		fmt.Println(as)
	}
}

// runEncode reads msgpack binary rows and a descriptor, converts every
// row to its text form and writes newline-delimited JSON.
func runEncode(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	schemaPath := fs.String("schema", "", "path to table schema descriptor JSON")
	in := fs.String("in", "", "path to msgpack row payload")
	out := fs.String("out", "", "output path (default stdout)")
	fs.Parse(args)
	if *schemaPath == "" || *in == "" {
		fs.Usage()
		os.Exit(2)
	}

	ts, err := readTableSchema(*schemaPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *schemaPath).Msg("Failed to read descriptor")
	}
	schema, err := convert.FromTableSchema(ts, cfg.Convert.SchemaOptions())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to convert descriptor")
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		log.Fatal().Err(err).Str("path", *in).Msg("Failed to read rows")
	}

	decoder := ingest.NewDecoder(logger.Get("ingest"), cfg.Convert.Options())
	records, err := decoder.DecodeRecords(data)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to decode rows")
	}
	converter := batch.NewConverter(cfg.Batch.Workers, cfg.Convert.Options(), logger.Get("batch"))
	rows, err := converter.ConvertAll(context.Background(), schema, records)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to convert rows")
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatal().Err(err).Str("path", *out).Msg("Failed to create output")
		}
		defer f.Close()
		w = f
	}
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	for i, row := range rows {
		tr, err := convert.RowToTableRow(schema, row)
		if err != nil {
			log.Fatal().Err(err).Int("row", i).Msg("Failed to encode row")
		}
		line, err := json.Marshal(tr)
		if err != nil {
			log.Fatal().Err(err).Int("row", i).Msg("Failed to marshal row")
		}
		bw.Write(line)
		bw.WriteByte('\n')
	}

	log.Info().Int("rows", len(rows)).Msg("Encoded rows")
}

func readTableSchema(path string) (*bigquery.TableSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ts bigquery.TableSchema
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, fmt.Errorf("parsing descriptor: %w", err)
	}
	return &ts, nil
}
