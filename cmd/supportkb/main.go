package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"supportkb/internal/config"
	"supportkb/internal/docstore"
	"supportkb/internal/embedding"
	"supportkb/internal/helper"
	"supportkb/internal/ingest"
	"supportkb/internal/render"
	"supportkb/internal/settings"
	"supportkb/internal/vectorstore"
)

const secretKeyEnv = "SUPPORTKB_SECRET_KEY"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", "./configs/config.yaml", "Path to the config file")
	filePath := flag.String("file", "", "Path to a document file to ingest")
	app := flag.String("app", "", "Application tag for the ingested document")
	title := flag.String("title", "", "Document title (defaults to the filename)")
	docID := flag.String("id", "", "Document id (defaults to a random one on ingest)")
	query := flag.String("query", "", "Search query")
	limit := flag.Int("limit", 0, "Maximum search results")
	renderDoc := flag.String("render", "", "Document id to render a page of")
	page := flag.Int("page", 1, "Page number to render (1-based)")
	out := flag.String("out", "page.png", "Output path for the rendered page")
	deleteDoc := flag.String("delete", "", "Document id to delete")
	stats := flag.Bool("stats", false, "Print vector store stats")
	flag.Parse()

	cfg := loadConfig(*configPath)
	pipeline, store := buildPipeline(cfg)
	ctx := context.Background()

	switch {
	case *filePath != "":
		id := *docID
		if id == "" {
			var err error
			if id, err = helper.NewDocID(); err != nil {
				log.Fatal().Err(err).Msg("Error generating document id")
			}
		}
		result, err := pipeline.Ingest(ctx, *filePath, id, *app, *title)
		if err != nil {
			log.Fatal().Err(err).Msg("Error ingesting document")
		}
		log.Info().Str("doc_id", id).Int("chunks", len(result.Chunks)).Msg("Ingested document")
		printJSON(result.Document)

	case *query != "":
		results := pipeline.Search(ctx, *query, vectorstore.SearchOptions{
			Limit:       *limit,
			Application: *app,
		})
		printJSON(results)

	case *renderDoc != "":
		data, err := pipeline.RenderPage(ctx, *renderDoc, *page)
		if err != nil {
			log.Fatal().Err(err).Msg("Error rendering page")
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			log.Fatal().Err(err).Msg("Error writing rendered page")
		}
		log.Info().Str("out", *out).Int("bytes", len(data)).Msg("Rendered page")

	case *deleteDoc != "":
		if err := pipeline.Delete(ctx, *deleteDoc); err != nil {
			log.Fatal().Err(err).Msg("Error deleting document")
		}

	case *stats:
		printJSON(store.Stats())

	default:
		fmt.Println("Provide one of -file, -query, -render, -delete or -stats")
		flag.Usage()
	}
}

func printJSON(v any) {
	s, err := helper.FormatJSON(v)
	if err != nil {
		log.Fatal().Err(err).Msg("Error formatting output")
	}
	fmt.Println(s)
}

func loadConfig(path string) *config.Config {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatal().Err(err).Msg("Error loading config")
		}
		cfg = config.Default()
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")
	return cfg
}

func buildPipeline(cfg *config.Config) (*ingest.Pipeline, vectorstore.Store) {
	var settingsStore settings.Store
	if cfg.SettingsPath != "" {
		fs, err := settings.NewFileStore(cfg.SettingsPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Error loading settings")
		}
		settingsStore = fs
	} else {
		settingsStore = settings.NewMapStore(nil)
	}

	secret := os.Getenv(secretKeyEnv)
	if secret == "" {
		secret = cfg.SecretKey
	}
	gateway := embedding.NewGateway(settingsStore, settings.NewAESDecryptor(secret))

	var (
		store vectorstore.Store
		err   error
	)
	switch cfg.VectorBackend {
	case "chromem":
		store, err = vectorstore.NewChromemStore(filepath.Join(cfg.DataDir, "chromem"), "chunks", gateway)
	default:
		store, err = vectorstore.NewFileStore(filepath.Join(cfg.DataDir, "vector_store.json"), gateway)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening vector store")
	}

	var docs docstore.Store
	if cfg.Database.DSN != "" {
		bunStore := docstore.NewBunStore(docstore.ConnectDB(&cfg.Database), cfg.Database.Debug)
		if err := bunStore.Init(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Error initializing database")
		}
		docs = bunStore
	} else {
		docs, err = docstore.NewFileStore(filepath.Join(cfg.DataDir, "documents.json"))
		if err != nil {
			log.Fatal().Err(err).Msg("Error opening document store")
		}
	}

	cache := render.NewPageCache(cfg.Render.CacheSize, time.Duration(cfg.Render.CacheTTLSecs)*time.Second)
	renderer := render.NewRenderer(ingest.PDFDir(cfg.DataDir), cache, cfg.Render.DPI, cfg.Render.MaxDimension)

	return ingest.New(cfg, store, docs, renderer, cache), store
}
