// importposts loads posts from a JSON file into the configured database.
// Posts that already exist are skipped.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chilisites/postsapi/api"
	"github.com/chilisites/postsapi/blog/application"
	"github.com/chilisites/postsapi/blog/persistence"
	"github.com/chilisites/postsapi/internal/config"
	"github.com/chilisites/postsapi/internal/logging"
	"github.com/chilisites/postsapi/shared/db/factory"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

type importer interface {
	ImportPosts(ctx context.Context, posts []application.CreatePostInput) (application.ImportSummary, error)
}

func main() {
	os.Exit(execute(os.Args[1:]))
}

// execute runs one import and returns the process exit code.
func execute(args []string) int {
	flags := flag.NewFlagSet("importposts", flag.ContinueOnError)
	file := flags.String("file", "posts.json", "JSON file with an array of posts")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load config")
		return 1
	}
	logging.Setup(cfg.Env, cfg.LogLevel)

	ctx := context.Background()
	database, err := factory.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Error().Err(err).Msg("Failed to configure database")
		return 1
	}
	if err := database.Connect(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to connect to database")
		return 1
	}
	defer database.Close()

	svc := application.NewPostService(persistence.NewPostRepository(database.DB(), database.Dialect()))

	start := time.Now()
	summary, err := run(ctx, afero.NewOsFs(), *file, svc)
	if err != nil {
		log.Error().Err(err).Msg("Import failed")
		return 1
	}

	log.Info().
		Int("created", summary.Created).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Dur("took", time.Since(start).Truncate(time.Millisecond)).
		Msg("Import finished")
	return 0
}

func run(ctx context.Context, fs afero.Fs, file string, svc importer) (application.ImportSummary, error) {
	raw, err := afero.ReadFile(fs, file)
	if err != nil {
		return application.ImportSummary{}, fmt.Errorf("failed to read %s: %w", file, err)
	}

	var protos []api.PostProto
	if err := json.Unmarshal(raw, &protos); err != nil {
		return application.ImportSummary{}, fmt.Errorf("failed to parse %s: %w", file, err)
	}

	posts := make([]application.CreatePostInput, 0, len(protos))
	for _, p := range protos {
		posts = append(posts, application.CreatePostInput{
			Title:             p.Title,
			Slug:              p.Slug,
			Date:              p.Date,
			CoverReference:    p.Cover(),
			ExternalReference: p.External(),
		})
	}

	return svc.ImportPosts(ctx, posts)
}
