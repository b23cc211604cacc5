// Command seed fills the configured store with fake profiles, connections,
// posts and notifications for local development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	"github.com/folio-social/folio-backend/config"
	authdomain "github.com/folio-social/folio-backend/internal/auth/domain"
	"github.com/folio-social/folio-backend/internal/bootstrap"
	feeddomain "github.com/folio-social/folio-backend/internal/feed/domain"
	"github.com/folio-social/folio-backend/internal/logging"
	profiledomain "github.com/folio-social/folio-backend/internal/profiles/domain"
)

func main() {
	users := flag.Int("users", 8, "number of profiles")
	posts := flag.Int("posts", 3, "posts per user")
	seed := flag.Int64("seed", 0, "faker seed (0 = random)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	gofakeit.Seed(*seed)
	ctx := context.Background()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to start services", zap.Error(err))
	}
	defer app.Close()

	ids, err := seedProfiles(ctx, app, *users)
	if err != nil {
		logger.Fatal("seed profiles", zap.Error(err))
	}
	if err := seedConnections(ctx, app, ids); err != nil {
		logger.Fatal("seed connections", zap.Error(err))
	}
	if err := seedFeed(ctx, app, ids, *posts); err != nil {
		logger.Fatal("seed feed", zap.Error(err))
	}
	logger.Info("seed complete", zap.Int("users", len(ids)), zap.Int("postsPerUser", *posts))
}

func seedProfiles(ctx context.Context, app *bootstrap.App, n int) ([]authdomain.Identity, error) {
	ids := make([]authdomain.Identity, 0, n)
	for i := 0; i < n; i++ {
		person := gofakeit.Person()
		name := person.FirstName + " " + person.LastName
		id := authdomain.Identity{
			UID:         fmt.Sprintf("seed-%s", gofakeit.LetterN(12)),
			Email:       person.Contact.Email,
			DisplayName: name,
			PhotoURL:    person.Image,
		}
		description := gofakeit.Sentence(12)
		showcase := []profiledomain.ShowcaseItem{{
			ID:      gofakeit.UUID(),
			Type:    profiledomain.ItemLink,
			Title:   gofakeit.AppName(),
			Content: gofakeit.Sentence(8),
			LinkURL: gofakeit.URL(),
		}}
		_, err := app.Profiles.UpdateProfile(ctx, id, profiledomain.ProfileUpdate{
			ProfileName:   &name,
			Description:   &description,
			ShowcaseItems: &showcase,
		})
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", id.UID, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// seedConnections links each user to the next one and leaves a pending
// request from every third user to the first.
func seedConnections(ctx context.Context, app *bootstrap.App, ids []authdomain.Identity) error {
	for i := 0; i+1 < len(ids); i++ {
		from, to := ids[i], ids[i+1]
		fromProfile, err := app.Profiles.GetProfile(ctx, from.UID)
		if err != nil {
			return err
		}
		req, err := app.Connections.SendRequest(ctx, from, fromProfile, to.UID)
		if err != nil {
			return err
		}
		if _, err := app.Connections.RespondToRequest(ctx, to.UID, req.ID, true, fromProfile); err != nil {
			return err
		}
	}
	for i := 3; i < len(ids); i += 3 {
		p, err := app.Profiles.GetProfile(ctx, ids[i].UID)
		if err != nil {
			return err
		}
		if _, err := app.Connections.SendRequest(ctx, ids[i], p, ids[0].UID); err != nil {
			return err
		}
	}
	return nil
}

// seedFeed posts for every user, then has neighbours like and comment,
// which also produces notifications.
func seedFeed(ctx context.Context, app *bootstrap.App, ids []authdomain.Identity, perUser int) error {
	for i, author := range ids {
		for j := 0; j < perUser; j++ {
			post, err := app.Feed.CreatePost(ctx, author, feeddomain.NewPost{
				Content: gofakeit.Paragraph(1, gofakeit.Number(1, 3), 12, " "),
			})
			if err != nil {
				return err
			}
			other := ids[(i+1)%len(ids)]
			if other.UID == author.UID {
				continue
			}
			if gofakeit.Bool() {
				if _, err := app.Feed.ToggleLike(ctx, other, post.ID); err != nil {
					return err
				}
			}
			if _, err := app.Feed.AddComment(ctx, other, post.ID, feeddomain.NewComment{
				Content: gofakeit.Sentence(gofakeit.Number(4, 14)),
			}); err != nil {
				return err
			}
		}
	}
	return nil
}
