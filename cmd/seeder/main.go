package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"

	"github.com/poiesic/expertfind/config"
	"github.com/poiesic/expertfind/core"
	"github.com/poiesic/expertfind/profiles"
)

// seedProfile is one line of a seed file.
type seedProfile struct {
	ID                int64  `json:"user_id"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Expertise         string `json:"expertise"`
	YearsOfExperience string `json:"years_of_experience"`
	Organization      string `json:"organization_detail"`
	FieldOfInterest   string `json:"field_of_interest"`
	Requirements      string `json:"requirements"`
}

func (p seedProfile) record() core.ProfileRecord {
	return core.ProfileRecord{
		ID:                p.ID,
		FirstName:         p.FirstName,
		LastName:          p.LastName,
		Expertise:         p.Expertise,
		YearsOfExperience: p.YearsOfExperience,
		Organization:      p.Organization,
		FieldOfInterest:   p.FieldOfInterest,
		Requirements:      p.Requirements,
	}
}

var samples = []core.ProfileRecord{
	{ID: 1, FirstName: "Priya", LastName: "Raman", Expertise: "Distributed systems, Go", YearsOfExperience: "9", Organization: "Google", FieldOfInterest: "Consensus protocols", Requirements: "Remote mentoring"},
	{ID: 2, FirstName: "Tomas", LastName: "Keller", Expertise: "Machine learning, NLP", YearsOfExperience: "6", Organization: "Microsoft Research", FieldOfInterest: "Retrieval augmented generation", Requirements: "Paid engagements"},
	{ID: 3, FirstName: "Amara", LastName: "Okafor", Expertise: "Cloud security", YearsOfExperience: "12", Organization: "Amazon Web Services", FieldOfInterest: "Zero trust networking", Requirements: "On-site workshops"},
	{ID: 4, FirstName: "Lena", LastName: "Fischer", Expertise: "Data engineering, Kafka", YearsOfExperience: "4", Organization: "Spotify", FieldOfInterest: "Streaming analytics", Requirements: "Part-time"},
	{ID: 5, FirstName: "Diego", LastName: "Morales", Expertise: "Mobile development, Kotlin", YearsOfExperience: "7", Organization: "Google", FieldOfInterest: "Accessibility", Requirements: "Remote"},
	{ID: 6, FirstName: "Hana", LastName: "Sato", Expertise: "Computer vision", YearsOfExperience: "10", Organization: "Sony", FieldOfInterest: "Robotics", Requirements: "Research collaborations"},
	{ID: 7, FirstName: "Omar", LastName: "Haddad", Expertise: "Product management", YearsOfExperience: "15", Organization: "Microsoft", FieldOfInterest: "Developer tools", Requirements: "Advisory roles"},
	{ID: 8, FirstName: "Sofia", LastName: "Lindqvist", Expertise: "Databases, PostgreSQL", YearsOfExperience: "3", Organization: "Klarna", FieldOfInterest: "Query optimization", Requirements: "Remote"},
}

var (
	configFile = flag.String("config", "", "path to YAML config file")
	envFile    = flag.String("env-file", "", "path to a .env file")
	seedFile   = flag.String("src", "", "file of seed profiles, one JSON object per line")
	batchSize  = flag.Int("batch", 5, "profiles per insert")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

// profilesFromFile returns an iterator over the profiles in a JSON lines file.
// A malformed line stops iteration and is reported through errp.
func profilesFromFile(filename string, errp *error) (iter.Seq[core.ProfileRecord], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(core.ProfileRecord) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		line := 0
		for scanner.Scan() {
			line++
			if len(scanner.Bytes()) == 0 {
				continue
			}
			var p seedProfile
			if err := json.Unmarshal(scanner.Bytes(), &p); err != nil {
				*errp = fmt.Errorf("%s:%d: %w", filename, line, err)
				return
			}
			if !yield(p.record()) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			*errp = err
		}
	}, nil
}

// profilesFromSlice returns an iterator over a slice of profiles.
func profilesFromSlice(records []core.ProfileRecord) iter.Seq[core.ProfileRecord] {
	return func(yield func(core.ProfileRecord) bool) {
		for _, r := range records {
			if !yield(r) {
				return
			}
		}
	}
}

// insertBatched reads from a source iterator and inserts profiles in batches.
func insertBatched(ctx context.Context, store *profiles.Store, source iter.Seq[core.ProfileRecord], batchSize int) (int, error) {
	batch := make([]core.ProfileRecord, 0, batchSize)
	total := 0

	for r := range source {
		batch = append(batch, r)
		if len(batch) == batchSize {
			if err := store.Insert(ctx, batch...); err != nil {
				return total, err
			}
			total += len(batch)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := store.Insert(ctx, batch...); err != nil {
			return total, err
		}
		total += len(batch)
	}
	return total, nil
}

func main() {
	flag.Parse()
	if err := run(context.Background()); err != nil {
		slog.Error("seeding failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if *batchSize <= 0 {
		return fmt.Errorf("batch must be greater than 0")
	}
	cfg, err := config.Load(*configFile, *envFile)
	if err != nil {
		return err
	}

	store, err := profiles.Open(ctx, cfg.ProfilesConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureTable(ctx); err != nil {
		return err
	}

	var readErr error
	source := profilesFromSlice(samples)
	if *seedFile != "" {
		source, err = profilesFromFile(*seedFile, &readErr)
		if err != nil {
			return err
		}
	}

	n, err := insertBatched(ctx, store, source, *batchSize)
	if err != nil {
		return err
	}
	if readErr != nil {
		return readErr
	}
	slog.Info("seeded profiles", "count", n, "table", cfg.Database.Table)
	return nil
}
