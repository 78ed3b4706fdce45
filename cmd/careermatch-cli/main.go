package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"

	"yashubustudio/careermatch/careers"
	"yashubustudio/careermatch/internal/logging"
	"yashubustudio/careermatch/profile"
)

type cliOptions struct {
	configPath  string
	provider    string
	profileText string
	traitsJSON  string
	marksJSON   string
	answersJSON string
	topK        int
	asJSON      bool
	outputPath  string
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "careermatch-cli: %v\n", err)
		os.Exit(2)
	}
	if err := run(context.Background(), opts, os.Stdout); err != nil {
		logging.Fatal().Err(err).Msg("careermatch-cli failed")
	}
}

func parseFlags(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("careermatch-cli", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "Path to config.yaml (default: $CAREERMATCH_CONFIG or ./config.yaml)")
	fs.StringVar(&opts.provider, "provider", "", "Override the embedding provider (onnx, openai, hashing)")
	fs.StringVar(&opts.profileText, "profile", "", "Profile text; synthesised from traits and marks when omitted")
	fs.StringVar(&opts.traitsJSON, "traits", "", `Trait scores as a JSON object, e.g. {"Technical":9}`)
	fs.StringVar(&opts.marksJSON, "marks", "", `Marks as a JSON object, e.g. {"tenth":{"math":90}}`)
	fs.StringVar(&opts.answersJSON, "answers", "", "Questionnaire answers as a JSON array of 1-5 values")
	fs.IntVar(&opts.topK, "top-k", 0, "Number of careers to return (default from config)")
	fs.BoolVar(&opts.asJSON, "json", false, "Print the ranking as JSON")
	fs.StringVar(&opts.outputPath, "output", "", "Also write the ranking to this CSV file")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [options]\n\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.configPath = strings.TrimSpace(opts.configPath)
	opts.outputPath = strings.TrimSpace(opts.outputPath)
	if opts.topK < 0 {
		return opts, errors.New("-top-k must be positive")
	}
	return opts, nil
}

func run(ctx context.Context, opts cliOptions, out io.Writer) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := careers.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.provider != "" {
		cfg.Embedder.Provider = opts.provider
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: "console", Output: os.Stderr})

	req, err := buildRequest(opts)
	if err != nil {
		return err
	}

	embedder, err := careers.NewEmbedder(cfg.Embedder)
	if err != nil {
		return fmt.Errorf("init embedder: %w", err)
	}
	service, err := careers.NewService(embedder, cfg, logging.Component("careers"))
	if err != nil {
		embedder.Close()
		return fmt.Errorf("init service: %w", err)
	}
	defer service.Close()

	if err := service.EnsureLoaded(ctx); err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	recs, err := service.Recommend(ctx, req)
	if err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	if opts.outputPath != "" {
		if err := writeResultCSV(opts.outputPath, recs); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "ranking written to %s\n", opts.outputPath)
	}
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}
	printSummary(out, recs)
	return nil
}

// buildRequest shapes the flag inputs the same way the HTTP API does.
func buildRequest(opts cliOptions) (careers.Request, error) {
	var traits careers.TraitProfile
	if opts.traitsJSON != "" {
		var raw map[string]any
		if err := json.Unmarshal([]byte(opts.traitsJSON), &raw); err != nil {
			return careers.Request{}, fmt.Errorf("parse -traits: %w", err)
		}
		traits = profile.CoerceTraits(raw)
	}
	if len(traits) == 0 && opts.answersJSON != "" {
		var answers []any
		if err := json.Unmarshal([]byte(opts.answersJSON), &answers); err != nil {
			return careers.Request{}, fmt.Errorf("parse -answers: %w", err)
		}
		if len(answers) > 0 {
			traits = profile.TraitScores(profile.NormalizeAnswers(answers))
		}
	}
	traits = profile.ResolveTraits(traits)

	var marksPayload map[string]any
	if opts.marksJSON != "" {
		if err := json.Unmarshal([]byte(opts.marksJSON), &marksPayload); err != nil {
			return careers.Request{}, fmt.Errorf("parse -marks: %w", err)
		}
	}
	marks := profile.NormalizeMarks(marksPayload)

	text := strings.TrimSpace(opts.profileText)
	if text == "" {
		text = profile.ProfileText(traits, profile.CognitiveFromTraits(traits), marks)
	}
	return careers.Request{
		ProfileText: text,
		Traits:      traits,
		Marks:       marks,
		TopK:        opts.topK,
	}, nil
}

func writeResultCSV(path string, recs []careers.RecommendationResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create result file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	header := []string{"rank", "id", "title", "final_score", "match_label", "semantic", "trait", "marks"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, rec := range recs {
		row := []string{
			strconv.Itoa(i + 1),
			rec.ID,
			rec.Title,
			strconv.Itoa(rec.FinalScore),
			rec.MatchLabel,
			fmt.Sprintf("%.3f", rec.SemanticSimilarityNormalized),
			fmt.Sprintf("%.3f", rec.TraitAlignment),
			fmt.Sprintf("%.3f", rec.MarksAlignment),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush result: %w", err)
	}
	return nil
}

func printSummary(out io.Writer, recs []careers.RecommendationResult) {
	if len(recs) == 0 {
		fmt.Fprintln(out, "no recommendations")
		return
	}
	for i, rec := range recs {
		fmt.Fprintf(out, "%d. %s [%d, %s]\n", i+1, rec.Title, rec.FinalScore, rec.MatchLabel)
		fmt.Fprintf(out, "    semantic=%.3f trait=%.3f marks=%.3f\n",
			rec.SemanticSimilarityNormalized, rec.TraitAlignment, rec.MarksAlignment)
		if len(rec.Skills) > 0 {
			fmt.Fprintf(out, "    skills: %s\n", strings.Join(rec.Skills, ", "))
		}
	}
}
