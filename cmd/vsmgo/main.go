// Command vsmgo builds and queries a VSM search index from the command
// line: a cobra root command, persistent flags for the database path, and
// one subcommand per operation.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/liliang-cn/vsmgo"
	"github.com/liliang-cn/vsmgo/persist"
	"github.com/liliang-cn/vsmgo/weight"
)

var (
	dbPath  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "vsmgo",
	Short: "CLI tool for building and querying a vector space model index",
	Long:  `A command-line interface for building a sparse VSM search index from plain text and querying it.`,
}

var buildCmd = &cobra.Command{
	Use:   "build <input-file>",
	Short: "Build an index from a newline-delimited text file and save it to the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		weightName, _ := cmd.Flags().GetString("weight")
		weightFn, err := resolveWeight(weightName)
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open input file: %w", err)
		}
		defer f.Close()

		logger := vsmgo.NopLogger()
		if verbose {
			logger = vsmgo.NewStdLogger(vsmgo.LevelDebug)
		}
		b := vsmgo.NewBuilder[string](
			vsmgo.WithWeight[string](weightFn),
			vsmgo.WithLogger[string](logger),
		)

		scanner := bufio.NewScanner(f)
		docCount := 0
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			terms := strings.Fields(strings.ToLower(line))
			if _, ok := b.InsertVec(line, terms); ok {
				docCount++
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read input file: %w", err)
		}

		ix := b.Build()

		ctx := context.Background()
		store, err := persist.Open(ctx, &persist.Config{Path: dbPath, CompressionLevel: 3})
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer store.Close()

		if err := persist.Save[string, vsmgo.NoMetadata](ctx, store, ix); err != nil {
			return fmt.Errorf("save index: %w", err)
		}

		fmt.Printf("indexed %d documents, %d distinct terms, build id %s\n", docCount, ix.TermCount(), ix.BuildInfo.BuildID)
		return nil
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <term> [term...]",
	Short: "Search the saved index for documents matching the given terms",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topK, _ := cmd.Flags().GetInt("top-k")
		dice, _ := cmd.Flags().GetBool("dice")

		ctx := context.Background()
		store, err := persist.Open(ctx, &persist.Config{Path: dbPath, CompressionLevel: 3})
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer store.Close()

		ix, err := persist.Load[string, vsmgo.NoMetadata](ctx, store)
		if err != nil {
			return fmt.Errorf("load index: %w", err)
		}

		query, ok := ix.NewQuery(args)
		if !ok {
			fmt.Println("no query term is present in the index")
			return nil
		}

		mode := vsmgo.CosineRank
		if dice {
			mode = vsmgo.DiceRank
		}

		for i, r := range ix.Search(&query, mode, topK) {
			fmt.Printf("%2d. score=%.4f  %s\n", i+1, r.Score, r.Document)
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print build information about the saved index",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		store, err := persist.Open(ctx, &persist.Config{Path: dbPath, CompressionLevel: 3})
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer store.Close()

		ix, err := persist.Load[string, vsmgo.NoMetadata](ctx, store)
		if err != nil {
			return fmt.Errorf("load index: %w", err)
		}

		info := ix.BuildInfo
		fmt.Printf("build id:    %s\n", info.BuildID)
		fmt.Printf("built at:    %s\n", info.BuiltAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("weight:      %s\n", info.WeightName)
		fmt.Printf("documents:   %d\n", info.DocCount)
		fmt.Printf("terms:       %d\n", info.TermCount)
		return nil
	},
}

func resolveWeight(name string) (weight.TermWeight, error) {
	switch strings.ToLower(name) {
	case "", "tfidf":
		return weight.TFIDF, nil
	case "smooth-tfidf":
		return weight.SmoothTFIDF, nil
	case "normalized-tf":
		return weight.NormalizedTF, nil
	case "probabilistic-tfidf":
		return weight.ProbabilisticTFIDF, nil
	default:
		return nil, fmt.Errorf("unknown weight scheme %q", name)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "vsm.db", "Index database file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	buildCmd.Flags().String("weight", "tfidf", "Term weighting scheme: tfidf, smooth-tfidf, normalized-tf, probabilistic-tfidf")

	queryCmd.Flags().Int("top-k", 10, "Number of results to return")
	queryCmd.Flags().Bool("dice", false, "Rank by Dice coefficient instead of cosine similarity")

	rootCmd.AddCommand(buildCmd, queryCmd, statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
