package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/justestif/go-affect-fusion/internal/config"
	"github.com/justestif/go-affect-fusion/internal/fusion"
	"github.com/justestif/go-affect-fusion/internal/strategy"
	"github.com/justestif/go-affect-fusion/internal/vad"
)

type fuseOutput struct {
	fusion.Result
	Intensity   float64          `json:"intensity"`
	Description string           `json:"emotion_description"`
	Strategy    *strategy.Result `json:"cbt_strategy,omitempty"`
}

func newFuseCmd(load func() (*config.Config, error)) *cobra.Command {
	var (
		file         string
		withStrategy bool
	)

	cmd := &cobra.Command{
		Use:   "fuse",
		Short: "Fuse VAD scores read as JSON from stdin or a file",
		Example: `  echo '{"face_vad":{"valence":0.2,"arousal":0.9,"dominance":0.8}}' | affect-fusion fuse
  affect-fusion fuse --file scores.json --strategy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			var r io.Reader = cmd.InOrStdin()
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("opening input: %w", err)
				}
				defer f.Close()
				r = f
			}

			var in fusion.Scores
			if err := json.NewDecoder(r).Decode(&in); err != nil {
				return fmt.Errorf("decoding input: %w", err)
			}

			out := fuseScores(fusion.NewEngine(fusion.WithWeights(cfg.Fusion)), in)
			if withStrategy {
				st := strategy.NewMapper().Map(out.EmotionTag, out.FinalVAD)
				out.Strategy = &st
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read input from file instead of stdin")
	cmd.Flags().BoolVar(&withStrategy, "strategy", false, "include the mapped coping strategy")
	return cmd
}

func fuseScores(engine *fusion.Engine, in fusion.Scores) fuseOutput {
	res := engine.Fuse(in.Estimates())
	return fuseOutput{
		Result:      res,
		Intensity:   vad.Intensity(res.FinalVAD),
		Description: vad.Describe(res.EmotionTag),
	}
}
