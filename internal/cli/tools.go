package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"clarity-score-service/internal/app"
	"clarity-score-service/internal/config"
	"clarity-score-service/internal/domain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewDecodeCmd prints the results views for a results URL.
func NewDecodeCmd(configPath *string) *cobra.Command {
	var questionnaireID string
	cmd := &cobra.Command{
		Use:   "decode <results-url>",
		Short: "Decode a results URL into the scores and views the results page shows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadToolConfig(*configPath)
			if err != nil {
				return err
			}
			service, err := newToolService(cfg)
			if err != nil {
				return err
			}
			if questionnaireID == "" {
				questionnaireID = cfg.QuestionnaireID()
			}

			raw := args[0]
			base := service.ResultsBase()
			if i := strings.IndexByte(raw, '?'); i > 0 {
				base = raw[:i]
			}
			results, err := service.Results(cmd.Context(), questionnaireID, base, raw)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		},
	}
	cmd.Flags().StringVar(&questionnaireID, "questionnaire", "", "questionnaire id (defaults to config)")
	return cmd
}

// NewEncodeCmd prints the navigation URL the quiz would redirect to.
func NewEncodeCmd(configPath *string) *cobra.Command {
	var (
		questionnaireID string
		name            string
		yes             []string
	)
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Build the results URL for a set of yes answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadToolConfig(*configPath)
			if err != nil {
				return err
			}
			service, err := newToolService(cfg)
			if err != nil {
				return err
			}
			if questionnaireID == "" {
				questionnaireID = cfg.QuestionnaireID()
			}

			answers := make([]domain.Answer, 0, len(yes))
			for _, ref := range yes {
				a, err := parseAnswerRef(ref)
				if err != nil {
					return err
				}
				answers = append(answers, a)
			}
			nav, err := service.Navigate(cmd.Context(), questionnaireID, name, answers)
			if err != nil {
				return err
			}
			out := nav.URL
			if nav.Link != "" {
				out = nav.Link
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVar(&questionnaireID, "questionnaire", "", "questionnaire id (defaults to config)")
	cmd.Flags().StringVar(&name, "name", "", "respondent name")
	cmd.Flags().StringSliceVar(&yes, "yes", nil, "questions answered yes, as Category:index")
	return cmd
}

// parseAnswerRef reads "SEO:1" as a yes answer.
func parseAnswerRef(ref string) (domain.Answer, error) {
	category, rawIndex, ok := strings.Cut(ref, ":")
	if !ok || category == "" {
		return domain.Answer{}, fmt.Errorf("answer %q: want Category:index", ref)
	}
	index, err := strconv.Atoi(rawIndex)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("answer %q: %w", ref, err)
	}
	return domain.Answer{Category: domain.Category(category), QuestionIndex: index, Yes: true}, nil
}

// loadToolConfig treats a missing config file as an empty config so the
// offline tools work from any directory.
func loadToolConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Config{}, nil
	}
	return cfg, err
}

func newToolService(cfg config.Config) (*app.QuizService, error) {
	service, _, err := buildService(cfg, zap.NewNop(), nil, time.Minute, nil)
	return service, err
}
