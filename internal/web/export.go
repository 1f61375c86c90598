package web

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/letsssgooo/knowledgeQuest/internal/client"
	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
)

// RankedResult — результат с местом в рейтинге теста.
type RankedResult struct {
	Rank int
	models.TestResult
}

// rankResults сортирует результаты по проценту, при равенстве выше тот, кто потратил меньше времени.
func rankResults(results []models.TestResult) []RankedResult {
	ranked := make([]RankedResult, 0, len(results))
	for _, r := range results {
		ranked = append(ranked, RankedResult{TestResult: r})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Percentage != ranked[j].Percentage {
			return ranked[i].Percentage > ranked[j].Percentage
		}

		return spent(ranked[i].TimeSpentMinutes) < spent(ranked[j].TimeSpentMinutes)
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	return ranked
}

func spent(minutes *int) int {
	if minutes == nil {
		return math.MaxInt
	}
	return *minutes
}

// resultsCSV экспортирует результаты теста в CSV.
func resultsCSV(results []models.TestResult) ([]byte, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	_ = w.Write(
		[]string{
			"Rank",
			"UserID",
			"Student",
			"Score",
			"MaxScore",
			"Percentage",
			"Passed",
			"TimeSpentMinutes",
			"CompletedAt",
		},
	)

	for _, r := range rankResults(results) {
		timeSpent := ""
		if r.TimeSpentMinutes != nil {
			timeSpent = strconv.Itoa(*r.TimeSpentMinutes)
		}

		_ = w.Write([]string{
			strconv.Itoa(r.Rank),
			strconv.Itoa(r.UserID),
			r.UserName,
			formatScore(r.Score),
			formatScore(r.MaxScore),
			strconv.FormatFloat(r.Percentage, 'f', 1, 64),
			strconv.FormatBool(r.Passed),
			timeSpent,
			r.CompletedAt.UTC().Format(time.RFC3339),
		})
	}

	w.Flush()

	err := w.Error()
	if err != nil {
		return nil, fmt.Errorf("failed to flush buffer: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *Server) exportCSV(c *fiber.Ctx) error {
	testID, err := c.ParamsInt("id")
	if err != nil || testID <= 0 {
		return fiber.ErrNotFound
	}

	results, err := s.api.TestResults(c.UserContext(), testID)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return err
		}
		slog.Warn("failed to export results", "test_id", testID, "err", err)
		s.flash(c, flashError, s.msgs.T("load.failed"))
		return c.Redirect(statisticsURL(testID), fiber.StatusSeeOther)
	}

	data, err := resultsCSV(results)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="test-%d-results.csv"`, testID))

	return c.Send(data)
}
