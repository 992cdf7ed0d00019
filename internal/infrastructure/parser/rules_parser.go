package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/yourusername/dermora-assistant/internal/domain/entity"
	"github.com/yourusername/dermora-assistant/internal/domain/repository"
)

// ErrNoRules the file yielded no usable rule
var ErrNoRules = errors.New("no keyword rules found")

type rulesParser struct {
	logger *zap.Logger
}

// NewRulesParser loader for .xlsx and .yaml/.yml keyword rule files
func NewRulesParser(logger *zap.Logger) repository.RuleLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &rulesParser{logger: logger.Named("rules")}
}

// LoadRules picks the format by file extension
func (p *rulesParser) LoadRules(ctx context.Context, path string) ([]entity.KeywordRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var raw []entity.KeywordRule
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		raw, err = p.parseExcel(data)
	case ".yaml", ".yml":
		raw, err = parseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported rules file extension %q", ext)
	}
	if err != nil {
		return nil, err
	}

	rules := normalizeRules(raw)
	if len(rules) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoRules)
	}

	p.logger.Info("keyword rules loaded", zap.String("path", path), zap.Int("count", len(rules)))
	return rules, nil
}

// parseExcel first sheet; column A trigger, column B response. A header row
// naming "trigger"/"keyword" is skipped, and header names may move the columns.
func (p *rulesParser) parseExcel(data []byte) ([]entity.KeywordRule, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel file is empty")
	}

	triggerCol, responseCol := 0, 1
	startRow := 0
	if t, r, ok := mapColumns(rows[0]); ok {
		triggerCol, responseCol = t, r
		startRow = 1
	}

	var rules []entity.KeywordRule
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if len(row) <= triggerCol || len(row) <= responseCol {
			p.logger.Debug("skipping short row", zap.Int("row", i+1))
			continue
		}
		rules = append(rules, entity.KeywordRule{
			Trigger:  row[triggerCol],
			Response: row[responseCol],
		})
	}
	return rules, nil
}

// mapColumns header row detection
func mapColumns(header []string) (triggerCol, responseCol int, ok bool) {
	triggerCol, responseCol = -1, -1
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		switch {
		case contains(name, "trigger", "keyword"):
			triggerCol = i
		case contains(name, "response", "reply", "answer"):
			responseCol = i
		}
	}
	if triggerCol < 0 {
		return 0, 1, false
	}
	if responseCol < 0 {
		responseCol = triggerCol + 1
	}
	return triggerCol, responseCol, true
}

func contains(str string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(str, keyword) {
			return true
		}
	}
	return false
}

type yamlRules struct {
	Rules []struct {
		Trigger  string `yaml:"trigger"`
		Response string `yaml:"response"`
	} `yaml:"rules"`
}

func parseYAML(data []byte) ([]entity.KeywordRule, error) {
	var doc yamlRules
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	rules := make([]entity.KeywordRule, 0, len(doc.Rules))
	for _, r := range doc.Rules {
		rules = append(rules, entity.KeywordRule{Trigger: r.Trigger, Response: r.Response})
	}
	return rules, nil
}

// normalizeRules lowercases triggers, drops blanks and later duplicates,
// and keeps the declared order otherwise.
func normalizeRules(raw []entity.KeywordRule) []entity.KeywordRule {
	seen := make(map[string]bool, len(raw))
	rules := make([]entity.KeywordRule, 0, len(raw))
	for _, r := range raw {
		trigger := strings.ToLower(strings.TrimSpace(r.Trigger))
		response := strings.TrimSpace(r.Response)
		if trigger == "" || response == "" || seen[trigger] {
			continue
		}
		seen[trigger] = true
		rules = append(rules, entity.KeywordRule{Trigger: trigger, Response: response})
	}
	return rules
}
