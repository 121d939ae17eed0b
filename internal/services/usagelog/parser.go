// Package usagelog discovers, parses and incrementally ingests JSONL usage
// logs into the database.
package usagelog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/burnrate-tui/internal/models"
)

// maxLineSize bounds a single JSONL line. Tool results can be large.
const maxLineSize = 10 * 1024 * 1024

// rawRecord maps the parts of a log line that carry usage.
type rawRecord struct {
	Type      string   `json:"type"`
	Timestamp string   `json:"timestamp"`
	RequestID string   `json:"requestId"`
	CostUSD   *float64 `json:"costUSD"`
	Message   *struct {
		ID    string `json:"id"`
		Model string `json:"model"`
		Usage *struct {
			InputTokens              int64 `json:"input_tokens"`
			OutputTokens             int64 `json:"output_tokens"`
			CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
			CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
		} `json:"usage"`
	} `json:"message"`
}

// ParseResult holds parsed records and line counters.
type ParseResult struct {
	Records    []models.UsageRecord
	SkipCount  int
	ErrorCount int
}

// Parser turns JSONL lines into usage records, pricing those that carry no
// cost of their own.
type Parser struct {
	Pricing Pricing
}

// ParseReader parses r with the default pricing table.
func ParseReader(r io.Reader, source string) ParseResult {
	return Parser{Pricing: DefaultPricing()}.ParseReader(r, source)
}

// ParseReader streams r line by line. Lines that are not assistant
// responses with usage are skipped; lines that fail to decode or exceed
// maxLineSize are counted as errors. None of them stops the parse.
func (p Parser) ParseReader(r io.Reader, source string) ParseResult {
	var result ParseResult
	br := bufio.NewReaderSize(r, 64*1024)

	for {
		line, oversized, err := readLine(br)
		if oversized {
			result.ErrorCount++
		} else if line = bytes.TrimSpace(line); len(line) > 0 {
			p.parseLine(line, &result)
		}

		if err != nil {
			if !errors.Is(err, io.EOF) {
				result.ErrorCount++
			}
			break
		}
	}

	return result
}

// readLine returns the next line including its newline. A line longer than
// maxLineSize is consumed to its end and reported as oversized with no data.
func readLine(br *bufio.Reader) (line []byte, oversized bool, err error) {
	for {
		frag, err := br.ReadSlice('\n')
		if !oversized {
			if len(line)+len(frag) > maxLineSize {
				oversized = true
				line = nil
			} else {
				line = append(line, frag...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return line, oversized, err
	}
}

func (p Parser) parseLine(line []byte, result *ParseResult) {
	var rec rawRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		result.ErrorCount++
		return
	}

	// Only assistant records have usage data
	if rec.Type != "assistant" || rec.Message == nil || rec.Message.Usage == nil {
		result.SkipCount++
		return
	}

	ts, err := time.Parse(time.RFC3339Nano, rec.Timestamp)
	if err != nil {
		result.ErrorCount++
		return
	}

	u := rec.Message.Usage
	record := models.UsageRecord{
		Timestamp:        ts.UTC(),
		Category:         rec.Message.Model,
		InputTokens:      max(u.InputTokens, 0),
		OutputTokens:     max(u.OutputTokens, 0),
		CacheWriteTokens: max(u.CacheCreationInputTokens, 0),
		CacheReadTokens:  max(u.CacheReadInputTokens, 0),
		MessageID:        rec.Message.ID,
		RequestID:        rec.RequestID,
	}

	if rec.CostUSD != nil && *rec.CostUSD >= 0 {
		record.Cost = decimal.NewFromFloat(*rec.CostUSD)
	} else {
		record.Cost = p.Pricing.Cost(record)
	}

	result.Records = append(result.Records, record)
}
