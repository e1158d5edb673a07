package extensions

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrListFileNotFound = errors.New("extension list file not found")

type Summary struct {
	Results    []Result
	Downloaded int
	Cached     int
	Failed     int
}

func (s *Summary) HasFailures() bool {
	return s.Failed > 0
}

func (s *Summary) add(result Result) {
	s.Results = append(s.Results, result)
	switch result.Outcome {
	case OutcomeDownloaded:
		s.Downloaded++
	case OutcomeCached:
		s.Cached++
	default:
		s.Failed++
	}
}

// ReadExtensionList returns the trimmed, non-blank lines of filePath. Lines
// starting with # are comments.
func ReadExtensionList(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrListFileNotFound, filePath)
		}
		return nil, fmt.Errorf("failed to open input file '%s': %w", filePath, err)
	}
	defer file.Close()

	var extensions []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			extensions = append(extensions, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input file '%s': %w", filePath, err)
	}
	return extensions, nil
}

// DownloadFromFile runs Download for every extension listed in filePath, in
// order, with the version, destination and cache settings of shared. A
// failing line never stops the following ones.
func (m *Manager) DownloadFromFile(ctx context.Context, filePath string, shared Request) (*Summary, error) {
	extensions, err := ReadExtensionList(filePath)
	if err != nil {
		if errors.Is(err, ErrListFileNotFound) {
			m.logger.Always("File not found: %s", filePath)
		}
		return nil, err
	}

	summary := &Summary{}
	for _, extension := range extensions {
		req := shared
		req.Extension = extension
		summary.add(m.Download(ctx, req))
	}

	report := m.logger.LogSuccess
	if summary.HasFailures() {
		report = m.logger.LogWarning
	}
	report("Processed %d extension(s): %d downloaded, %d already present, %d failed",
		len(summary.Results), summary.Downloaded, summary.Cached, summary.Failed)

	return summary, nil
}
