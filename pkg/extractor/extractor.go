// Package extractor pulls puzzle image URLs out of Apache access logs.
//
// A puzzle URL is the path of a "GET <path> HTTP" request line whose path
// contains the text "puzzle". The host used to rebuild absolute URLs is
// taken from the log file name: everything after its first underscore, so
// "access_example.com" yields "example.com".
package extractor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	errs "logpuzzle/pkg/errors"
)

const (
	puzzleMarker  = "puzzle"
	requestPrefix = "GET "
	requestSuffix = " HTTP"

	// maxLineSize bounds a single log line held in memory.
	maxLineSize = 1024 * 1024
)

var requestPattern = regexp.MustCompile(`GET \S+ HTTP`)

// ParseHost returns the text following the first underscore in logPath.
func ParseHost(logPath string) (string, error) {
	idx := strings.IndexByte(logPath, '_')
	if idx < 0 {
		return "", errs.New(errs.ErrorTypeInvalidLogFileName, logPath, "log file name has no '_' separator before the host")
	}
	host := logPath[idx+1:]
	if host == "" {
		return "", errs.New(errs.ErrorTypeInvalidLogFileName, logPath, "log file name has nothing after its '_' separator")
	}
	return host, nil
}

// Extract reads the log at logPath and returns its puzzle URLs as absolute
// http URLs, unique and ordered by SortKey.
func Extract(logPath string) ([]string, error) {
	host, err := ParseHost(logPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrorTypeFileNotFound, logPath, "log file does not exist", err)
		}
		return nil, errs.Wrap(errs.ErrorTypeUnreadable, logPath, "cannot open log file", err)
	}
	defer f.Close()

	urls, err := ExtractFrom(f, host)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", logPath, err)
	}
	return urls, nil
}

// ExtractFrom scans r line by line and returns the puzzle URLs found,
// prefixed with "http://" + host + "/".
func ExtractFrom(r io.Reader, host string) ([]string, error) {
	tokens, err := scanTokens(r)
	if err != nil {
		return nil, err
	}

	SortTokens(tokens)

	urls := make([]string, len(tokens))
	for i, token := range tokens {
		urls[i] = AbsoluteURL(host, token)
	}
	return urls, nil
}

// scanTokens collects unique puzzle tokens in order of first appearance.
func scanTokens(r io.Reader) ([]string, error) {
	seen := make(map[string]struct{})
	var tokens []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		for _, token := range TokensInLine(scanner.Text()) {
			if _, dup := seen[token]; dup {
				continue
			}
			seen[token] = struct{}{}
			tokens = append(tokens, token)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnreadable, "", "failed reading log", err)
	}
	return tokens, nil
}

// TokensInLine returns the puzzle tokens of every GET request in line,
// in the order they appear. Duplicates within the line are kept.
func TokensInLine(line string) []string {
	var tokens []string
	for _, match := range requestPattern.FindAllString(line, -1) {
		token := match[len(requestPrefix) : len(match)-len(requestSuffix)]
		token = strings.TrimPrefix(token, "/")
		if strings.Contains(token, puzzleMarker) {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// SortKey returns the four characters that precede the last four of token,
// the puzzle identifier in "puzzle-bar-aaab.jpg". Short tokens yield a
// shorter (possibly empty) key.
func SortKey(token string) string {
	n := len(token)
	start, end := n-8, n-4
	if start < 0 {
		start = 0
	}
	if end < 0 {
		end = 0
	}
	return token[start:end]
}

// SortTokens orders tokens by SortKey, keeping the relative order of
// tokens with equal keys.
func SortTokens(tokens []string) {
	sort.SliceStable(tokens, func(i, j int) bool {
		return SortKey(tokens[i]) < SortKey(tokens[j])
	})
}

// AbsoluteURL joins host and a path token into an http URL.
func AbsoluteURL(host, token string) string {
	return "http://" + host + "/" + token
}
