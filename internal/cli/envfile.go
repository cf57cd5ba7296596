package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// envPrefix limits dotenv files to settings this program reads. Other keys
// in a shared project .env are ignored.
const envPrefix = "YTF_"

var dotenvKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// loadDotEnvFiles applies YTF_* settings from .env and then .env.local in
// cwd. Variables already present in environ win. It returns the keys it set.
func loadDotEnvFiles(cwd string, environ []string, setenv func(string, string) error) ([]string, error) {
	if strings.TrimSpace(cwd) == "" {
		return nil, nil
	}
	if setenv == nil {
		return nil, fmt.Errorf("setenv is required")
	}

	protected := map[string]struct{}{}
	for _, pair := range environ {
		key, _, ok := strings.Cut(pair, "=")
		if ok {
			protected[key] = struct{}{}
		}
	}

	pending := map[string]string{}
	for _, name := range []string{".env", ".env.local"} {
		if err := readDotEnvFile(filepath.Join(cwd, name), pending); err != nil {
			return nil, err
		}
	}

	applied := make([]string, 0, len(pending))
	for key, value := range pending {
		if _, exists := protected[key]; exists {
			continue
		}
		if err := setenv(key, value); err != nil {
			return applied, fmt.Errorf("set %s: %w", key, err)
		}
		applied = append(applied, key)
	}
	sort.Strings(applied)
	return applied, nil
}

func readDotEnvFile(path string, into map[string]string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	scanner := bufio.NewScanner(strings.NewReader(string(payload)))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		key, value, ok, parseErr := parseDotEnvLine(scanner.Text())
		if parseErr != nil {
			return fmt.Errorf("parse %s:%d: %w", path, lineNo, parseErr)
		}
		if !ok || !strings.HasPrefix(key, envPrefix) {
			continue
		}
		into[key] = value
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", path, err)
	}
	return nil
}

func parseDotEnvLine(raw string) (string, string, bool, error) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false, nil
	}
	line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false, fmt.Errorf("expected KEY=VALUE format")
	}
	key = strings.TrimSpace(key)
	if !dotenvKeyPattern.MatchString(key) {
		return "", "", false, fmt.Errorf("invalid key %q", key)
	}
	value = strings.TrimSpace(value)

	switch {
	case len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`):
		decoded, err := strconv.Unquote(value)
		if err != nil {
			return "", "", false, fmt.Errorf("invalid quoted value for %q", key)
		}
		return key, decoded, true, nil
	case len(value) >= 2 && strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'"):
		return key, value[1 : len(value)-1], true, nil
	}
	return key, value, true, nil
}
