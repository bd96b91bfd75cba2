package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/joho/godotenv"
)

type TemplateContext struct {
	ENV map[string]string
}

var missingKeyRegex = regexp.MustCompile(`map has no entry for key "(.*?)"`)

// PreprocessConfig replaces {{ .ENV.VAR }} placeholders in a config file with
// values from the environment or a .env file in the working directory.
// Variables already set in the environment win over the .env file.
func PreprocessConfig(inputRaw []byte) ([]byte, error) {
	if !bytes.Contains(inputRaw, []byte("{{")) {
		return inputRaw, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	_ = godotenv.Load(filepath.Join(cwd, ".env")) // a missing .env is fine

	envMap := map[string]string{}
	for _, e := range os.Environ() {
		if k, v, ok := strings.Cut(e, "="); ok {
			envMap[k] = v
		}
	}

	tmpl, err := template.New("config").Option("missingkey=error").Parse(string(inputRaw))
	if err != nil {
		return nil, err
	}

	var output bytes.Buffer
	if err := tmpl.Execute(&output, TemplateContext{ENV: envMap}); err != nil {
		if matches := missingKeyRegex.FindStringSubmatch(err.Error()); len(matches) == 2 {
			return nil, fmt.Errorf("missing environment variable: %s (set it in your shell or .env file)", matches[1])
		}
		return nil, fmt.Errorf("template error: %w", err)
	}

	return output.Bytes(), nil
}
