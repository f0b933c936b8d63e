package staged

import (
	"bytes"
	"embed"
	"encoding/json"
	"strings"
	"text/template"
)

//go:embed *.tmpl
var templateFS embed.FS

// prompts holds every named prompt of the pipeline. Each .tmpl file defines a "<name>_system"
// and a "<name>_user" template.
var prompts = template.Must(template.New("staged").ParseFS(templateFS, "*.tmpl"))

type planData struct {
	Task        string
	TaskOf      string
	Constraints string
}

type stepData struct {
	Title       string
	Instruction string
	Context     string
}

type synthesisData struct {
	Results string
}

// executeTemplate renders the named template and trims surrounding whitespace.
func executeTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// marshalPrompt encodes v as JSON for embedding in a prompt: UTF-8 kept as-is, no HTML escaping.
func marshalPrompt(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
