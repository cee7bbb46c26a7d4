package dashboard

import (
	"strings"
	"text/template"
)

// PlaceholderKey stands in for the key when nobody is signed in.
const PlaceholderKey = "YOUR_API_KEY"

const voiceAPIBase = "https://voice.botnoi.ai/tts/api-developer-v2"

type Example struct {
	ID   string `json:"id"`
	Body string `json:"body"`
}

var exampleTemplates = []struct {
	id   string
	tmpl *template.Template
}{
	{"httpRequest", template.Must(template.New("httpRequest").Parse(`{
  "method": "GET",
  "url": "{{.Base}}/voices",
  "headers": {
    "Authorization": "Bearer {{.Key}}",
    "Content-Type": "application/json"
  }
}`))},
	{"webhook", template.Must(template.New("webhook").Parse(`{
  "url": "{{.Base}}/synthesize",
  "method": "POST",
  "headers": {
    "Authorization": "Bearer {{.Key}}",
    "Content-Type": "application/json"
  },
  "body": {
    "text": "{{"{{"}}$json.message{{"}}"}}",
    "voice": "th-TH-PremwadeeNeural",
    "speed": 1.0
  }
}`))},
	{"workflow", template.Must(template.New("workflow").Parse(`{
  "nodes": [
    {
      "name": "TTS Request",
      "type": "n8n-nodes-base.httpRequest",
      "position": [250, 300],
      "parameters": {
        "url": "{{.Base}}/synthesize",
        "method": "POST",
        "headers": {
          "Authorization": "Bearer {{.Key}}"
        },
        "body": {
          "text": "Hello World",
          "voice": "th-TH-PremwadeeNeural"
        }
      }
    }
  ]
}`))},
}

// RenderExamples fills the display-only request bodies with key. They are
// never sent anywhere.
func RenderExamples(key string) ([]Example, error) {
	if key == "" {
		key = PlaceholderKey
	}
	data := struct{ Base, Key string }{Base: voiceAPIBase, Key: key}

	examples := make([]Example, 0, len(exampleTemplates))
	for _, et := range exampleTemplates {
		var b strings.Builder
		if err := et.tmpl.Execute(&b, data); err != nil {
			return nil, err
		}
		examples = append(examples, Example{ID: et.id, Body: b.String()})
	}
	return examples, nil
}
