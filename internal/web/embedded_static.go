package web

import (
	"bytes"
	_ "embed"
	"fmt"
)

// Fixed values of the Visme form embed. The page is served as-is; these
// exist so start-up and tests can check the embedded document still carries them.
const (
	PageTitle      = "Webinar Registration Form"
	FormID         = "133190"
	FormURL        = "g7ddqxx0-untitled-project?fullPage=true"
	EmbedScriptURL = "https://static.visme.co/forms/vismeforms-embed.js"
)

// Served byte for byte; do not re-indent webinar.html to match other sources.
//
//go:embed static/webinar.html
var webinarPage []byte

// Document returns a copy of the embedded webinar registration page
func Document() []byte {
	return bytes.Clone(webinarPage)
}

// VerifyDocument checks that doc still embeds the registration form
func VerifyDocument(doc []byte) error {
	required := []string{
		"<title>" + PageTitle + "</title>",
		`class="visme_d"`,
		`data-url="` + FormURL + `"`,
		`data-form-id="` + FormID + `"`,
		`<script src="` + EmbedScriptURL + `"></script>`,
	}
	for _, s := range required {
		if !bytes.Contains(doc, []byte(s)) {
			return fmt.Errorf("webinar page is missing %s", s)
		}
	}
	return nil
}
