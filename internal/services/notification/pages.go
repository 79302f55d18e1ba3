package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"regexp"

	"payee-confirmation-backend/internal/models"
)

const confirmPageTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Confirm your payment details</title>
  <style>
    body { margin: 0; padding: 40px 16px; font-family: -apple-system, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; background: #f7f9fc; color: #1a1f36; }
    .card { max-width: 560px; margin: 0 auto; background: #fff; padding: 32px; border-radius: 4px; box-shadow: 0 2px 5px rgba(0,0,0,0.04); }
    h1 { font-size: 20px; margin: 0 0 24px; }
    dl { display: grid; grid-template-columns: 120px 1fr; gap: 8px 16px; margin: 0 0 24px; }
    dt { color: #8792a2; font-size: 13px; }
    dd { margin: 0; }
    label { display: block; font-size: 13px; color: #8792a2; margin: 16px 0 4px; }
    input[type=text] { width: 100%; padding: 8px; border: 1px solid #d8dee8; border-radius: 4px; box-sizing: border-box; }
    button { margin-top: 24px; padding: 10px 20px; border: 0; border-radius: 4px; background: #1a1f36; color: #fff; cursor: pointer; }
  </style>
</head>
<body>
  <div class="card">
    <h1>Confirm your payment details</h1>
    <dl>
      <dt>Author</dt><dd>{{.Name}}</dd>
      <dt>E-mail</dt><dd>{{.Email}}</dd>
      <dt>Title</dt><dd>{{.Title}}</dd>
      <dt>Fee</dt><dd>{{.Fee}}</dd>
    </dl>
    <form method="post" action="{{.SubmitURL}}">
      <input type="hidden" name="id" value="{{.ID}}" />
      <input type="hidden" name="name" value="{{.Name}}" />
      <input type="hidden" name="email" value="{{.Email}}" />
      <input type="hidden" name="title" value="{{.Title}}" />
      <input type="hidden" name="fee" value="{{.Fee}}" />
      <label for="bank">Bank</label>
      <input type="text" id="bank" name="bank" required />
      <label for="account">Account number</label>
      <input type="text" id="account" name="account" required />
      <label for="account_name">Account holder</label>
      <input type="text" id="account_name" name="account_name" required />
      <button type="submit">Submit</button>
    </form>
  </div>
</body>
</html>
`

// PageRenderer writes the confirmation page of one batch row.
type PageRenderer interface {
	Render(row models.BatchRow) error
}

// FilePages writes pages as <dir>/<id>.html so they can be served statically.
type FilePages struct {
	dir       string
	submitURL string
	tmpl      *template.Template
}

func NewFilePages(dir, submitURL string) (*FilePages, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	tmpl, err := template.New("confirm").Parse(confirmPageTemplate)
	if err != nil {
		return nil, err
	}
	return &FilePages{dir: dir, submitURL: submitURL, tmpl: tmpl}, nil
}

var pageID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func (p *FilePages) Render(row models.BatchRow) error {
	if !pageID.MatchString(row.ID) {
		return fmt.Errorf("token %q cannot be used as a page name", row.ID)
	}

	var buf bytes.Buffer
	err := p.tmpl.Execute(&buf, struct {
		models.BatchRow
		SubmitURL string
	}{row, p.submitURL})
	if err != nil {
		return err
	}
	return os.WriteFile(p.Path(row.ID), buf.Bytes(), 0o644)
}

// Path is where the page for id is written.
func (p *FilePages) Path(id string) string {
	return filepath.Join(p.dir, id+".html")
}
