package web

// indexTemplate is the whole front end: one form, the rendered digest,
// and an error banner.
const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Creator Digest</title>
  <style>
    body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 44rem; margin: 3rem auto; padding: 0 1rem; color: #222; }
    h1 { font-size: 1.5rem; }
    form { display: flex; gap: 0.5rem; margin: 1.5rem 0; }
    input[type="text"] { flex: 1; padding: 0.5rem; font-size: 1rem; border: 1px solid #bbb; border-radius: 4px; }
    button { padding: 0.5rem 1.25rem; font-size: 1rem; border: none; border-radius: 4px; background: #405de6; color: #fff; cursor: pointer; }
    .error { background: #fdecea; border: 1px solid #f5c6c2; border-radius: 4px; padding: 0.75rem 1rem; color: #8a1f16; }
    .digest { white-space: pre-wrap; background: #f7f7f7; border-radius: 4px; padding: 1rem 1.25rem; line-height: 1.5; }
  </style>
</head>
<body>
  <h1>Creator Digest</h1>
  <p>Paste an Instagram username or profile URL to get a newsletter-style recap of the creator's recent posts.</p>
  <form method="POST" action="/">
    <input type="text" name="instagram_username" placeholder="https://instagram.com/someuser/" required>
    <button type="submit">Generate digest</button>
  </form>
  {{if .Error}}<div class="error">{{.Error}}</div>{{end}}
  {{if .Summary}}<div class="digest">{{.Summary}}</div>{{end}}
</body>
</html>
`
